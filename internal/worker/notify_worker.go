// Package worker consumes the backend's AMQP events out of process: it
// hands password-reset requests to the mailer and keeps the transaction
// audit trail.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finanzas/internal/amqp"
	"finanzas/internal/storage"
)

// Mailer delivers password-reset instructions. The default implementation
// only records the request; wiring a real provider stays outside the
// backend's scope.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, nombre string) error
}

// LogMailer records the delivery request instead of sending anything.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(ctx context.Context, email, nombre string) error {
	slog.InfoContext(ctx, "Password reset instructions requested",
		"component", "mailer",
		"email", email,
		"nombre", nombre)
	return nil
}

// NotifyWorker processes queue events. Transaction audit events are
// enriched from the ledger store before logging.
type NotifyWorker struct {
	repo   *storage.Repository
	mailer Mailer
}

func NewNotifyWorker(repo *storage.Repository, mailer Mailer) *NotifyWorker {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &NotifyWorker{
		repo:   repo,
		mailer: mailer,
	}
}

// HandlePasswordReset processes one reset request from the queue.
func (w *NotifyWorker) HandlePasswordReset(ctx context.Context, msg *amqp.PasswordResetMessage) error {
	slog.InfoContext(ctx, "Processing password reset message",
		"message_id", msg.MessageID)

	if err := w.mailer.SendPasswordReset(ctx, msg.Email, msg.Nombre); err != nil {
		return fmt.Errorf("send password reset: %w", err)
	}
	return nil
}

// HandleTransactionEvent records one ledger audit event. Deleted rows stay
// readable through the store (soft delete), so enrichment works for both
// actions.
func (w *NotifyWorker) HandleTransactionEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	record := []any{
		"message_id", msg.MessageID,
		"action", msg.Action,
		"transaction_id", msg.TransactionID,
		"user_id", msg.UserID,
	}

	if t, err := w.repo.GetTransaction(ctx, msg.UserID, msg.TransactionID); err == nil {
		record = append(record,
			"monto", t.Monto.String(),
			"tipo", t.Tipo,
			"estado", t.Estado)
	}

	slog.InfoContext(ctx, "Transaction audit event", record...)
	return nil
}
