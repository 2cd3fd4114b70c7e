package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"finanzas/internal/amqp"
	"finanzas/internal/storage"
)

type recordingMailer struct {
	sent []string
	fail bool
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, email, _ string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, email)
	return nil
}

func newTestWorker(t *testing.T, mailer Mailer) *NotifyWorker {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "worker_test.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewNotifyWorker(repo, mailer)
}

func TestHandlePasswordReset(t *testing.T) {
	mailer := &recordingMailer{}
	w := newTestWorker(t, mailer)

	msg := amqp.NewPasswordResetMessage("ana@example.com", "Ana")
	if err := w.HandlePasswordReset(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "ana@example.com" {
		t.Fatalf("unexpected deliveries: %v", mailer.sent)
	}
}

func TestHandlePasswordResetMailerFailureIsRetryable(t *testing.T) {
	w := newTestWorker(t, &recordingMailer{fail: true})

	msg := amqp.NewPasswordResetMessage("ana@example.com", "Ana")
	if err := w.HandlePasswordReset(context.Background(), msg); err == nil {
		t.Fatal("expected error so the delivery is requeued")
	}
}

func TestHandleTransactionEventUnknownTransaction(t *testing.T) {
	w := newTestWorker(t, nil)

	// Enrichment is best effort; an unknown id still acks cleanly.
	msg := amqp.NewTransactionEventMessage(amqp.ActionDeleted, 9999, 1)
	if err := w.HandleTransactionEvent(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
}
