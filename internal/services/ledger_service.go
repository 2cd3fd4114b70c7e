package services

import (
	"context"
	"log/slog"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/storage"
)

// LedgerService owns category and transaction writes. Each mutation runs
// in a single store transaction; audit events are published afterwards and
// never fail the request.
type LedgerService struct {
	repo      *storage.Repository
	publisher Publisher
}

func NewLedgerService(repo *storage.Repository, publisher Publisher) *LedgerService {
	return &LedgerService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *LedgerService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return s.repo.CreateCategory(ctx, c)
}

func (s *LedgerService) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	return s.repo.GetCategory(ctx, userID, id)
}

func (s *LedgerService) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	return s.repo.ListCategories(ctx, userID)
}

func (s *LedgerService) UpdateCategory(ctx context.Context, userID, id int64, nombre string, descripcion *string) (core.Category, error) {
	return s.repo.UpdateCategory(ctx, userID, id, nombre, descripcion)
}

func (s *LedgerService) DeleteCategory(ctx context.Context, userID, id int64) error {
	return s.repo.SoftDeleteCategory(ctx, userID, id)
}

func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	created, err := s.repo.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publishEvent(ctx, amqp.ActionCreated, created.ID, created.UsuarioID)
	return created, nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	return s.repo.GetTransaction(ctx, userID, id)
}

func (s *LedgerService) ListTransactions(ctx context.Context, userID, categoryID int64) ([]core.Transaction, error) {
	return s.repo.ListTransactions(ctx, userID, categoryID)
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, userID, id int64, patch storage.TransactionPatch) (core.Transaction, error) {
	return s.repo.UpdateTransaction(ctx, userID, id, patch)
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id int64) error {
	if err := s.repo.SoftDeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	s.publishEvent(ctx, amqp.ActionDeleted, id, userID)
	return nil
}

func (s *LedgerService) publishEvent(ctx context.Context, action string, transactionID, userID int64) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewTransactionEventMessage(action, transactionID, userID)
	if err := s.publisher.PublishTransactionEvent(ctx, msg); err != nil {
		// The write already committed; the audit trail is best effort.
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"error", err, "action", action, "transaction_id", transactionID)
	}
}
