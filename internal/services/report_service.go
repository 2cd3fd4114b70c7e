package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

// ReportService is the aggregation engine: totals, balance, category
// breakdowns and date-range slices over a user's active transactions.
// Every call recomputes from persisted rows; nothing is cached, so nothing
// can drift.
type ReportService struct {
	repo *storage.Repository
}

func NewReportService(repo *storage.Repository) *ReportService {
	return &ReportService{repo: repo}
}

// TotalByKind sums a user's active amounts of one kind. A user with no
// matching rows gets 0.00, not an error.
func (s *ReportService) TotalByKind(ctx context.Context, userID int64, kind core.Kind) (decimal.Decimal, error) {
	cents, err := s.repo.TotalCentsByKind(ctx, userID, kind)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return core.DecimalFromCents(cents), nil
}

// Balance is sum(INGRESO) - sum(GASTO), computed on integer cents.
func (s *ReportService) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	summary, err := s.Summary(ctx, userID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return summary.Balance, nil
}

// Summary returns both totals and the balance in one shot for dashboards.
func (s *ReportService) Summary(ctx context.Context, userID int64) (core.Summary, error) {
	ingresos, err := s.repo.TotalCentsByKind(ctx, userID, core.KindIngreso)
	if err != nil {
		return core.Summary{}, err
	}
	gastos, err := s.repo.TotalCentsByKind(ctx, userID, core.KindGasto)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summary{
		TotalIngresos: core.DecimalFromCents(ingresos),
		TotalGastos:   core.DecimalFromCents(gastos),
		Balance:       core.DecimalFromCents(ingresos - gastos),
	}, nil
}

// ByCategory breaks GASTO spending down per category, largest first, ties
// by name ascending. Stable across repeated calls.
func (s *ReportService) ByCategory(ctx context.Context, userID int64) ([]core.CategoryTotal, error) {
	return s.repo.GastosByCategory(ctx, userID)
}

// InRange returns active transactions inside [start, end], newest first.
// An inverted or empty range yields an empty slice, never an error.
func (s *ReportService) InRange(ctx context.Context, userID int64, start, end time.Time) ([]core.Transaction, error) {
	return s.repo.TransactionsInRange(ctx, userID, start.UTC(), end.UTC())
}

// Latest returns the limit most recently recorded transactions. A
// non-positive limit yields an empty slice.
func (s *ReportService) Latest(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	return s.repo.LatestTransactions(ctx, userID, limit)
}
