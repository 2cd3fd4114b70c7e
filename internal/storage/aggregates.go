package storage

import (
	"context"
	"time"

	"finanzas/internal/core"
)

// The aggregation queries below only ever see estado='A' rows of the
// requesting user and recompute from persisted cents on every call. There
// is no stored running balance, so there is nothing that can drift.

// TotalCentsByKind sums active amounts of one kind. Zero rows sum to 0.
func (r *Repository) TotalCentsByKind(ctx context.Context, userID int64, kind core.Kind) (int64, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(monto_cents), 0) FROM transacciones WHERE usuario_id = ? AND tipo = ? AND estado = ?",
		userID, kind, core.EstadoActiva,
	).Scan(&cents)
	if err != nil {
		return 0, storeErr("total by kind", err)
	}
	return cents, nil
}

// GastosByCategory returns GASTO totals grouped by category, ordered by
// total descending with ties broken by category name ascending, so repeated
// calls always return the same order.
func (r *Repository) GastosByCategory(ctx context.Context, userID int64) ([]core.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.nombre, COALESCE(SUM(t.monto_cents), 0) AS total_cents
		 FROM transacciones t
		 JOIN categorias c ON c.id = t.categoria_id
		 WHERE t.usuario_id = ? AND t.tipo = ? AND t.estado = ?
		 GROUP BY c.id, c.nombre
		 ORDER BY total_cents DESC, c.nombre ASC`,
		userID, core.KindGasto, core.EstadoActiva)
	if err != nil {
		return nil, storeErr("gastos by category", err)
	}
	defer rows.Close()

	totals := []core.CategoryTotal{}
	for rows.Next() {
		var (
			nombre string
			cents  int64
		)
		if err := rows.Scan(&nombre, &cents); err != nil {
			return nil, storeErr("scan category total", err)
		}
		totals = append(totals, core.CategoryTotal{
			Categoria: nombre,
			Total:     core.DecimalFromCents(cents),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("gastos by category", err)
	}
	return totals, nil
}

// TransactionsInRange returns active transactions whose fecha_transaccion
// falls inside [start, end], newest first. An inverted range is simply empty.
func (r *Repository) TransactionsInRange(ctx context.Context, userID int64, start, end time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+` FROM transacciones
		 WHERE usuario_id = ? AND estado = ? AND fecha_transaccion >= ? AND fecha_transaccion <= ?
		 ORDER BY fecha_transaccion DESC`,
		userID, core.EstadoActiva, start, end)
	if err != nil {
		return nil, storeErr("transactions in range", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// LatestTransactions returns the limit most recently recorded active
// transactions, by fecha_creacion descending.
func (r *Repository) LatestTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		return []core.Transaction{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+` FROM transacciones
		 WHERE usuario_id = ? AND estado = ?
		 ORDER BY fecha_creacion DESC, id DESC
		 LIMIT ?`,
		userID, core.EstadoActiva, limit)
	if err != nil {
		return nil, storeErr("latest transactions", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListTransactions returns every active transaction of the user, newest
// first by fecha_transaccion. categoryID > 0 restricts to one category.
func (r *Repository) ListTransactions(ctx context.Context, userID, categoryID int64) ([]core.Transaction, error) {
	query := "SELECT " + transactionColumns + " FROM transacciones WHERE usuario_id = ? AND estado = ?"
	args := []any{userID, core.EstadoActiva}
	if categoryID > 0 {
		query += " AND categoria_id = ?"
		args = append(args, categoryID)
	}
	query += " ORDER BY fecha_transaccion DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list transactions", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

type rowScanner interface {
	Next() bool
	Scan(...any) error
	Err() error
}

func collectTransactions(rows rowScanner) ([]core.Transaction, error) {
	transactions := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, storeErr("scan transaction", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("collect transactions", err)
	}
	return transactions, nil
}
