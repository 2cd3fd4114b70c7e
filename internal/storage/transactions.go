package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
)

const transactionColumns = "id, monto_cents, tipo, descripcion, fecha_transaccion, fecha_creacion, ruta_foto, latitud, longitud, estado, usuario_id, categoria_id"

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t        core.Transaction
		cents    int64
		lat, lon sql.NullFloat64
	)
	err := row.Scan(&t.ID, &cents, &t.Tipo, &t.Descripcion, &t.FechaTransaccion,
		&t.FechaCreacion, &t.RutaFoto, &lat, &lon, &t.Estado, &t.UsuarioID, &t.CategoriaID)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Monto = core.DecimalFromCents(cents)
	if lat.Valid {
		t.Latitud = &lat.Float64
	}
	if lon.Valid {
		t.Longitud = &lon.Float64
	}
	return t, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

// CreateTransaction persists a transaction after checking the referential
// invariants inside one SQL transaction: the category must exist, belong to
// the same user, be active, and carry the same tipo as the transaction.
func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	cents, err := core.CentsFromDecimal(t.Monto)
	if err != nil {
		return core.Transaction{}, err
	}

	var created core.Transaction
	err = r.inTx(ctx, func(tx *sql.Tx) error {
		var (
			catUserID int64
			catTipo   core.Kind
			catEstado core.Estado
		)
		err := tx.QueryRowContext(ctx,
			"SELECT usuario_id, tipo, estado FROM categorias WHERE id = ?", t.CategoriaID,
		).Scan(&catUserID, &catTipo, &catEstado)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: categoria does not exist", core.ErrValidation)
		}
		if err != nil {
			return storeErr("check category", err)
		}
		if catUserID != t.UsuarioID {
			return fmt.Errorf("%w: categoria belongs to another user", core.ErrValidation)
		}
		if catEstado != core.EstadoActiva {
			return fmt.Errorf("%w: categoria is inactive", core.ErrValidation)
		}
		if catTipo != t.Tipo {
			return fmt.Errorf("%w: tipo does not match categoria tipo", core.ErrValidation)
		}

		now := time.Now().UTC()
		when := t.FechaTransaccion
		if when.IsZero() {
			when = now
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO transacciones
			 (monto_cents, tipo, descripcion, fecha_transaccion, fecha_creacion, ruta_foto, latitud, longitud, estado, usuario_id, categoria_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cents, t.Tipo, t.Descripcion, when, now, t.RutaFoto,
			nullFloat(t.Latitud), nullFloat(t.Longitud), core.EstadoActiva, t.UsuarioID, t.CategoriaID,
		)
		if err != nil {
			return storeErr("insert transaction", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return storeErr("transaction id", err)
		}

		created = t
		created.ID = id
		created.Monto = core.DecimalFromCents(cents)
		created.FechaTransaccion = when
		created.FechaCreacion = now
		created.Estado = core.EstadoActiva
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return created, nil
}

// GetTransaction looks a transaction up within the user's scope.
func (r *Repository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transacciones WHERE id = ? AND usuario_id = ?", id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("%w: transaction", core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, storeErr("get transaction", err)
	}
	return t, nil
}

// UpdateTransaction applies a partial update within the user's scope. Nil
// fields keep their current values; the updated row is re-validated against
// the same invariants as a create.
func (r *Repository) UpdateTransaction(ctx context.Context, userID, id int64, patch TransactionPatch) (core.Transaction, error) {
	var updated core.Transaction
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			"SELECT "+transactionColumns+" FROM transacciones WHERE id = ? AND usuario_id = ?", id, userID)
		current, err := scanTransaction(row)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: transaction", core.ErrNotFound)
		}
		if err != nil {
			return storeErr("get transaction", err)
		}

		patch.apply(&current)
		if err := current.Validate(); err != nil {
			return err
		}
		cents, err := core.CentsFromDecimal(current.Monto)
		if err != nil {
			return err
		}

		var (
			catUserID int64
			catTipo   core.Kind
		)
		err = tx.QueryRowContext(ctx,
			"SELECT usuario_id, tipo FROM categorias WHERE id = ?", current.CategoriaID,
		).Scan(&catUserID, &catTipo)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: categoria does not exist", core.ErrValidation)
		}
		if err != nil {
			return storeErr("check category", err)
		}
		if catUserID != userID {
			return fmt.Errorf("%w: categoria belongs to another user", core.ErrValidation)
		}
		if catTipo != current.Tipo {
			return fmt.Errorf("%w: tipo does not match categoria tipo", core.ErrValidation)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE transacciones SET monto_cents = ?, tipo = ?, descripcion = ?, fecha_transaccion = ?, ruta_foto = ?, latitud = ?, longitud = ?, categoria_id = ?
			 WHERE id = ? AND usuario_id = ?`,
			cents, current.Tipo, current.Descripcion, current.FechaTransaccion, current.RutaFoto,
			nullFloat(current.Latitud), nullFloat(current.Longitud), current.CategoriaID, id, userID,
		); err != nil {
			return storeErr("update transaction", err)
		}
		updated = current
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return updated, nil
}

// TransactionPatch carries the optional fields of a partial update.
type TransactionPatch struct {
	Monto            *decimal.Decimal
	Tipo             *core.Kind
	Descripcion      *string
	FechaTransaccion *time.Time
	RutaFoto         *string
	Latitud          *float64
	Longitud         *float64
	CategoriaID      *int64
}

func (p TransactionPatch) apply(t *core.Transaction) {
	if p.Monto != nil {
		t.Monto = *p.Monto
	}
	if p.Tipo != nil {
		t.Tipo = *p.Tipo
	}
	if p.Descripcion != nil {
		t.Descripcion = *p.Descripcion
	}
	if p.FechaTransaccion != nil {
		t.FechaTransaccion = *p.FechaTransaccion
	}
	if p.RutaFoto != nil {
		t.RutaFoto = *p.RutaFoto
	}
	if p.Latitud != nil {
		t.Latitud = p.Latitud
	}
	if p.Longitud != nil {
		t.Longitud = p.Longitud
	}
	if p.CategoriaID != nil {
		t.CategoriaID = *p.CategoriaID
	}
}

// SoftDeleteTransaction flips the row to inactive, removing it from every
// aggregate. ErrNotFound when the id is not in the user's active scope.
func (r *Repository) SoftDeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE transacciones SET estado = ? WHERE id = ? AND usuario_id = ? AND estado = ?",
		core.EstadoInactiva, id, userID, core.EstadoActiva)
	if err != nil {
		return storeErr("delete transaction", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("delete transaction", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: transaction", core.ErrNotFound)
	}
	return nil
}
