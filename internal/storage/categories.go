package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finanzas/internal/core"
)

const categoryColumns = "id, nombre, tipo, descripcion, estado, fecha_creacion, usuario_id"

func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var c core.Category
	err := row.Scan(&c.ID, &c.Nombre, &c.Tipo, &c.Descripcion, &c.Estado, &c.FechaCreacion, &c.UsuarioID)
	return c, err
}

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categorias (nombre, tipo, descripcion, estado, fecha_creacion, usuario_id) VALUES (?, ?, ?, ?, ?, ?)",
		c.Nombre, c.Tipo, c.Descripcion, core.EstadoActiva, now, c.UsuarioID,
	)
	if err != nil {
		return core.Category{}, storeErr("insert category", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, storeErr("category id", err)
	}

	c.ID = id
	c.Estado = core.EstadoActiva
	c.FechaCreacion = now
	return c, nil
}

// GetCategory looks a category up within the user's scope.
func (r *Repository) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categorias WHERE id = ? AND usuario_id = ?", id, userID)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("%w: category", core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, storeErr("get category", err)
	}
	return c, nil
}

// ListCategories returns the user's active categories ordered by nombre.
func (r *Repository) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categorias WHERE usuario_id = ? AND estado = ? ORDER BY nombre",
		userID, core.EstadoActiva)
	if err != nil {
		return nil, storeErr("list categories", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, storeErr("scan category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list categories", err)
	}
	return categories, nil
}

// UpdateCategory applies a partial update within the user's scope. Zero
// values keep the current field.
func (r *Repository) UpdateCategory(ctx context.Context, userID, id int64, nombre string, descripcion *string) (core.Category, error) {
	var category core.Category
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			"SELECT "+categoryColumns+" FROM categorias WHERE id = ? AND usuario_id = ?", id, userID)
		current, err := scanCategory(row)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: category", core.ErrNotFound)
		}
		if err != nil {
			return storeErr("get category", err)
		}

		if nombre != "" {
			current.Nombre = nombre
		}
		if descripcion != nil {
			current.Descripcion = *descripcion
		}
		if err := current.Validate(); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE categorias SET nombre = ?, descripcion = ? WHERE id = ? AND usuario_id = ?",
			current.Nombre, current.Descripcion, id, userID,
		); err != nil {
			return storeErr("update category", err)
		}
		category = current
		return nil
	})
	if err != nil {
		return core.Category{}, err
	}
	return category, nil
}

// SoftDeleteCategory flips the category to inactive. Existing transactions
// keep their reference; the category simply stops being offered for new ones.
func (r *Repository) SoftDeleteCategory(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE categorias SET estado = ? WHERE id = ? AND usuario_id = ? AND estado = ?",
		core.EstadoInactiva, id, userID, core.EstadoActiva)
	if err != nil {
		return storeErr("delete category", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("delete category", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: category", core.ErrNotFound)
	}
	return nil
}
