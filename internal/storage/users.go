package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finanzas/internal/core"
)

const userColumns = "id, email, password, nombre, rol, activo, fecha_registro"

func scanUser(row interface{ Scan(...any) error }) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Nombre, &u.Rol, &u.Activo, &u.FechaRegistro)
	return u, err
}

// CreateUser persists a new user with rol USUARIO and activo=true. The email
// is expected pre-normalized (lower case); a duplicate yields ErrConflict
// and leaves the existing record untouched.
func (r *Repository) CreateUser(ctx context.Context, email, passwordHash, nombre string) (core.User, error) {
	var user core.User
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM usuarios WHERE email = ?)", email,
		).Scan(&exists); err != nil {
			return storeErr("check email", err)
		}
		if exists {
			return fmt.Errorf("%w: email already registered", core.ErrConflict)
		}

		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx,
			"INSERT INTO usuarios (email, password, nombre, rol, activo, fecha_registro) VALUES (?, ?, ?, ?, 1, ?)",
			email, passwordHash, nombre, core.RolUsuario, now,
		)
		if err != nil {
			return storeErr("insert user", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return storeErr("user id", err)
		}

		user = core.User{
			ID:            id,
			Email:         email,
			PasswordHash:  passwordHash,
			Nombre:        nombre,
			Rol:           core.RolUsuario,
			Activo:        true,
			FechaRegistro: now,
		}
		return nil
	})
	if err != nil {
		return core.User{}, err
	}
	return user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM usuarios WHERE email = ?", email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("%w: user", core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, storeErr("get user by email", err)
	}
	return u, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM usuarios WHERE id = ?", id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("%w: user", core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, storeErr("get user by id", err)
	}
	return u, nil
}

// UpdateUser applies a partial profile update. Empty fields keep their
// current value.
func (r *Repository) UpdateUser(ctx context.Context, id int64, nombre, passwordHash string) (core.User, error) {
	var user core.User
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			"SELECT "+userColumns+" FROM usuarios WHERE id = ?", id)
		current, err := scanUser(row)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: user", core.ErrNotFound)
		}
		if err != nil {
			return storeErr("get user", err)
		}

		if nombre != "" {
			current.Nombre = nombre
		}
		if passwordHash != "" {
			current.PasswordHash = passwordHash
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE usuarios SET nombre = ?, password = ? WHERE id = ?",
			current.Nombre, current.PasswordHash, id,
		); err != nil {
			return storeErr("update user", err)
		}
		user = current
		return nil
	})
	if err != nil {
		return core.User{}, err
	}
	return user, nil
}

// DeactivateUser soft-deactivates the account. Tokens already issued stay
// valid for their remaining TTL; only new logins are refused.
func (r *Repository) DeactivateUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE usuarios SET activo = 0 WHERE id = ?", id)
	if err != nil {
		return storeErr("deactivate user", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("deactivate user", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: user", core.ErrNotFound)
	}
	return nil
}
