// Package core holds the domain model of the finance tracker: users,
// categories, transactions and the exact-money helpers the aggregates are
// built on. It has no dependencies on storage or transport.
package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind distinguishes expenses from income. The wire values stay in Spanish
// for compatibility with the existing API clients.
type Kind string

const (
	KindGasto   Kind = "GASTO"
	KindIngreso Kind = "INGRESO"
)

func (k Kind) Valid() bool {
	return k == KindGasto || k == KindIngreso
}

// Estado is the lifecycle state of a category or transaction. Rows are
// never hard-deleted; deletes flip the row to EstadoInactiva.
type Estado string

const (
	EstadoActiva   Estado = "A"
	EstadoInactiva Estado = "I"
)

// Rol is the user role.
type Rol string

const (
	RolAdmin   Rol = "ADMIN"
	RolUsuario Rol = "USUARIO"
)

type User struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Nombre        string    `json:"nombre"`
	Rol           Rol       `json:"rol"`
	Activo        bool      `json:"activo"`
	FechaRegistro time.Time `json:"fecha_registro"`
}

type Category struct {
	ID            int64     `json:"id"`
	UsuarioID     int64     `json:"usuario_id"`
	Nombre        string    `json:"nombre"`
	Tipo          Kind      `json:"tipo"`
	Descripcion   string    `json:"descripcion,omitempty"`
	Estado        Estado    `json:"estado"`
	FechaCreacion time.Time `json:"fecha_creacion"`
}

type Transaction struct {
	ID               int64           `json:"id"`
	UsuarioID        int64           `json:"usuario_id"`
	CategoriaID      int64           `json:"categoria_id"`
	Monto            decimal.Decimal `json:"monto"`
	Tipo             Kind            `json:"tipo"`
	Descripcion      string          `json:"descripcion"`
	FechaTransaccion time.Time       `json:"fecha_transaccion"`
	FechaCreacion    time.Time       `json:"fecha_creacion"`
	RutaFoto         string          `json:"ruta_foto,omitempty"`
	Latitud          *float64        `json:"latitud,omitempty"`
	Longitud         *float64        `json:"longitud,omitempty"`
	Estado           Estado          `json:"estado"`
}

// CategoryTotal is one row of the spending-by-category breakdown.
type CategoryTotal struct {
	Categoria string          `json:"categoria"`
	Total     decimal.Decimal `json:"total"`
}

// Summary aggregates a user's ledger: totals per kind and the balance.
type Summary struct {
	TotalIngresos decimal.Decimal `json:"total_ingresos"`
	TotalGastos   decimal.Decimal `json:"total_gastos"`
	Balance       decimal.Decimal `json:"balance"`
}

// NormalizeEmail applies the single casing policy: emails are trimmed and
// lower-cased on every write and lookup, so duplicate detection and login
// agree regardless of how the caller typed the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u User) Validate() error {
	if l := len(strings.TrimSpace(u.Nombre)); l < 2 || l > 100 {
		return fmt.Errorf("%w: nombre must be 2-100 characters", ErrValidation)
	}
	email := NormalizeEmail(u.Email)
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return fmt.Errorf("%w: email format is invalid", ErrValidation)
	}
	return nil
}

func (c Category) Validate() error {
	if l := len(strings.TrimSpace(c.Nombre)); l < 2 || l > 100 {
		return fmt.Errorf("%w: nombre must be 2-100 characters", ErrValidation)
	}
	if !c.Tipo.Valid() {
		return fmt.Errorf("%w: tipo must be GASTO or INGRESO", ErrValidation)
	}
	if len(c.Descripcion) > 200 {
		return fmt.Errorf("%w: descripcion too long (max 200 characters)", ErrValidation)
	}
	return nil
}

func (t Transaction) Validate() error {
	if _, err := CentsFromDecimal(t.Monto); err != nil {
		return err
	}
	if !t.Tipo.Valid() {
		return fmt.Errorf("%w: tipo must be GASTO or INGRESO", ErrValidation)
	}
	if l := len(strings.TrimSpace(t.Descripcion)); l < 3 || l > 200 {
		return fmt.Errorf("%w: descripcion must be 3-200 characters", ErrValidation)
	}
	if t.CategoriaID <= 0 {
		return fmt.Errorf("%w: categoria is required", ErrValidation)
	}
	return nil
}
