package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "finanzas_test.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustUser(t *testing.T, repo *Repository, email string) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), email, "$2a$10$fakehashfakehashfakehash", "Ana Pérez")
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func mustCategory(t *testing.T, repo *Repository, userID int64, nombre string, tipo core.Kind) core.Category {
	t.Helper()
	c, err := repo.CreateCategory(context.Background(), core.Category{
		UsuarioID: userID,
		Nombre:    nombre,
		Tipo:      tipo,
	})
	if err != nil {
		t.Fatalf("create category %s: %v", nombre, err)
	}
	return c
}

func mustTransaction(t *testing.T, repo *Repository, userID int64, cat core.Category, amount string) core.Transaction {
	t.Helper()
	tr, err := repo.CreateTransaction(context.Background(), core.Transaction{
		UsuarioID:   userID,
		CategoriaID: cat.ID,
		Monto:       decimal.RequireFromString(amount),
		Tipo:        cat.Tipo,
		Descripcion: "test transaction",
	})
	if err != nil {
		t.Fatalf("create transaction %s: %v", amount, err)
	}
	return tr
}

func TestCreateUserConflict(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := mustUser(t, repo, "ana@example.com")

	_, err := repo.CreateUser(ctx, "ana@example.com", "otherhash", "Otra Ana")
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// First record untouched.
	got, err := repo.GetUserByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.ID != first.ID || got.Nombre != first.Nombre || got.PasswordHash != first.PasswordHash {
		t.Fatalf("first record changed after conflicting register: %+v", got)
	}
}

func TestBalanceIsExact(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := mustUser(t, repo, "ana@example.com")
	sueldo := mustCategory(t, repo, user.ID, "Sueldo", core.KindIngreso)
	comida := mustCategory(t, repo, user.ID, "Comida", core.KindGasto)

	mustTransaction(t, repo, user.ID, sueldo, "1000.00")
	mustTransaction(t, repo, user.ID, comida, "333.33")

	ingresos, err := repo.TotalCentsByKind(ctx, user.ID, core.KindIngreso)
	if err != nil {
		t.Fatalf("total ingresos: %v", err)
	}
	gastos, err := repo.TotalCentsByKind(ctx, user.ID, core.KindGasto)
	if err != nil {
		t.Fatalf("total gastos: %v", err)
	}

	balance := core.DecimalFromCents(ingresos - gastos)
	if balance.String() != "666.67" {
		t.Fatalf("balance = %s, want 666.67", balance)
	}
}

func TestTotalsWithNoTransactions(t *testing.T) {
	repo := newTestRepo(t)
	user := mustUser(t, repo, "vacia@example.com")

	cents, err := repo.TotalCentsByKind(context.Background(), user.ID, core.KindIngreso)
	if err != nil {
		t.Fatalf("expected 0 total, got error: %v", err)
	}
	if cents != 0 {
		t.Fatalf("expected 0 cents, got %d", cents)
	}
}

func TestGastosByCategoryDeterministicOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := mustUser(t, repo, "ana@example.com")
	food := mustCategory(t, repo, user.ID, "Food", core.KindGasto)
	transport := mustCategory(t, repo, user.ID, "Transport", core.KindGasto)

	mustTransaction(t, repo, user.ID, food, "50.00")
	mustTransaction(t, repo, user.ID, food, "30.00")
	mustTransaction(t, repo, user.ID, transport, "80.00")

	for i := 0; i < 3; i++ {
		totals, err := repo.GastosByCategory(ctx, user.ID)
		if err != nil {
			t.Fatalf("gastos by category: %v", err)
		}
		if len(totals) != 2 {
			t.Fatalf("expected 2 groups, got %d", len(totals))
		}
		// Equal totals: tie broken by name ascending.
		if totals[0].Categoria != "Food" || totals[1].Categoria != "Transport" {
			t.Fatalf("unexpected order: %s, %s", totals[0].Categoria, totals[1].Categoria)
		}
		if totals[0].Total.StringFixed(2) != "80.00" || totals[1].Total.StringFixed(2) != "80.00" {
			t.Fatalf("unexpected totals: %s, %s", totals[0].Total, totals[1].Total)
		}
	}
}

func TestTransactionsInRange(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := mustUser(t, repo, "ana@example.com")
	comida := mustCategory(t, repo, user.ID, "Comida", core.KindGasto)

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	for i, amount := range []string{"10.00", "20.00", "30.00"} {
		_, err := repo.CreateTransaction(ctx, core.Transaction{
			UsuarioID:        user.ID,
			CategoriaID:      comida.ID,
			Monto:            decimal.RequireFromString(amount),
			Tipo:             core.KindGasto,
			Descripcion:      "range test",
			FechaTransaccion: base.AddDate(0, 0, i),
		})
		if err != nil {
			t.Fatalf("create transaction: %v", err)
		}
	}

	// Inclusive bounds, newest first.
	got, err := repo.TransactionsInRange(ctx, user.ID, base, base.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("in range: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(got))
	}
	if !got[0].FechaTransaccion.After(got[1].FechaTransaccion) {
		t.Fatal("expected descending order by fecha_transaccion")
	}

	// Exactly one transaction in range.
	got, err = repo.TransactionsInRange(ctx, user.ID, base.AddDate(0, 0, 2), base.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("in range: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(got))
	}

	// Inverted range is empty, not an error.
	got, err = repo.TransactionsInRange(ctx, user.ID, base.AddDate(0, 0, 5), base)
	if err != nil {
		t.Fatalf("inverted range must not error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}

func TestLatestTransactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := mustUser(t, repo, "ana@example.com")
	comida := mustCategory(t, repo, user.ID, "Comida", core.KindGasto)
	for _, amount := range []string{"1.00", "2.00", "3.00"} {
		mustTransaction(t, repo, user.ID, comida, amount)
	}

	got, err := repo.LatestTransactions(ctx, user.ID, 2)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(got))
	}

	got, err = repo.LatestTransactions(ctx, user.ID, 0)
	if err != nil {
		t.Fatalf("latest with limit 0: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("limit 0 must yield empty, got %d", len(got))
	}
}

func TestCreateTransactionRejectsInvalidAmount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := mustUser(t, repo, "ana@example.com")
	comida := mustCategory(t, repo, user.ID, "Comida", core.KindGasto)

	for _, amount := range []string{"0.00", "-5.00"} {
		_, err := repo.CreateTransaction(ctx, core.Transaction{
			UsuarioID:   user.ID,
			CategoriaID: comida.ID,
			Monto:       decimal.RequireFromString(amount),
			Tipo:        core.KindGasto,
			Descripcion: "should fail",
		})
		if !errors.Is(err, core.ErrValidation) {
			t.Fatalf("amount %s: expected ErrValidation, got %v", amount, err)
		}
	}

	// Store unchanged.
	got, err := repo.ListTransactions(ctx, user.ID, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("store changed by rejected writes: %d rows", len(got))
	}
}

func TestCreateTransactionCrossUserCategory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ana := mustUser(t, repo, "ana@example.com")
	bruno := mustUser(t, repo, "bruno@example.com")
	anaCat := mustCategory(t, repo, ana.ID, "Comida", core.KindGasto)

	_, err := repo.CreateTransaction(ctx, core.Transaction{
		UsuarioID:   bruno.ID,
		CategoriaID: anaCat.ID,
		Monto:       decimal.RequireFromString("10.00"),
		Tipo:        core.KindGasto,
		Descripcion: "wrong owner",
	})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected ErrValidation for cross-user category, got %v", err)
	}
}

func TestCreateTransactionKindMismatch(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := mustUser(t, repo, "ana@example.com")
	sueldo := mustCategory(t, repo, user.ID, "Sueldo", core.KindIngreso)

	_, err := repo.CreateTransaction(ctx, core.Transaction{
		UsuarioID:   user.ID,
		CategoriaID: sueldo.ID,
		Monto:       decimal.RequireFromString("10.00"),
		Tipo:        core.KindGasto,
		Descripcion: "mismatched kind",
	})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected ErrValidation for tipo mismatch, got %v", err)
	}
}

func TestSoftDeleteExcludesFromAggregates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := mustUser(t, repo, "ana@example.com")
	comida := mustCategory(t, repo, user.ID, "Comida", core.KindGasto)
	tr := mustTransaction(t, repo, user.ID, comida, "25.00")

	if err := repo.SoftDeleteTransaction(ctx, user.ID, tr.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	cents, err := repo.TotalCentsByKind(ctx, user.ID, core.KindGasto)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if cents != 0 {
		t.Fatalf("soft-deleted row still aggregated: %d cents", cents)
	}

	if err := repo.SoftDeleteTransaction(ctx, user.ID, tr.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("double delete: expected ErrNotFound, got %v", err)
	}
	if err := repo.SoftDeleteTransaction(ctx, user.ID, 9999); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unknown id: expected ErrNotFound, got %v", err)
	}
}

func TestUpdateTransactionPartial(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := mustUser(t, repo, "ana@example.com")
	comida := mustCategory(t, repo, user.ID, "Comida", core.KindGasto)
	tr := mustTransaction(t, repo, user.ID, comida, "25.00")

	newAmount := decimal.RequireFromString("42.50")
	updated, err := repo.UpdateTransaction(ctx, user.ID, tr.ID, TransactionPatch{Monto: &newAmount})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Monto.StringFixed(2) != "42.50" {
		t.Fatalf("monto = %s, want 42.50", updated.Monto)
	}
	if updated.Descripcion != tr.Descripcion {
		t.Fatalf("descripcion changed unexpectedly: %q", updated.Descripcion)
	}

	_, err = repo.UpdateTransaction(ctx, user.ID, 9999, TransactionPatch{Monto: &newAmount})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoriesListAndSoftDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := mustUser(t, repo, "ana@example.com")
	mustCategory(t, repo, user.ID, "Transporte", core.KindGasto)
	comida := mustCategory(t, repo, user.ID, "Comida", core.KindGasto)

	list, err := repo.ListCategories(ctx, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Nombre != "Comida" || list[1].Nombre != "Transporte" {
		t.Fatalf("expected [Comida Transporte], got %+v", list)
	}

	if err := repo.SoftDeleteCategory(ctx, user.ID, comida.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, err = repo.ListCategories(ctx, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Nombre != "Transporte" {
		t.Fatalf("inactive category still listed: %+v", list)
	}
}
