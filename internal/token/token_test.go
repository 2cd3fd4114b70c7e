package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"finanzas/internal/core"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testUser() core.User {
	return core.User{
		ID:     7,
		Email:  "ana@example.com",
		Nombre: "Ana Pérez",
		Rol:    core.RolUsuario,
	}
}

func TestIssueValidateRoundTrip(t *testing.T) {
	svc := NewService(testSecret, time.Hour)
	user := testUser()

	signed, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if strings.Count(signed, ".") != 2 {
		t.Fatalf("expected three dot-separated segments, got %q", signed)
	}

	claims, err := svc.Validate(signed)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Email() != user.Email {
		t.Errorf("subject = %s, want %s", claims.Email(), user.Email)
	}
	if claims.UserID != user.ID {
		t.Errorf("userId = %d, want %d", claims.UserID, user.ID)
	}
	if claims.Nombre != user.Nombre {
		t.Errorf("nombre = %s, want %s", claims.Nombre, user.Nombre)
	}
	if claims.Rol != user.Rol {
		t.Errorf("rol = %s, want %s", claims.Rol, user.Rol)
	}
}

func TestValidateExpired(t *testing.T) {
	svc := NewService(testSecret, time.Minute)

	issuedAt := time.Now()
	svc.now = func() time.Time { return issuedAt }
	signed, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Advance the clock past the TTL.
	svc.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	if _, err := svc.Validate(signed); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	signed, err := NewService(testSecret, time.Hour).Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := NewService("another-secret-another-secret", time.Hour)
	if _, err := other.Validate(signed); !errors.Is(err, ErrSignature) {
		t.Fatalf("expected ErrSignature, got %v", err)
	}
}

func TestValidateMalformed(t *testing.T) {
	svc := NewService(testSecret, time.Hour)
	for _, in := range []string{"", "garbage", "a.b", "a.b.c"} {
		if _, err := svc.Validate(in); !errors.Is(err, ErrMalformed) {
			t.Errorf("input %q: expected ErrMalformed, got %v", in, err)
		}
	}
}
