// Package services orchestrates the ledger store, token service and event
// publisher behind the HTTP layer. Every operation is request-scoped; the
// services themselves hold no mutable state beyond their dependencies.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/storage"
	"finanzas/internal/token"
)

// Publisher is the slice of the AMQP client the services need. A nil
// publisher disables events without failing any request.
type Publisher interface {
	PublishPasswordReset(ctx context.Context, msg *amqp.PasswordResetMessage) error
	PublishTransactionEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error
}

// AuthService handles registration, login, password reset requests and
// profile maintenance. Credentials are stored as bcrypt hashes; the plain
// password never leaves this package.
type AuthService struct {
	repo      *storage.Repository
	tokens    *token.Service
	publisher Publisher
}

func NewAuthService(repo *storage.Repository, tokens *token.Service, publisher Publisher) *AuthService {
	return &AuthService{
		repo:      repo,
		tokens:    tokens,
		publisher: publisher,
	}
}

// Register creates the account and signs a session token in one step, so
// clients land authenticated. A duplicate email yields ErrConflict.
func (s *AuthService) Register(ctx context.Context, email, password, nombre string) (core.User, string, error) {
	email = core.NormalizeEmail(email)
	candidate := core.User{Email: email, Nombre: strings.TrimSpace(nombre)}
	if err := candidate.Validate(); err != nil {
		return core.User{}, "", err
	}
	if len(password) < 6 {
		return core.User{}, "", fmt.Errorf("%w: password must be at least 6 characters", core.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return core.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, email, string(hash), candidate.Nombre)
	if err != nil {
		return core.User{}, "", err
	}

	signed, err := s.tokens.Issue(user)
	if err != nil {
		return core.User{}, "", err
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID)
	return user, signed, nil
}

// Login authenticates by email and password. Unknown email, wrong password
// and deactivated account all produce the same ErrUnauthorized, so the
// response does not reveal whether the address is registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (core.User, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, core.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, "", fmt.Errorf("%w: invalid credentials", core.ErrUnauthorized)
		}
		return core.User{}, "", err
	}
	if !user.Activo {
		return core.User{}, "", fmt.Errorf("%w: invalid credentials", core.ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return core.User{}, "", fmt.Errorf("%w: invalid credentials", core.ErrUnauthorized)
	}

	signed, err := s.tokens.Issue(user)
	if err != nil {
		return core.User{}, "", err
	}
	return user, signed, nil
}

// ValidateToken exposes token introspection for clients checking a stored
// token. Pure computation, no store access.
func (s *AuthService) ValidateToken(tokenString string) (*token.Claims, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUnauthorized, err)
	}
	return claims, nil
}

// RequestPasswordReset publishes a reset event for existing active
// accounts and reports success either way: the caller can never tell from
// the response whether the email is registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) {
	user, err := s.repo.GetUserByEmail(ctx, core.NormalizeEmail(email))
	if err != nil || !user.Activo {
		return
	}
	if s.publisher == nil {
		slog.WarnContext(ctx, "Publisher not available, skipping reset message", "user_id", user.ID)
		return
	}
	msg := amqp.NewPasswordResetMessage(user.Email, user.Nombre)
	if err := s.publisher.PublishPasswordReset(ctx, msg); err != nil {
		// Best effort: the uniform response has already been promised.
		slog.ErrorContext(ctx, "Failed to publish reset message", "error", err, "user_id", user.ID)
	}
}

// UpdateProfile applies a partial profile update; empty fields are kept.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, nombre, newPassword string) (core.User, error) {
	nombre = strings.TrimSpace(nombre)
	if nombre != "" {
		if l := len(nombre); l < 2 || l > 100 {
			return core.User{}, fmt.Errorf("%w: nombre must be 2-100 characters", core.ErrValidation)
		}
	}
	var hash string
	if newPassword != "" {
		if len(newPassword) < 6 {
			return core.User{}, fmt.Errorf("%w: password must be at least 6 characters", core.ErrValidation)
		}
		h, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return core.User{}, fmt.Errorf("hash password: %w", err)
		}
		hash = string(h)
	}
	return s.repo.UpdateUser(ctx, userID, nombre, hash)
}

// Deactivate soft-deactivates the account. Already-issued tokens keep
// working until they expire; there is no revocation list.
func (s *AuthService) Deactivate(ctx context.Context, userID int64) error {
	return s.repo.DeactivateUser(ctx, userID)
}
