// Package token issues and validates the signed bearer tokens that carry a
// session's identity claims. Tokens are stateless: there is no revocation
// list, so a token stays valid for its full TTL even if the account is
// deactivated in the meantime. That is an accepted limitation, not a bug.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"finanzas/internal/core"
)

// Validation failures are kept distinguishable here even though the HTTP
// layer answers all of them with the same uniform 401.
var (
	ErrExpired   = errors.New("token expired")
	ErrSignature = errors.New("token signature invalid")
	ErrMalformed = errors.New("token malformed")
)

// Claims are the identity claims embedded in every issued token.
type Claims struct {
	UserID int64    `json:"userId"`
	Nombre string   `json:"nombre"`
	Rol    core.Rol `json:"rol"`
	jwt.RegisteredClaims
}

// Email returns the token subject.
func (c *Claims) Email() string {
	return c.Subject
}

// Service signs and verifies tokens with a symmetric HMAC-SHA256 key.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue builds a signed token for the user: subject is the email, the
// custom claims carry id, nombre and rol. Pure computation, no I/O.
func (s *Service) Issue(user core.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Nombre: user.Nombre,
		Rol:    user.Rol,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature and expiry and returns the decoded claims.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))

	switch {
	case err == nil:
		// fall through to the claims checks below
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrSignature
	default:
		return nil, ErrMalformed
	}

	if !parsed.Valid || claims.UserID <= 0 || claims.Subject == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}
