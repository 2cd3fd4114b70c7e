package http

import (
	"context"
	"net/http"
	"strings"

	"finanzas/internal/token"
)

type claimsKey struct{}

// claimsFrom returns the token claims the auth middleware attached.
func claimsFrom(ctx context.Context) *token.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*token.Claims)
	return claims
}

// bearerToken extracts the token string from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return parts[1], true
}

// requireAuth validates the bearer token and attaches its claims. Missing,
// malformed, expired and forged tokens all get the same uniform 401.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "credenciales inválidas"})
			return
		}
		claims, err := s.auth.ValidateToken(tokenString)
		if err != nil {
			respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "credenciales inválidas"})
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
