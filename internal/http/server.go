// Package http is the thin dispatch layer: it deserializes requests,
// invokes the services and maps their typed errors to status codes. No
// business rule lives here.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"finanzas/internal/middleware/ratelimit"
	"finanzas/internal/middleware/trace"
	"finanzas/internal/services"
)

type Server struct {
	auth    *services.AuthService
	ledger  *services.LedgerService
	reports *services.ReportService
}

// NewServer wires the services into a chi router and returns a configured
// http.Server. authLimit caps auth-endpoint requests per minute per IP.
func NewServer(addr string, auth *services.AuthService, ledger *services.LedgerService, reports *services.ReportService, authLimit int) *http.Server {
	s := &Server{
		auth:    auth,
		ledger:  ledger,
		reports: reports,
	}

	r := chi.NewRouter()
	r.Use(trace.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	authLimiter := ratelimit.NewLimiter(authLimit)
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(authLimiter.Middleware)
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/validate-token", s.handleValidateToken)
		r.Post("/recuperar-password", s.handleRecoverPassword)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Route("/api/categorias", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Get("/{id}", s.handleGetCategory)
			r.Put("/{id}", s.handleUpdateCategory)
			r.Delete("/{id}", s.handleDeleteCategory)
		})

		r.Route("/api/transacciones", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Get("/rango", s.handleTransactionsInRange)
			r.Get("/ultimas", s.handleLatestTransactions)
			r.Get("/{id}", s.handleGetTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Route("/api/reportes", func(r chi.Router) {
			r.Get("/resumen", s.handleSummary)
			r.Get("/por-categoria", s.handleByCategory)
		})

		r.Route("/api/usuarios", func(r chi.Router) {
			r.Put("/perfil", s.handleUpdateProfile)
			r.Delete("/perfil", s.handleDeactivate)
		})
	})

	return &http.Server{
		Addr:           addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
}
