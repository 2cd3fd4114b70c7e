package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

type transactionRequest struct {
	Monto            decimal.Decimal `json:"monto"`
	Tipo             core.Kind       `json:"tipo"`
	Descripcion      string          `json:"descripcion"`
	FechaTransaccion *time.Time      `json:"fecha_transaccion,omitempty"`
	CategoriaID      int64           `json:"categoria_id"`
	RutaFoto         string          `json:"ruta_foto,omitempty"`
	Latitud          *float64        `json:"latitud,omitempty"`
	Longitud         *float64        `json:"longitud,omitempty"`
}

type transactionPatchRequest struct {
	Monto            *decimal.Decimal `json:"monto,omitempty"`
	Tipo             *core.Kind       `json:"tipo,omitempty"`
	Descripcion      *string          `json:"descripcion,omitempty"`
	FechaTransaccion *time.Time       `json:"fecha_transaccion,omitempty"`
	CategoriaID      *int64           `json:"categoria_id,omitempty"`
	RutaFoto         *string          `json:"ruta_foto,omitempty"`
	Latitud          *float64         `json:"latitud,omitempty"`
	Longitud         *float64         `json:"longitud,omitempty"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var categoryID int64
	if raw := r.URL.Query().Get("categoria_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, r, core.ErrValidation)
			return
		}
		categoryID = id
	}

	transactions, err := s.ledger.ListTransactions(r.Context(), claims.UserID, categoryID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	claims := claimsFrom(r.Context())
	t := core.Transaction{
		UsuarioID:   claims.UserID,
		CategoriaID: req.CategoriaID,
		Monto:       req.Monto,
		Tipo:        req.Tipo,
		Descripcion: req.Descripcion,
		RutaFoto:    req.RutaFoto,
		Latitud:     req.Latitud,
		Longitud:    req.Longitud,
	}
	if req.FechaTransaccion != nil {
		t.FechaTransaccion = *req.FechaTransaccion
	}

	created, err := s.ledger.CreateTransaction(r.Context(), t)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	claims := claimsFrom(r.Context())
	transaction, err := s.ledger.GetTransaction(r.Context(), claims.UserID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, transaction)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req transactionPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	claims := claimsFrom(r.Context())
	updated, err := s.ledger.UpdateTransaction(r.Context(), claims.UserID, id, storage.TransactionPatch{
		Monto:            req.Monto,
		Tipo:             req.Tipo,
		Descripcion:      req.Descripcion,
		FechaTransaccion: req.FechaTransaccion,
		RutaFoto:         req.RutaFoto,
		Latitud:          req.Latitud,
		Longitud:         req.Longitud,
		CategoriaID:      req.CategoriaID,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	claims := claimsFrom(r.Context())
	if err := s.ledger.DeleteTransaction(r.Context(), claims.UserID, id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleTransactionsInRange(w http.ResponseWriter, r *http.Request) {
	start, err := parseDateParam(r.URL.Query().Get("inicio"))
	if err != nil {
		respondError(w, r, core.ErrValidation)
		return
	}
	end, err := parseDateParam(r.URL.Query().Get("fin"))
	if err != nil {
		respondError(w, r, core.ErrValidation)
		return
	}
	// Day-granularity end dates cover the whole day.
	if end.Hour() == 0 && end.Minute() == 0 && end.Second() == 0 {
		end = end.Add(24*time.Hour - time.Nanosecond)
	}

	claims := claimsFrom(r.Context())
	transactions, err := s.reports.InRange(r.Context(), claims.UserID, start, end)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleLatestTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limite"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, r, core.ErrValidation)
			return
		}
		limit = n
	}

	claims := claimsFrom(r.Context())
	transactions, err := s.reports.Latest(r.Context(), claims.UserID, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, transactions)
}
