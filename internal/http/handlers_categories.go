package http

import (
	"net/http"

	"finanzas/internal/core"
)

type categoryRequest struct {
	Nombre      string    `json:"nombre"`
	Tipo        core.Kind `json:"tipo"`
	Descripcion string    `json:"descripcion,omitempty"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	categories, err := s.ledger.ListCategories(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	claims := claimsFrom(r.Context())
	created, err := s.ledger.CreateCategory(r.Context(), core.Category{
		UsuarioID:   claims.UserID,
		Nombre:      req.Nombre,
		Tipo:        req.Tipo,
		Descripcion: req.Descripcion,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	claims := claimsFrom(r.Context())
	category, err := s.ledger.GetCategory(r.Context(), claims.UserID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

type categoryUpdateRequest struct {
	Nombre      string  `json:"nombre,omitempty"`
	Descripcion *string `json:"descripcion,omitempty"`
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req categoryUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	claims := claimsFrom(r.Context())
	updated, err := s.ledger.UpdateCategory(r.Context(), claims.UserID, id, req.Nombre, req.Descripcion)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	claims := claimsFrom(r.Context())
	if err := s.ledger.DeleteCategory(r.Context(), claims.UserID, id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
