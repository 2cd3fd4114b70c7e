package http

import (
	"net/http"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	summary, err := s.reports.Summary(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleByCategory(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	breakdown, err := s.reports.ByCategory(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, breakdown)
}
