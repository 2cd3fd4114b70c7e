package http

import (
	"net/http"

	"finanzas/internal/core"
)

type registerRequest struct {
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token   string    `json:"token"`
	Usuario core.User `json:"usuario"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	user, signed, err := s.auth.Register(r.Context(), req.Email, req.Password, req.Nombre)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, sessionResponse{Token: signed, Usuario: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	user, signed, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{Token: signed, Usuario: user})
}

type validateTokenRequest struct {
	Token string `json:"token"`
}

type validateTokenResponse struct {
	Valid  bool     `json:"valid"`
	Email  string   `json:"email,omitempty"`
	UserID int64    `json:"userId,omitempty"`
	Nombre string   `json:"nombre,omitempty"`
	Rol    core.Rol `json:"rol,omitempty"`
}

func (s *Server) handleValidateToken(w http.ResponseWriter, r *http.Request) {
	var req validateTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	claims, err := s.auth.ValidateToken(req.Token)
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, validateTokenResponse{Valid: false})
		return
	}
	respondJSON(w, http.StatusOK, validateTokenResponse{
		Valid:  true,
		Email:  claims.Email(),
		UserID: claims.UserID,
		Nombre: claims.Nombre,
		Rol:    claims.Rol,
	})
}

type recoverPasswordRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleRecoverPassword(w http.ResponseWriter, r *http.Request) {
	var req recoverPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	s.auth.RequestPasswordReset(r.Context(), req.Email)

	// Same answer whether or not the account exists.
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "si el email existe, se enviarán instrucciones",
	})
}

type profileRequest struct {
	Nombre   string `json:"nombre,omitempty"`
	Password string `json:"password,omitempty"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	claims := claimsFrom(r.Context())
	user, err := s.auth.UpdateProfile(r.Context(), claims.UserID, req.Nombre, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	if err := s.auth.Deactivate(r.Context(), claims.UserID); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
