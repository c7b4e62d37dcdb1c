package http

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"finebank/internal/auth"
	"finebank/internal/core"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string    `json:"token"`
	User  core.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, core.ValidationError("invalid email address"))
		return
	}
	if len(req.Password) < 8 {
		writeError(w, core.ValidationError("password must be at least 8 characters"))
		return
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := s.store.CreateUser(r.Context(), req.Email, hash, strings.TrimSpace(req.FullName))
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := auth.GenerateToken(s.jwtSecret, user.ID, user.Email, s.jwtTTL)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Account registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, hash, err := s.store.UserByEmail(r.Context(), req.Email)
	if err != nil {
		// Same answer for unknown email and wrong password.
		writeError(w, core.AuthError("invalid email or password"))
		return
	}
	if !auth.CheckPassword(hash, req.Password) {
		writeError(w, core.AuthError("invalid email or password"))
		return
	}

	// Accounts that predate seeding get their defaults on first login.
	if err := s.store.EnsureSeeded(r.Context(), user.ID); err != nil {
		slog.WarnContext(r.Context(), "Failed to backfill defaults",
			"user_id", user.ID, "error", err)
	}

	token, err := auth.GenerateToken(s.jwtSecret, user.ID, user.Email, s.jwtTTL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		writeError(w, core.AuthError("not authenticated"))
		return
	}
	writeJSON(w, http.StatusOK, user)
}
