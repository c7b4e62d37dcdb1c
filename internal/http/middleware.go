package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"finebank/internal/auth"
	"finebank/internal/core"
	"finebank/internal/event"
)

type contextKey string

const userContextKey contextKey = "user"

// userFrom returns the authenticated user stored by requireAuth.
func userFrom(ctx context.Context) (core.User, bool) {
	u, ok := ctx.Value(userContextKey).(core.User)
	return u, ok
}

// requireAuth validates the bearer token and loads the account before the
// handler runs. The account lookup also catches tokens for deleted users.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, core.AuthError("missing bearer token"))
			return
		}

		claims, err := auth.ParseToken(s.jwtSecret, strings.TrimSpace(token))
		if err != nil {
			writeError(w, err)
			return
		}

		user, err := s.store.UserByID(r.Context(), claims.UserID)
		if err != nil {
			if core.IsNotFound(err) {
				writeError(w, core.AuthError("account no longer exists"))
				return
			}
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// withRateLimit rejects clients exceeding the per-IP request budget.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := extractClientIP(r)
		if !s.rateLimiter.allow(ip) {
			slog.WarnContext(r.Context(), "Rate limit exceeded", "client_ip", ip)
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Message: "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withCORS answers preflight requests and marks responses for browser
// clients served from another origin.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func logPublishFailure(ctx context.Context, e *event.LedgerEvent, err error) {
	slog.WarnContext(ctx, "Failed to publish ledger event",
		"entity", e.Entity,
		"action", e.Action,
		"entity_id", e.EntityID,
		"error", err)
}
