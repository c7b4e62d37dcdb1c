package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finebank/internal/core"
	"finebank/internal/event"
)

// Store is the persistence port the server talks to.
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash, fullName string) (core.User, error)
	UserByEmail(ctx context.Context, email string) (user core.User, passwordHash string, err error)
	UserByID(ctx context.Context, id string) (core.User, error)
	EnsureSeeded(ctx context.Context, userID string) error
	ResetUser(ctx context.Context, userID string) error
	State(ctx context.Context, userID string) (core.LedgerState, error)
	UpdateSettings(ctx context.Context, userID string, patch core.SettingsPatch) (core.Settings, error)
	CreateCategory(ctx context.Context, userID string, c core.Category) (core.Category, error)
	UpdateCategory(ctx context.Context, userID, id string, patch core.CategoryPatch) (core.Category, error)
	DeleteCategory(ctx context.Context, userID, id string) error
	CreateTransaction(ctx context.Context, userID string, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id string, patch core.TransactionPatch) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
	PutBudget(ctx context.Context, userID string, b core.Budget) (core.Budget, error)
}

// Publisher emits change notifications after a successful write. A nil
// publisher disables the event pipeline.
type Publisher interface {
	PublishLedgerEvent(ctx context.Context, e *event.LedgerEvent) error
}

// Options carries the non-storage dependencies of the server.
type Options struct {
	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int
	Publisher  Publisher
}

type Server struct {
	http.Server

	store        Store
	publisher    Publisher
	jwtSecret    string
	jwtTTL       time.Duration
	bcryptCost   int
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, store Store, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:       store,
		publisher:   opts.Publisher,
		jwtSecret:   opts.JWTSecret,
		jwtTTL:      opts.JWTTTL,
		bcryptCost:  opts.BcryptCost,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/auth/me", s.requireAuth(s.handleMe))

	mux.HandleFunc("GET /api/finance/state", s.requireAuth(s.handleState))
	mux.HandleFunc("POST /api/finance/reset", s.requireAuth(s.handleReset))
	mux.HandleFunc("PATCH /api/finance/settings", s.requireAuth(s.handleUpdateSettings))

	mux.HandleFunc("POST /api/finance/categories", s.requireAuth(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/finance/categories/{id}", s.requireAuth(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/finance/categories/{id}", s.requireAuth(s.handleDeleteCategory))

	mux.HandleFunc("POST /api/finance/transactions", s.requireAuth(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/finance/transactions/{id}", s.requireAuth(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/finance/transactions/{id}", s.requireAuth(s.handleDeleteTransaction))

	mux.HandleFunc("PUT /api/finance/budgets", s.requireAuth(s.handlePutBudget))

	s.Handler = s.withCORS(s.withRateLimit(mux))

	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// publish sends a best-effort change notification. Publish failures are
// logged by the caller path and never fail the request: the write already
// committed.
func (s *Server) publish(ctx context.Context, entity, action, userID, entityID string) {
	if s.publisher == nil {
		return
	}
	e := event.NewLedgerEvent(entity, action, userID, entityID)
	if err := s.publisher.PublishLedgerEvent(ctx, e); err != nil {
		logPublishFailure(ctx, e, err)
	}
}
