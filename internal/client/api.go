// Package client implements the consumer side of the finance API: a thin
// HTTP client, a local preferences file, and the coordinator that keeps the
// in-memory ledger in step with the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"finebank/internal/core"
)

// Session is the result of a successful register or login.
type Session struct {
	Token string    `json:"token"`
	User  core.User `json:"user"`
}

// API talks to the finance server. The zero value is not usable; construct
// with NewAPI. Safe for concurrent use.
type API struct {
	baseURL string
	httpc   *http.Client

	mu    sync.RWMutex
	token string
}

func NewAPI(baseURL string) *API {
	return &API{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken installs the bearer token used on subsequent calls.
func (a *API) SetToken(token string) {
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
}

// Token returns the current bearer token, empty when signed out.
func (a *API) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

type apiError struct {
	Message string `json:"message"`
}

// do runs one request and decodes the response into out (when non-nil).
// Error statuses are mapped back onto the classified error kinds so the
// coordinator can branch the same way as server-side callers.
func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := a.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e apiError
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Message == "" {
			e.Message = http.StatusText(resp.StatusCode)
		}
		switch resp.StatusCode {
		case http.StatusBadRequest:
			return core.ValidationError(e.Message)
		case http.StatusUnauthorized:
			return core.AuthError(e.Message)
		case http.StatusNotFound:
			return core.NotFoundError(e.Message)
		case http.StatusConflict:
			return core.ConflictError(e.Message)
		default:
			return fmt.Errorf("%s %s: %s (%d)", method, path, e.Message, resp.StatusCode)
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) Register(ctx context.Context, email, password, fullName string) (Session, error) {
	var s Session
	err := a.do(ctx, http.MethodPost, "/api/auth/register",
		registerRequest{Email: email, Password: password, FullName: fullName}, &s)
	return s, err
}

func (a *API) Login(ctx context.Context, email, password string) (Session, error) {
	var s Session
	err := a.do(ctx, http.MethodPost, "/api/auth/login",
		loginRequest{Email: email, Password: password}, &s)
	return s, err
}

func (a *API) Me(ctx context.Context) (core.User, error) {
	var u core.User
	err := a.do(ctx, http.MethodGet, "/api/auth/me", nil, &u)
	return u, err
}

func (a *API) State(ctx context.Context) (core.LedgerState, error) {
	var st core.LedgerState
	err := a.do(ctx, http.MethodGet, "/api/finance/state", nil, &st)
	return st, err
}

func (a *API) Reset(ctx context.Context) (core.LedgerState, error) {
	var st core.LedgerState
	err := a.do(ctx, http.MethodPost, "/api/finance/reset", nil, &st)
	return st, err
}

func (a *API) UpdateSettings(ctx context.Context, patch core.SettingsPatch) (core.Settings, error) {
	var s core.Settings
	err := a.do(ctx, http.MethodPatch, "/api/finance/settings", patch, &s)
	return s, err
}

func (a *API) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	var out core.Category
	err := a.do(ctx, http.MethodPost, "/api/finance/categories", c, &out)
	return out, err
}

func (a *API) UpdateCategory(ctx context.Context, id string, patch core.CategoryPatch) (core.Category, error) {
	var out core.Category
	err := a.do(ctx, http.MethodPut, "/api/finance/categories/"+id, patch, &out)
	return out, err
}

func (a *API) DeleteCategory(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/api/finance/categories/"+id, nil, nil)
}

func (a *API) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	var out core.Transaction
	err := a.do(ctx, http.MethodPost, "/api/finance/transactions", t, &out)
	return out, err
}

func (a *API) UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	var out core.Transaction
	err := a.do(ctx, http.MethodPut, "/api/finance/transactions/"+id, patch, &out)
	return out, err
}

func (a *API) DeleteTransaction(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/api/finance/transactions/"+id, nil, nil)
}

func (a *API) PutBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	var out core.Budget
	err := a.do(ctx, http.MethodPut, "/api/finance/budgets", b, &out)
	return out, err
}
