package client

import (
	"context"
	"sync"
	"time"

	"finebank/internal/core"
	"finebank/internal/ledger"
)

// Service is the server surface the coordinator drives. *API satisfies it;
// tests substitute a fake.
type Service interface {
	SetToken(token string)
	Register(ctx context.Context, email, password, fullName string) (Session, error)
	Login(ctx context.Context, email, password string) (Session, error)
	State(ctx context.Context) (core.LedgerState, error)
	Reset(ctx context.Context) (core.LedgerState, error)
	UpdateSettings(ctx context.Context, patch core.SettingsPatch) (core.Settings, error)
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	UpdateCategory(ctx context.Context, id string, patch core.CategoryPatch) (core.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	PutBudget(ctx context.Context, b core.Budget) (core.Budget, error)
}

// Coordinator sequences every mutation the same way: validate locally,
// commit on the server, then apply the server-confirmed result to the
// ledger store. A failed call leaves the snapshot untouched, so the local
// state never runs ahead of the server.
type Coordinator struct {
	svc   Service
	store *ledger.Store

	mu        sync.Mutex
	prefs     Prefs
	savePrefs func(Prefs) error
	signedIn  bool
}

// NewCoordinator builds a coordinator showing the placeholder ledger until
// someone signs in. save persists preference changes; nil uses the default
// prefs file.
func NewCoordinator(svc Service, prefs Prefs, save func(Prefs) error) *Coordinator {
	if save == nil {
		save = Prefs.Save
	}
	if prefs.Token != "" {
		svc.SetToken(prefs.Token)
	}
	return &Coordinator{
		svc:       svc,
		store:     ledger.NewStore(placeholderSnapshot()),
		prefs:     prefs,
		savePrefs: save,
		signedIn:  prefs.Token != "",
	}
}

// placeholderSnapshot is the deterministic sample ledger shown before
// authentication. It is never written to the server.
func placeholderSnapshot() ledger.Snapshot {
	return ledger.FromSeed(core.Seed(time.Now()))
}

// Snapshot returns the current local ledger state.
func (c *Coordinator) Snapshot() ledger.Snapshot {
	return c.store.Snapshot()
}

// SignedIn reports whether a session token is installed.
func (c *Coordinator) SignedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signedIn
}

func (c *Coordinator) adoptSession(s Session) error {
	c.svc.SetToken(s.Token)
	c.mu.Lock()
	c.prefs.Token = s.Token
	c.signedIn = true
	prefs := c.prefs
	c.mu.Unlock()
	return c.savePrefs(prefs)
}

// SignUp registers a new account and loads its freshly seeded ledger.
func (c *Coordinator) SignUp(ctx context.Context, email, password, fullName string) error {
	session, err := c.svc.Register(ctx, email, password, fullName)
	if err != nil {
		return err
	}
	if err := c.adoptSession(session); err != nil {
		return err
	}
	return c.Load(ctx)
}

// SignIn authenticates and replaces the placeholder with the account's
// server state.
func (c *Coordinator) SignIn(ctx context.Context, email, password string) error {
	session, err := c.svc.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := c.adoptSession(session); err != nil {
		return err
	}
	return c.Load(ctx)
}

// SignOut drops the session and returns to the placeholder ledger. The
// local API key survives; it belongs to the device, not the account.
func (c *Coordinator) SignOut() error {
	c.svc.SetToken("")
	c.mu.Lock()
	c.prefs.Token = ""
	c.signedIn = false
	prefs := c.prefs
	c.mu.Unlock()

	c.store.Dispatch(ledger.ReplaceAll{State: seedState()})
	return c.savePrefs(prefs)
}

func seedState() core.LedgerState {
	seed := core.Seed(time.Now())
	return core.LedgerState{
		Categories:   seed.Categories,
		Transactions: seed.Transactions,
		Budgets:      seed.Budgets,
		Settings:     seed.Settings,
	}
}

// Load fetches the full server state and swaps it in wholesale, folding
// the device-local API key back into the settings view.
func (c *Coordinator) Load(ctx context.Context) error {
	state, err := c.svc.State(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	state.Settings.LocalAPIKey = c.prefs.LocalAPIKey
	c.mu.Unlock()
	c.store.Dispatch(ledger.ReplaceAll{State: state})
	return nil
}

// Reset wipes the account server-side and reloads the restored defaults.
func (c *Coordinator) Reset(ctx context.Context) error {
	state, err := c.svc.Reset(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	state.Settings.LocalAPIKey = c.prefs.LocalAPIKey
	c.mu.Unlock()
	c.store.Dispatch(ledger.ReplaceAll{State: state})
	return nil
}

// AddTransaction validates, commits and applies one new transaction. The
// id assigned by the server wins over any id the caller supplied.
func (c *Coordinator) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, core.WrapValidation(err)
	}
	created, err := c.svc.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	c.store.Dispatch(ledger.AddTransaction{Transaction: created})
	return created, nil
}

func (c *Coordinator) UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	updated, err := c.svc.UpdateTransaction(ctx, id, patch)
	if err != nil {
		return core.Transaction{}, err
	}
	c.store.Dispatch(ledger.UpdateTransaction{ID: id, Patch: patch})
	return updated, nil
}

func (c *Coordinator) DeleteTransaction(ctx context.Context, id string) error {
	if err := c.svc.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	c.store.Dispatch(ledger.DeleteTransaction{ID: id})
	return nil
}

// AddCategory validates, commits and applies one new category. The id may
// be left empty for the server to assign, so it is excluded from the local
// check.
func (c *Coordinator) AddCategory(ctx context.Context, cat core.Category) (core.Category, error) {
	check := cat
	if check.ID == "" {
		check.ID = "pending"
	}
	if err := check.Validate(); err != nil {
		return core.Category{}, core.WrapValidation(err)
	}
	created, err := c.svc.CreateCategory(ctx, cat)
	if err != nil {
		return core.Category{}, err
	}
	c.store.Dispatch(ledger.AddCategory{Category: created})
	return created, nil
}

func (c *Coordinator) UpdateCategory(ctx context.Context, id string, patch core.CategoryPatch) (core.Category, error) {
	updated, err := c.svc.UpdateCategory(ctx, id, patch)
	if err != nil {
		return core.Category{}, err
	}
	c.store.Dispatch(ledger.UpdateCategory{ID: id, Patch: patch})
	return updated, nil
}

// DeleteCategory commits the deletion, then cascades locally to the
// transactions and budgets that referenced it.
func (c *Coordinator) DeleteCategory(ctx context.Context, id string) error {
	if err := c.svc.DeleteCategory(ctx, id); err != nil {
		return err
	}
	c.store.Dispatch(ledger.DeleteCategory{ID: id})
	return nil
}

// SetBudget upserts the month's budget. The snapshot stores the budget
// under the id the server computed, replacing any budget on the same key.
func (c *Coordinator) SetBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, core.WrapValidation(err)
	}
	saved, err := c.svc.PutBudget(ctx, b)
	if err != nil {
		return core.Budget{}, err
	}
	c.store.Dispatch(ledger.SetBudget{Budget: saved})
	return saved, nil
}

// UpdateSettings splits the patch: the local API key goes to the prefs
// file only, everything else commits on the server first. A patch that
// carries just the key never makes a network call.
func (c *Coordinator) UpdateSettings(ctx context.Context, patch core.SettingsPatch) error {
	if err := patch.Validate(); err != nil {
		return core.WrapValidation(err)
	}

	if patch.LocalAPIKey != nil {
		c.mu.Lock()
		c.prefs.LocalAPIKey = *patch.LocalAPIKey
		prefs := c.prefs
		c.mu.Unlock()
		if err := c.savePrefs(prefs); err != nil {
			return err
		}
		c.store.Dispatch(ledger.UpdateSettings{Patch: core.SettingsPatch{LocalAPIKey: patch.LocalAPIKey}})
	}

	remote := patch
	remote.LocalAPIKey = nil
	if remote.Currency == nil && remote.FirstDayOfMonth == nil && remote.Theme == nil {
		return nil
	}

	if _, err := c.svc.UpdateSettings(ctx, remote); err != nil {
		return err
	}
	c.store.Dispatch(ledger.UpdateSettings{Patch: remote})
	return nil
}
