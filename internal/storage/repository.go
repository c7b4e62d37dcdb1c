package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finebank/internal/core"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// CreateUser inserts a new account and seeds its default categories and
// settings in the same transaction.
func (r *SQLiteRepository) CreateUser(ctx context.Context, email, passwordHash, fullName string) (core.User, error) {
	user := core.User{
		ID:    uuid.NewString(),
		Email: email,
		Name:  fullName,
	}
	if user.Name == "" {
		// Fall back to the email local part, matching what the UI shows
		// for accounts registered without a full name.
		user.Name = email
		if at := strings.Index(email, "@"); at > 0 {
			user.Name = email[:at]
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.User{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, full_name, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, email, passwordHash, user.Name, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.ConflictError("email already registered")
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}

	if err := seedDefaults(ctx, tx, user.ID); err != nil {
		return core.User{}, err
	}

	if err := tx.Commit(); err != nil {
		return core.User{}, fmt.Errorf("commit: %w", err)
	}
	return user, nil
}

// UserByEmail returns the user and its password hash. The hash never
// travels further than the login handler's bcrypt check.
func (r *SQLiteRepository) UserByEmail(ctx context.Context, email string) (core.User, string, error) {
	var (
		user         core.User
		passwordHash string
		fullName     sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, full_name FROM users WHERE email = ?`, email).
		Scan(&user.ID, &user.Email, &passwordHash, &fullName)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, "", core.NotFoundError("user not found")
	}
	if err != nil {
		return core.User{}, "", fmt.Errorf("query user by email: %w", err)
	}
	user.Name = fullName.String
	return user, passwordHash, nil
}

func (r *SQLiteRepository) UserByID(ctx context.Context, id string) (core.User, error) {
	var (
		user     core.User
		fullName sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, full_name FROM users WHERE id = ?`, id).
		Scan(&user.ID, &user.Email, &fullName)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.NotFoundError("user not found")
	}
	if err != nil {
		return core.User{}, fmt.Errorf("query user by id: %w", err)
	}
	user.Name = fullName.String
	return user, nil
}

// EnsureSeeded backfills the default categories and settings for accounts
// that lost them: created before seeding existed, wiped out of band, or
// left without categories by deletes. The guard checks both tables; an
// account keeps its settings row after deleting every category and still
// gets the default set back. Transactions and budgets are never seeded
// server-side.
func (r *SQLiteRepository) EnsureSeeded(ctx context.Context, userID string) error {
	var settingsCount, categoryCount int
	err := r.db.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM settings WHERE user_id = ?),
		   (SELECT COUNT(*) FROM categories WHERE user_id = ?)`,
		userID, userID).Scan(&settingsCount, &categoryCount)
	if err != nil {
		return fmt.Errorf("check seeded state: %w", err)
	}
	if settingsCount > 0 && categoryCount > 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := seedDefaults(ctx, tx, userID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func seedDefaults(ctx context.Context, tx *sql.Tx, userID string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	for _, c := range core.SeedCategories() {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO categories (user_id, id, name, type, color, icon, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (user_id, id) DO NOTHING`,
			userID, c.ID, c.Name, string(c.Type), c.Color, c.Icon, now)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.ID, err)
		}
	}

	s := core.SeedSettings()
	_, err := tx.ExecContext(ctx,
		`INSERT INTO settings (user_id, currency, first_day_of_month, theme, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, s.Currency, s.FirstDayOfMonth, string(s.Theme), now)
	if err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	return nil
}

// ResetUser wipes the account's ledger and restores the defaults. The wipe
// and the reseed commit together, so a failed reset leaves the old data
// intact.
func (r *SQLiteRepository) ResetUser(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Transactions first so the category FK never blocks the wipe.
	for _, table := range []string{"transactions", "budgets", "categories", "settings"} {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE user_id = ?", table), userID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := seedDefaults(ctx, tx, userID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// State loads the account's full ledger. Transactions come back newest
// first.
func (r *SQLiteRepository) State(ctx context.Context, userID string) (core.LedgerState, error) {
	state := core.LedgerState{
		Categories:   []core.Category{},
		Transactions: []core.Transaction{},
		Budgets:      []core.Budget{},
		Settings:     core.SeedSettings(),
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, color, icon FROM categories WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return state, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Color, &c.Icon); err != nil {
			return state, fmt.Errorf("scan category: %w", err)
		}
		state.Categories = append(state.Categories, c)
	}
	if err := rows.Err(); err != nil {
		return state, fmt.Errorf("iterate categories: %w", err)
	}

	txRows, err := r.db.QueryContext(ctx,
		`SELECT id, category_id, type, amount, date, merchant, notes, tags_json, is_recurring, recurring_rule
		 FROM transactions WHERE user_id = ? ORDER BY date DESC, id DESC`, userID)
	if err != nil {
		return state, fmt.Errorf("query transactions: %w", err)
	}
	defer txRows.Close()
	for txRows.Next() {
		t, err := scanTransaction(txRows)
		if err != nil {
			return state, err
		}
		state.Transactions = append(state.Transactions, t)
	}
	if err := txRows.Err(); err != nil {
		return state, fmt.Errorf("iterate transactions: %w", err)
	}

	bRows, err := r.db.QueryContext(ctx,
		`SELECT id, category_id, month, year, amount, rollover_enabled FROM budgets WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return state, fmt.Errorf("query budgets: %w", err)
	}
	defer bRows.Close()
	for bRows.Next() {
		var (
			b          core.Budget
			categoryID sql.NullString
		)
		if err := bRows.Scan(&b.ID, &categoryID, &b.Month, &b.Year, &b.Amount, &b.RolloverEnabled); err != nil {
			return state, fmt.Errorf("scan budget: %w", err)
		}
		b.CategoryID = categoryID.String
		state.Budgets = append(state.Budgets, b)
	}
	if err := bRows.Err(); err != nil {
		return state, fmt.Errorf("iterate budgets: %w", err)
	}

	var theme string
	err = r.db.QueryRowContext(ctx,
		`SELECT currency, first_day_of_month, theme FROM settings WHERE user_id = ?`, userID).
		Scan(&state.Settings.Currency, &state.Settings.FirstDayOfMonth, &theme)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return state, fmt.Errorf("query settings: %w", err)
	}
	if err == nil {
		state.Settings.Theme = core.Theme(theme)
	}

	return state, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t             core.Transaction
		date          string
		merchant      sql.NullString
		notes         sql.NullString
		tagsJSON      string
		recurringRule sql.NullString
	)
	err := row.Scan(&t.ID, &t.CategoryID, &t.Type, &t.Amount, &date,
		&merchant, &notes, &tagsJSON, &t.IsRecurring, &recurringRule)
	if errors.Is(err, sql.ErrNoRows) {
		return t, core.NotFoundError("transaction not found")
	}
	if err != nil {
		return t, fmt.Errorf("scan transaction: %w", err)
	}
	t.Date, err = time.Parse(time.RFC3339, date)
	if err != nil {
		return t, fmt.Errorf("parse transaction date %q: %w", date, err)
	}
	t.Merchant = merchant.String
	t.Notes = notes.String
	t.RecurringRule = core.RecurringRule(recurringRule.String)
	t.Tags = []string{}
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &t.Tags); err != nil {
			// Tolerate a corrupt tags column rather than failing the read.
			t.Tags = []string{}
		}
	}
	return t, nil
}

// UpdateSettings merges the patch over the stored row. The read and the
// write run on separate statements; concurrent patches to the same account
// follow last-writer-wins.
func (r *SQLiteRepository) UpdateSettings(ctx context.Context, userID string, patch core.SettingsPatch) (core.Settings, error) {
	current := core.SeedSettings()
	var theme string
	err := r.db.QueryRowContext(ctx,
		`SELECT currency, first_day_of_month, theme FROM settings WHERE user_id = ?`, userID).
		Scan(&current.Currency, &current.FirstDayOfMonth, &theme)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return core.Settings{}, fmt.Errorf("query settings: %w", err)
	}
	if err == nil {
		current.Theme = core.Theme(theme)
	}

	merged := patch.Merge(current)
	if err := merged.Validate(); err != nil {
		return core.Settings{}, core.WrapValidation(err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO settings (user_id, currency, first_day_of_month, theme, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		   currency = excluded.currency,
		   first_day_of_month = excluded.first_day_of_month,
		   theme = excluded.theme,
		   updated_at = excluded.updated_at`,
		userID, merged.Currency, merged.FirstDayOfMonth, string(merged.Theme),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return core.Settings{}, fmt.Errorf("upsert settings: %w", err)
	}
	return merged, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, userID string, c core.Category) (core.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, core.WrapValidation(err)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, id, name, type, color, icon, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, c.ID, c.Name, string(c.Type), c.Color, c.Icon,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, core.ConflictError("category id already exists")
		}
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, userID, id string, patch core.CategoryPatch) (core.Category, error) {
	var current core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, color, icon FROM categories WHERE user_id = ? AND id = ?`, userID, id).
		Scan(&current.ID, &current.Name, &current.Type, &current.Color, &current.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.NotFoundError("category not found")
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("query category: %w", err)
	}

	merged := patch.Merge(current)
	if err := merged.Validate(); err != nil {
		return core.Category{}, core.WrapValidation(err)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, type = ?, color = ?, icon = ? WHERE user_id = ? AND id = ?`,
		merged.Name, string(merged.Type), merged.Color, merged.Icon, userID, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return merged, nil
}

// DeleteCategory removes a category together with its budgets. A category
// still referenced by transactions is protected by the FK and reported as
// a conflict.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM budgets WHERE user_id = ? AND category_id = ?`, userID, id); err != nil {
		return fmt.Errorf("delete category budgets: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM categories WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return core.ConflictError("category is used by transactions")
		}
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.NotFoundError("category not found")
	}

	if err := tx.Commit(); err != nil {
		if isForeignKeyViolation(err) {
			return core.ConflictError("category is used by transactions")
		}
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, userID string, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, core.WrapValidation(err)
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	tagsJSON, err := json.Marshal(t.Tags)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("marshal tags: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO transactions
		   (user_id, id, category_id, type, amount, date, merchant, notes, tags_json, is_recurring, recurring_rule, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, t.ID, t.CategoryID, string(t.Type), t.Amount,
		t.Date.Format(time.RFC3339), t.Merchant, t.Notes, string(tagsJSON),
		t.IsRecurring, string(t.RecurringRule),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if isForeignKeyViolation(err) {
			return core.Transaction{}, core.ValidationError("unknown category")
		}
		if isUniqueViolation(err) {
			return core.Transaction{}, core.ConflictError("transaction id already exists")
		}
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, userID, id string, patch core.TransactionPatch) (core.Transaction, error) {
	current, err := r.TransactionByID(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}

	merged := patch.Merge(current)
	if err := merged.Validate(); err != nil {
		return core.Transaction{}, core.WrapValidation(err)
	}
	tagsJSON, err := json.Marshal(merged.Tags)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("marshal tags: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE transactions SET
		   category_id = ?, type = ?, amount = ?, date = ?, merchant = ?,
		   notes = ?, tags_json = ?, is_recurring = ?, recurring_rule = ?
		 WHERE user_id = ? AND id = ?`,
		merged.CategoryID, string(merged.Type), merged.Amount,
		merged.Date.Format(time.RFC3339), merged.Merchant, merged.Notes,
		string(tagsJSON), merged.IsRecurring, string(merged.RecurringRule),
		userID, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return core.Transaction{}, core.ValidationError("unknown category")
		}
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return merged, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.NotFoundError("transaction not found")
	}
	return nil
}

func (r *SQLiteRepository) TransactionByID(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, category_id, type, amount, date, merchant, notes, tags_json, is_recurring, recurring_rule
		 FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
	return scanTransaction(row)
}

// PutBudget upserts the budget for its natural key. Delete plus insert
// inside one transaction keeps at most one row per key.
func (r *SQLiteRepository) PutBudget(ctx context.Context, userID string, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, core.WrapValidation(err)
	}
	b.ID = b.Key()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Budget{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM budgets WHERE user_id = ? AND id = ?`, userID, b.ID); err != nil {
		return core.Budget{}, fmt.Errorf("delete budget: %w", err)
	}

	var categoryID any
	if b.CategoryID != "" {
		categoryID = b.CategoryID
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO budgets (user_id, id, category_id, month, year, amount, rollover_enabled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, b.ID, categoryID, b.Month, b.Year, b.Amount, b.RolloverEnabled,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Budget{}, fmt.Errorf("commit: %w", err)
	}
	return b, nil
}
