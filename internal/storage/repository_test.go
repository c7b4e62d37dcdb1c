package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"finebank/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestUser(t *testing.T, repo *SQLiteRepository) core.User {
	t.Helper()
	user, err := repo.CreateUser(context.Background(), "test@example.com", "hash", "Test User")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestCreateUserSeedsDefaults(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)

	state, err := repo.State(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if got, want := len(state.Categories), len(core.SeedCategories()); got != want {
		t.Errorf("seeded categories = %d, want %d", got, want)
	}
	if len(state.Transactions) != 0 {
		t.Errorf("new account has %d transactions, want 0", len(state.Transactions))
	}
	if len(state.Budgets) != 0 {
		t.Errorf("new account has %d budgets, want 0", len(state.Budgets))
	}
	if state.Settings != core.SeedSettings() {
		t.Errorf("settings = %+v, want defaults", state.Settings)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	newTestUser(t, repo)

	_, err := repo.CreateUser(context.Background(), "test@example.com", "hash2", "")
	if !core.IsConflict(err) {
		t.Fatalf("duplicate email error = %v, want conflict", err)
	}
}

func TestCreateUserNameFallsBackToEmailLocalPart(t *testing.T) {
	repo := newTestRepo(t)
	user, err := repo.CreateUser(context.Background(), "minh@example.com", "hash", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Name != "minh" {
		t.Errorf("name = %q, want %q", user.Name, "minh")
	}
}

func TestUserByEmail(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)

	got, hash, err := repo.UserByEmail(context.Background(), user.Email)
	if err != nil {
		t.Fatalf("user by email: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("id = %q, want %q", got.ID, user.ID)
	}
	if hash != "hash" {
		t.Errorf("password hash = %q, want %q", hash, "hash")
	}

	_, _, err = repo.UserByEmail(context.Background(), "nobody@example.com")
	if !core.IsNotFound(err) {
		t.Fatalf("missing user error = %v, want not found", err)
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	ctx := context.Background()

	created, err := repo.CreateTransaction(ctx, user.ID, core.Transaction{
		CategoryID: "dining",
		Type:       core.Expense,
		Amount:     250_000,
		Date:       time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
		Merchant:   "Quán Phở",
		Tags:       []string{"thực phẩm"},
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created transaction has no id")
	}

	got, err := repo.TransactionByID(ctx, user.ID, created.ID)
	if err != nil {
		t.Fatalf("transaction by id: %v", err)
	}
	if got.Amount != 250_000 || got.CategoryID != "dining" || got.Merchant != "Quán Phở" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "thực phẩm" {
		t.Errorf("tags = %v", got.Tags)
	}
}

func TestCreateTransactionUnknownCategory(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)

	_, err := repo.CreateTransaction(context.Background(), user.ID, core.Transaction{
		CategoryID: "does-not-exist",
		Type:       core.Expense,
		Amount:     1000,
		Date:       time.Now(),
	})
	if !core.IsValidation(err) {
		t.Fatalf("unknown category error = %v, want validation", err)
	}
}

func TestStateOrdersTransactionsNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	ctx := context.Background()

	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := repo.CreateTransaction(ctx, user.ID, core.Transaction{
			CategoryID: "dining",
			Type:       core.Expense,
			Amount:     int64(1000 * (i + 1)),
			Date:       base.AddDate(0, 0, i),
		})
		if err != nil {
			t.Fatalf("create transaction %d: %v", i, err)
		}
	}

	state, err := repo.State(ctx, user.ID)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if len(state.Transactions) != 3 {
		t.Fatalf("transactions = %d, want 3", len(state.Transactions))
	}
	for i := 1; i < len(state.Transactions); i++ {
		if state.Transactions[i].Date.After(state.Transactions[i-1].Date) {
			t.Errorf("transactions not ordered newest first at %d", i)
		}
	}
}

func TestUpdateTransactionPatch(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	ctx := context.Background()

	created, err := repo.CreateTransaction(ctx, user.ID, core.Transaction{
		CategoryID: "dining",
		Type:       core.Expense,
		Amount:     100_000,
		Date:       time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Notes:      "before",
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	amount := int64(175_000)
	updated, err := repo.UpdateTransaction(ctx, user.ID, created.ID, core.TransactionPatch{Amount: &amount})
	if err != nil {
		t.Fatalf("update transaction: %v", err)
	}
	if updated.Amount != 175_000 {
		t.Errorf("amount = %d, want 175000", updated.Amount)
	}
	if updated.Notes != "before" {
		t.Errorf("notes cleared by unrelated patch: %q", updated.Notes)
	}

	_, err = repo.UpdateTransaction(ctx, user.ID, "missing", core.TransactionPatch{Amount: &amount})
	if !core.IsNotFound(err) {
		t.Fatalf("missing transaction error = %v, want not found", err)
	}
}

func TestDeleteTransaction(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	ctx := context.Background()

	created, err := repo.CreateTransaction(ctx, user.ID, core.Transaction{
		CategoryID: "dining",
		Type:       core.Expense,
		Amount:     1000,
		Date:       time.Now(),
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if err := repo.DeleteTransaction(ctx, user.ID, created.ID); err != nil {
		t.Fatalf("delete transaction: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, user.ID, created.ID); !core.IsNotFound(err) {
		t.Fatalf("second delete error = %v, want not found", err)
	}
}

func TestPutBudgetUpsertsSingleRow(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	ctx := context.Background()

	first, err := repo.PutBudget(ctx, user.ID, core.Budget{CategoryID: "dining", Month: 3, Year: 2024, Amount: 3_000_000})
	if err != nil {
		t.Fatalf("put budget: %v", err)
	}
	if first.ID != "2024-3-dining" {
		t.Errorf("budget id = %q, want %q", first.ID, "2024-3-dining")
	}

	second, err := repo.PutBudget(ctx, user.ID, core.Budget{CategoryID: "dining", Month: 3, Year: 2024, Amount: 5_000_000})
	if err != nil {
		t.Fatalf("put budget again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("upsert changed id: %q vs %q", second.ID, first.ID)
	}

	state, err := repo.State(ctx, user.ID)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if len(state.Budgets) != 1 {
		t.Fatalf("budgets = %d, want 1", len(state.Budgets))
	}
	if state.Budgets[0].Amount != 5_000_000 {
		t.Errorf("amount = %d, want 5000000", state.Budgets[0].Amount)
	}
}

func TestPutBudgetOverall(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)

	b, err := repo.PutBudget(context.Background(), user.ID, core.Budget{Month: 3, Year: 2024, Amount: 10_000_000})
	if err != nil {
		t.Fatalf("put overall budget: %v", err)
	}
	if b.ID != "2024-3-overall" {
		t.Errorf("budget id = %q, want %q", b.ID, "2024-3-overall")
	}
	if b.CategoryID != "" {
		t.Errorf("category id = %q, want empty", b.CategoryID)
	}
}

func TestDeleteCategoryInUse(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	ctx := context.Background()

	_, err := repo.CreateTransaction(ctx, user.ID, core.Transaction{
		CategoryID: "dining",
		Type:       core.Expense,
		Amount:     1000,
		Date:       time.Now(),
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if _, err := repo.PutBudget(ctx, user.ID, core.Budget{CategoryID: "dining", Month: 3, Year: 2024, Amount: 1}); err != nil {
		t.Fatalf("put budget: %v", err)
	}

	if err := repo.DeleteCategory(ctx, user.ID, "dining"); !core.IsConflict(err) {
		t.Fatalf("delete in-use category error = %v, want conflict", err)
	}

	// The failed delete must not have taken the budget with it.
	state, err := repo.State(ctx, user.ID)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if len(state.Budgets) != 1 {
		t.Errorf("budgets after failed delete = %d, want 1", len(state.Budgets))
	}
}

func TestDeleteCategoryCascadesBudgets(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	ctx := context.Background()

	if _, err := repo.PutBudget(ctx, user.ID, core.Budget{CategoryID: "transport", Month: 3, Year: 2024, Amount: 1}); err != nil {
		t.Fatalf("put budget: %v", err)
	}

	if err := repo.DeleteCategory(ctx, user.ID, "transport"); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	state, err := repo.State(ctx, user.ID)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	for _, c := range state.Categories {
		if c.ID == "transport" {
			t.Error("category still present after delete")
		}
	}
	if len(state.Budgets) != 0 {
		t.Errorf("budgets = %d, want 0", len(state.Budgets))
	}

	if err := repo.DeleteCategory(ctx, user.ID, "transport"); !core.IsNotFound(err) {
		t.Fatalf("second delete error = %v, want not found", err)
	}
}

func TestUpdateSettingsMerges(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	ctx := context.Background()

	theme := core.ThemeDark
	got, err := repo.UpdateSettings(ctx, user.ID, core.SettingsPatch{Theme: &theme})
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if got.Theme != core.ThemeDark {
		t.Errorf("theme = %q, want dark", got.Theme)
	}
	if got.Currency != "VND" {
		t.Errorf("currency cleared by unrelated patch: %q", got.Currency)
	}

	bad := 0
	if _, err := repo.UpdateSettings(ctx, user.ID, core.SettingsPatch{FirstDayOfMonth: &bad}); !core.IsValidation(err) {
		t.Fatalf("invalid first day error = %v, want validation", err)
	}
}

func TestResetUser(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	ctx := context.Background()

	if _, err := repo.CreateTransaction(ctx, user.ID, core.Transaction{
		CategoryID: "dining", Type: core.Expense, Amount: 1000, Date: time.Now(),
	}); err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if _, err := repo.PutBudget(ctx, user.ID, core.Budget{CategoryID: "dining", Month: 3, Year: 2024, Amount: 1}); err != nil {
		t.Fatalf("put budget: %v", err)
	}
	theme := core.ThemeDark
	if _, err := repo.UpdateSettings(ctx, user.ID, core.SettingsPatch{Theme: &theme}); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	if err := repo.ResetUser(ctx, user.ID); err != nil {
		t.Fatalf("reset: %v", err)
	}

	state, err := repo.State(ctx, user.ID)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if len(state.Transactions) != 0 || len(state.Budgets) != 0 {
		t.Errorf("reset left %d transactions, %d budgets", len(state.Transactions), len(state.Budgets))
	}
	if got, want := len(state.Categories), len(core.SeedCategories()); got != want {
		t.Errorf("categories after reset = %d, want %d", got, want)
	}
	if state.Settings != core.SeedSettings() {
		t.Errorf("settings after reset = %+v, want defaults", state.Settings)
	}
}

func TestEnsureSeededRestoresDeletedCategories(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	ctx := context.Background()

	// Deleting every category leaves the settings row in place; the account
	// must still get the default set back.
	for _, c := range core.SeedCategories() {
		if err := repo.DeleteCategory(ctx, user.ID, c.ID); err != nil {
			t.Fatalf("delete category %s: %v", c.ID, err)
		}
	}

	if err := repo.EnsureSeeded(ctx, user.ID); err != nil {
		t.Fatalf("ensure seeded: %v", err)
	}

	state, err := repo.State(ctx, user.ID)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if got, want := len(state.Categories), len(core.SeedCategories()); got != want {
		t.Errorf("categories = %d, want %d", got, want)
	}
}

func TestEnsureSeededIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := repo.EnsureSeeded(ctx, user.ID); err != nil {
			t.Fatalf("ensure seeded (%d): %v", i, err)
		}
	}

	state, err := repo.State(ctx, user.ID)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if got, want := len(state.Categories), len(core.SeedCategories()); got != want {
		t.Errorf("categories = %d, want %d", got, want)
	}
}
