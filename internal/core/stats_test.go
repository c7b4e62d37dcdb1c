package core

import (
	"math"
	"testing"
	"time"
)

func TestComputeMonthlyStatsNetIdentity(t *testing.T) {
	txs := []Transaction{
		{ID: "1", CategoryID: "salary", Type: Income, Amount: 15_000_000, Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "2", CategoryID: "dining", Type: Expense, Amount: 250_000, Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
		{ID: "3", CategoryID: "dining", Type: Expense, Amount: 100_000, Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)}, // other month
	}
	budgets := []Budget{
		{ID: "2024-3-dining", CategoryID: "dining", Month: 3, Year: 2024, Amount: 3_000_000},
		{ID: "2024-4-dining", CategoryID: "dining", Month: 4, Year: 2024, Amount: 9_000_000},
	}

	stats := ComputeMonthlyStats(txs, budgets, 3, 2024)
	if stats.TotalIncome != 15_000_000 {
		t.Fatalf("income = %d", stats.TotalIncome)
	}
	if stats.TotalExpenses != 250_000 {
		t.Fatalf("expenses = %d", stats.TotalExpenses)
	}
	if stats.NetAmount != stats.TotalIncome-stats.TotalExpenses {
		t.Fatalf("net = %d", stats.NetAmount)
	}
	if stats.BudgetTotal != 3_000_000 {
		t.Fatalf("budget total picked up other months: %d", stats.BudgetTotal)
	}
	if stats.BudgetRemaining != 3_000_000-250_000 {
		t.Fatalf("remaining = %d", stats.BudgetRemaining)
	}
}

func TestComputeMonthlyStatsEmptyMonth(t *testing.T) {
	stats := ComputeMonthlyStats(nil, nil, 1, 2024)
	if stats != (MonthlyStats{}) {
		t.Fatalf("empty month stats = %+v", stats)
	}
}

// Seeding at a reference date and then adding an expense must move both
// totalExpenses and budgetRemaining by exactly that amount.
func TestStatsAfterAddedExpense(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	seed := Seed(now)

	before := ComputeMonthlyStats(seed.Transactions, seed.Budgets, 3, 2024)

	txs := append(seed.Transactions, Transaction{
		ID:         "t-new",
		Type:       Expense,
		Amount:     200_000,
		Date:       time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		CategoryID: "dining",
	})
	after := ComputeMonthlyStats(txs, seed.Budgets, 3, 2024)

	if after.TotalExpenses != before.TotalExpenses+200_000 {
		t.Fatalf("expenses %d -> %d", before.TotalExpenses, after.TotalExpenses)
	}
	if after.BudgetRemaining != before.BudgetRemaining-200_000 {
		t.Fatalf("remaining %d -> %d", before.BudgetRemaining, after.BudgetRemaining)
	}
}

func TestMonthlyTransactionsBoundaries(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Date: time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)},
		{ID: "2", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "3", Date: time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)},
		{ID: "4", Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}, // same month, other year
	}
	got := MonthlyTransactions(txs, 3, 2024)
	if len(got) != 2 || got[0].ID != "2" || got[1].ID != "3" {
		t.Fatalf("monthly = %+v", got)
	}
}

func TestCategoryTransactions(t *testing.T) {
	txs := []Transaction{
		{ID: "1", CategoryID: "dining", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "2", CategoryID: "transport", Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "3", CategoryID: "dining", Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
	}
	got := CategoryTransactions(txs, "dining", 3, 2024)
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("category transactions = %+v", got)
	}
}

func TestBudgetProgress(t *testing.T) {
	txs := []Transaction{
		{ID: "1", CategoryID: "dining", Type: Expense, Amount: 500_000, Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{ID: "2", CategoryID: "transport", Type: Expense, Amount: 300_000, Date: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)},
	}
	budgets := []Budget{
		{ID: "2024-3-dining", CategoryID: "dining", Month: 3, Year: 2024, Amount: 1_000_000},
		{ID: "2024-3-overall", Month: 3, Year: 2024, Amount: 2_000_000},
	}

	progress := ComputeBudgetProgress(txs, budgets, 3, 2024)
	if len(progress) != 2 {
		t.Fatalf("progress rows = %d", len(progress))
	}

	dining := progress[0]
	if dining.Spent != 500_000 || dining.Percentage != 50 {
		t.Fatalf("dining progress = %+v", dining)
	}
	overall := progress[1]
	if overall.Spent != 800_000 {
		t.Fatalf("overall spent = %d", overall.Spent)
	}
}

func TestBudgetProgressZeroAmount(t *testing.T) {
	txs := []Transaction{
		{ID: "1", CategoryID: "dining", Type: Expense, Amount: 100, Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
	}
	budgets := []Budget{
		{ID: "2024-3-dining", CategoryID: "dining", Month: 3, Year: 2024, Amount: 0},
	}
	progress := ComputeBudgetProgress(txs, budgets, 3, 2024)
	if len(progress) != 1 {
		t.Fatalf("progress rows = %d", len(progress))
	}
	pct := progress[0].Percentage
	if pct != 0 {
		t.Fatalf("percentage = %v, want 0", pct)
	}
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		t.Fatalf("percentage is not finite: %v", pct)
	}
}
