// Package ledger holds the client-side copy of one account's finance data
// and the closed set of transitions that may change it. The snapshot is the
// authoritative local state; it only ever reflects what the server has
// confirmed.
package ledger

import (
	"sort"

	"finebank/internal/core"
)

// Snapshot is one immutable view of the ledger. Budgets are keyed by their
// natural key, which makes SetBudget a plain map write: the at-most-one
// budget per (categoryId|overall, month, year) invariant holds by
// construction.
type Snapshot struct {
	Categories   []core.Category
	Transactions []core.Transaction
	Budgets      map[string]core.Budget
	Settings     core.Settings
}

// FromState builds a snapshot from the server's wire representation.
func FromState(st core.LedgerState) Snapshot {
	s := Snapshot{
		Categories:   append([]core.Category(nil), st.Categories...),
		Transactions: append([]core.Transaction(nil), st.Transactions...),
		Budgets:      make(map[string]core.Budget, len(st.Budgets)),
		Settings:     st.Settings,
	}
	for _, b := range st.Budgets {
		s.Budgets[b.Key()] = b
	}
	return s
}

// FromSeed builds a snapshot from the deterministic seed state; used for
// the unauthenticated placeholder view.
func FromSeed(seed core.SeedState) Snapshot {
	return FromState(core.LedgerState{
		Categories:   seed.Categories,
		Transactions: seed.Transactions,
		Budgets:      seed.Budgets,
		Settings:     seed.Settings,
	})
}

// BudgetList returns the budgets ordered by natural key.
func (s Snapshot) BudgetList() []core.Budget {
	out := make([]core.Budget, 0, len(s.Budgets))
	for _, b := range s.Budgets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// MonthlyStats derives the month's aggregate view from this snapshot.
func (s Snapshot) MonthlyStats(month, year int) core.MonthlyStats {
	return core.ComputeMonthlyStats(s.Transactions, s.BudgetList(), month, year)
}

// BudgetProgress derives per-budget spending for the month.
func (s Snapshot) BudgetProgress(month, year int) []core.BudgetProgress {
	return core.ComputeBudgetProgress(s.Transactions, s.BudgetList(), month, year)
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		Categories:   append([]core.Category(nil), s.Categories...),
		Transactions: append([]core.Transaction(nil), s.Transactions...),
		Budgets:      make(map[string]core.Budget, len(s.Budgets)),
		Settings:     s.Settings,
	}
	for k, b := range s.Budgets {
		out.Budgets[k] = b
	}
	return out
}
