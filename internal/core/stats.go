package core

// Monthly aggregation over a ledger snapshot. These are stateless helpers
// recomputed on every call; data volumes per account are small enough that
// indexing by month would be premature.

// MonthlyStats summarizes one calendar month.
type MonthlyStats struct {
	TotalIncome     int64 `json:"totalIncome"`
	TotalExpenses   int64 `json:"totalExpenses"`
	NetAmount       int64 `json:"netAmount"`
	BudgetTotal     int64 `json:"budgetTotal"`
	BudgetRemaining int64 `json:"budgetRemaining"`
}

// BudgetProgress reports spending against one budget of the selected month.
type BudgetProgress struct {
	Budget     Budget  `json:"budget"`
	Spent      int64   `json:"spent"`
	Percentage float64 `json:"percentage"`
}

// MonthlyTransactions returns the transactions whose date falls in the
// given calendar month, bucketed by the timestamp's own calendar fields.
func MonthlyTransactions(txs []Transaction, month, year int) []Transaction {
	var out []Transaction
	for _, t := range txs {
		if int(t.Date.Month()) == month && t.Date.Year() == year {
			out = append(out, t)
		}
	}
	return out
}

// CategoryTransactions returns the month's transactions for one category.
func CategoryTransactions(txs []Transaction, categoryID string, month, year int) []Transaction {
	var out []Transaction
	for _, t := range MonthlyTransactions(txs, month, year) {
		if t.CategoryID == categoryID {
			out = append(out, t)
		}
	}
	return out
}

// ComputeMonthlyStats derives income, expenses, net and budget headroom for
// one month. No rollover is applied: unused budget from prior months never
// carries over.
func ComputeMonthlyStats(txs []Transaction, budgets []Budget, month, year int) MonthlyStats {
	var stats MonthlyStats
	for _, t := range MonthlyTransactions(txs, month, year) {
		switch t.Type {
		case Income:
			stats.TotalIncome += t.Amount
		case Expense:
			stats.TotalExpenses += t.Amount
		}
	}
	stats.NetAmount = stats.TotalIncome - stats.TotalExpenses

	for _, b := range budgets {
		if b.Month == month && b.Year == year {
			stats.BudgetTotal += b.Amount
		}
	}
	stats.BudgetRemaining = stats.BudgetTotal - stats.TotalExpenses
	return stats
}

// ComputeBudgetProgress reports, for each budget of the month, the amount
// spent and the percentage of the budget consumed. A zero-amount budget
// yields 0%, never a division error.
func ComputeBudgetProgress(txs []Transaction, budgets []Budget, month, year int) []BudgetProgress {
	stats := ComputeMonthlyStats(txs, budgets, month, year)

	var out []BudgetProgress
	for _, b := range budgets {
		if b.Month != month || b.Year != year {
			continue
		}
		var spent int64
		if b.CategoryID != "" {
			for _, t := range CategoryTransactions(txs, b.CategoryID, month, year) {
				spent += t.Amount
			}
		} else {
			spent = stats.TotalExpenses
		}
		pct := 0.0
		if b.Amount != 0 {
			pct = float64(spent) / float64(b.Amount) * 100
		}
		out = append(out, BudgetProgress{Budget: b, Spent: spent, Percentage: pct})
	}
	return out
}
