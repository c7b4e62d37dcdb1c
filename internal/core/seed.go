package core

import "time"

// SeedState is the deterministic default ledger: shown to unauthenticated
// visitors, inserted server-side the first time an account turns out to be
// empty, and (categories and settings only) restored after a reset.
type SeedState struct {
	Categories   []Category
	Transactions []Transaction
	Budgets      []Budget
	Settings     Settings
}

// SeedCategories returns the 8 fixed default categories: 6 expense, 2 income.
func SeedCategories() []Category {
	return []Category{
		{ID: "dining", Name: "Ăn Uống", Type: Expense, Color: "#ef4444", Icon: "food"},
		{ID: "transport", Name: "Giao Thông", Type: Expense, Color: "#3b82f6", Icon: "transport"},
		{ID: "groceries", Name: "Tạp Hóa", Type: Expense, Color: "#10b981", Icon: "shopping"},
		{ID: "entertainment", Name: "Giải Trí", Type: Expense, Color: "#8b5cf6", Icon: "entertainment"},
		{ID: "utilities", Name: "Tiện Ích", Type: Expense, Color: "#f59e0b", Icon: "utilities"},
		{ID: "healthcare", Name: "Y Tế", Type: Expense, Color: "#ec4899", Icon: "health"},
		{ID: "salary", Name: "Lương", Type: Income, Color: "#10b981", Icon: "salary"},
		{ID: "freelance", Name: "Tự Do", Type: Income, Color: "#06b6d4", Icon: "freelance"},
	}
}

// SeedSettings returns the default account settings.
func SeedSettings() Settings {
	return Settings{Currency: "VND", FirstDayOfMonth: 1, Theme: ThemeSystem}
}

// Seed builds the default ledger relative to now: the fixed categories,
// 5 sample transactions dated 1-5 days back, 3 budgets for now's month and
// year, and default settings. Two calls with the same now are identical.
func Seed(now time.Time) SeedState {
	month := int(now.Month())
	year := now.Year()

	transactions := []Transaction{
		{
			ID:         "1",
			Type:       Expense,
			Amount:     250_000,
			Date:       now.AddDate(0, 0, -1),
			Merchant:   "Nhà Hàng Địa Phương",
			CategoryID: "dining",
			Notes:      "Ăn tối với gia đình",
			Tags:       []string{"thực phẩm", "gia đình"},
		},
		{
			ID:         "2",
			Type:       Expense,
			Amount:     150_000,
			Date:       now.AddDate(0, 0, -2),
			Merchant:   "Grab",
			CategoryID: "transport",
			Notes:      "Đi lại trong ngày",
			Tags:       []string{"di chuyển"},
		},
		{
			ID:         "3",
			Type:       Expense,
			Amount:     850_000,
			Date:       now.AddDate(0, 0, -3),
			Merchant:   "Siêu Thị",
			CategoryID: "groceries",
			Notes:      "Mua sắm hàng tuần",
			Tags:       []string{"thực phẩm", "nhà cửa"},
		},
		{
			ID:         "4",
			Type:       Income,
			Amount:     3_000_000,
			Date:       now.AddDate(0, 0, -4),
			Merchant:   "Freelance",
			CategoryID: "freelance",
			Notes:      "Dự án phụ",
			Tags:       []string{"thu nhập"},
		},
		{
			ID:            "5",
			Type:          Income,
			Amount:        15_000_000,
			Date:          now.AddDate(0, 0, -5),
			Merchant:      "Công ty",
			CategoryID:    "salary",
			Notes:         "Lương tháng",
			Tags:          []string{"lương"},
			IsRecurring:   true,
			RecurringRule: Monthly,
		},
	}

	budgets := []Budget{
		{CategoryID: "dining", Amount: 3_000_000, Month: month, Year: year},
		{CategoryID: "transport", Amount: 1_500_000, Month: month, Year: year},
		{CategoryID: "groceries", Amount: 4_000_000, Month: month, Year: year},
	}
	for i := range budgets {
		budgets[i].ID = budgets[i].Key()
	}

	return SeedState{
		Categories:   SeedCategories(),
		Transactions: transactions,
		Budgets:      budgets,
		Settings:     SeedSettings(),
	}
}
