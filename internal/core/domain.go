package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Weekly  RecurringRule = "weekly"
	Monthly RecurringRule = "monthly"
	Yearly  RecurringRule = "yearly"
)

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// OverallBudget is the category slot used by a budget that spans all
// expense categories.
const OverallBudget = "overall"

type (
	TransactionType string

	RecurringRule string

	Theme string

	Category struct {
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Type  TransactionType `json:"type"`
		Color string          `json:"color"`
		Icon  string          `json:"icon"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		CategoryID  string          `json:"categoryId"`
		Type        TransactionType `json:"type"`
		Amount      int64           `json:"amount"`
		Date        time.Time       `json:"date"`
		Merchant    string          `json:"merchant,omitempty"`
		Notes       string          `json:"notes,omitempty"`
		Tags        []string        `json:"tags"`
		IsRecurring bool            `json:"isRecurring"`
		// RecurringRule is informational metadata only; nothing generates
		// future transactions from it.
		RecurringRule RecurringRule `json:"recurringRule,omitempty"`
	}

	// Budget caps spending for one month. An empty CategoryID means the
	// budget covers all expense categories combined.
	Budget struct {
		ID         string `json:"id"`
		CategoryID string `json:"categoryId,omitempty"`
		Month      int    `json:"month"`
		Year       int    `json:"year"`
		Amount     int64  `json:"amount"`
		// RolloverEnabled is persisted but not consumed by any calculation.
		RolloverEnabled bool `json:"rolloverEnabled"`
	}

	Settings struct {
		Currency        string `json:"currency"`
		FirstDayOfMonth int    `json:"firstDayOfMonth"`
		Theme           Theme  `json:"theme"`
		// LocalAPIKey is held on the client only and must never reach the
		// server. The server-facing codecs skip it.
		LocalAPIKey string `json:"localApiKey,omitempty"`
	}

	// LedgerState is the full per-account data set as exchanged with the
	// server: GET finance/state returns it and ReplaceAll consumes it.
	LedgerState struct {
		Categories   []Category    `json:"categories"`
		Transactions []Transaction `json:"transactions"`
		Budgets      []Budget      `json:"budgets"`
		Settings     Settings      `json:"settings"`
	}

	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
)

// Patch types carry partial updates. Nil fields are left untouched.
type (
	CategoryPatch struct {
		Name  *string          `json:"name,omitempty"`
		Type  *TransactionType `json:"type,omitempty"`
		Color *string          `json:"color,omitempty"`
		Icon  *string          `json:"icon,omitempty"`
	}

	TransactionPatch struct {
		CategoryID    *string          `json:"categoryId,omitempty"`
		Type          *TransactionType `json:"type,omitempty"`
		Amount        *int64           `json:"amount,omitempty"`
		Date          *time.Time       `json:"date,omitempty"`
		Merchant      *string          `json:"merchant,omitempty"`
		Notes         *string          `json:"notes,omitempty"`
		Tags          *[]string        `json:"tags,omitempty"`
		IsRecurring   *bool            `json:"isRecurring,omitempty"`
		RecurringRule *RecurringRule   `json:"recurringRule,omitempty"`
	}

	SettingsPatch struct {
		Currency        *string `json:"currency,omitempty"`
		FirstDayOfMonth *int    `json:"firstDayOfMonth,omitempty"`
		Theme           *Theme  `json:"theme,omitempty"`
		LocalAPIKey     *string `json:"-"`
	}
)

var (
	ErrInvalidType     = errors.New("type must be income or expense")
	ErrInvalidAmount   = errors.New("amount must not be negative")
	ErrMissingDate     = errors.New("date is required")
	ErrMissingCategory = errors.New("category is required")
	ErrEmptyName       = errors.New("name is required")
	ErrEmptyColor      = errors.New("color is required")
	ErrEmptyIcon       = errors.New("icon is required")
	ErrInvalidMonth    = errors.New("month must be between 1 and 12")
	ErrInvalidYear     = errors.New("invalid year")
	ErrInvalidRule     = errors.New("invalid recurring rule")
	ErrInvalidTheme    = errors.New("theme must be light, dark or system")
	ErrInvalidFirstDay = errors.New("first day of month must be between 1 and 28")
	ErrEmptyCurrency   = errors.New("currency is required")
)

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

func (r RecurringRule) Validate() error {
	switch r {
	case "", Weekly, Monthly, Yearly:
		return nil
	}
	return ErrInvalidRule
}

func (t Theme) Validate() error {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return nil
	}
	return ErrInvalidTheme
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("category id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if err := c.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Color) == "" {
		return ErrEmptyColor
	}
	if strings.TrimSpace(c.Icon) == "" {
		return ErrEmptyIcon
	}
	return nil
}

// Validate checks the fields a mutation must carry before any network
// call: category present, well-typed type and amount, date set.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrMissingCategory
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if t.Amount < 0 {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	return t.RecurringRule.Validate()
}

func (b Budget) Validate() error {
	if b.Month < 1 || b.Month > 12 {
		return ErrInvalidMonth
	}
	if b.Year <= 0 {
		return ErrInvalidYear
	}
	if b.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Key returns the budget's natural key. It doubles as the storage
// identifier: at most one budget may exist per key and account.
func (b Budget) Key() string {
	return BudgetKey(b.CategoryID, b.Month, b.Year)
}

// BudgetKey serializes a (year, month, categoryId-or-overall) tuple.
func BudgetKey(categoryID string, month, year int) string {
	if categoryID == "" {
		categoryID = OverallBudget
	}
	return fmt.Sprintf("%d-%d-%s", year, month, categoryID)
}

func (s Settings) Validate() error {
	if strings.TrimSpace(s.Currency) == "" {
		return ErrEmptyCurrency
	}
	if s.FirstDayOfMonth < 1 || s.FirstDayOfMonth > 28 {
		return ErrInvalidFirstDay
	}
	return s.Theme.Validate()
}

func (p SettingsPatch) Validate() error {
	if p.Currency != nil && strings.TrimSpace(*p.Currency) == "" {
		return ErrEmptyCurrency
	}
	if p.FirstDayOfMonth != nil && (*p.FirstDayOfMonth < 1 || *p.FirstDayOfMonth > 28) {
		return ErrInvalidFirstDay
	}
	if p.Theme != nil {
		return p.Theme.Validate()
	}
	return nil
}

// Merge applies the patch over s and returns the result. Fields absent
// from the patch are never cleared.
func (p SettingsPatch) Merge(s Settings) Settings {
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.FirstDayOfMonth != nil {
		s.FirstDayOfMonth = *p.FirstDayOfMonth
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.LocalAPIKey != nil {
		s.LocalAPIKey = *p.LocalAPIKey
	}
	return s
}

// Merge applies the patch over c and returns the result.
func (p CategoryPatch) Merge(c Category) Category {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Type != nil {
		// Changing the type does not reclassify existing transactions.
		c.Type = *p.Type
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	return c
}

// Merge applies the patch over t and returns the result.
func (p TransactionPatch) Merge(t Transaction) Transaction {
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Merchant != nil {
		t.Merchant = *p.Merchant
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Tags != nil {
		t.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.IsRecurring != nil {
		t.IsRecurring = *p.IsRecurring
	}
	if p.RecurringRule != nil {
		t.RecurringRule = *p.RecurringRule
	}
	return t
}
