package ledger

import "finebank/internal/core"

// Action is one element of the closed transition set. Apply is total: every
// action on every snapshot yields a snapshot, with no partial failure and
// no I/O.
type Action interface {
	isAction()
}

type (
	AddTransaction struct {
		Transaction core.Transaction
	}

	UpdateTransaction struct {
		ID    string
		Patch core.TransactionPatch
	}

	DeleteTransaction struct {
		ID string
	}

	AddCategory struct {
		Category core.Category
	}

	UpdateCategory struct {
		ID    string
		Patch core.CategoryPatch
	}

	// DeleteCategory removes the category and cascades to every transaction
	// and budget referencing it. Dispatch it only as the local effect of a
	// server-confirmed deletion; the server rejects deletes of categories
	// that transactions still reference.
	DeleteCategory struct {
		ID string
	}

	// SetBudget replaces any budget sharing the natural key, then inserts.
	SetBudget struct {
		Budget core.Budget
	}

	// UpdateSettings shallow-merges the patch; absent fields are kept.
	UpdateSettings struct {
		Patch core.SettingsPatch
	}

	// ReplaceAll swaps in a freshly loaded server state wholesale. Used
	// after sign-in, after reset, and on any full reload; the store is a
	// disposable cache and is never reconciled by diffing.
	ReplaceAll struct {
		State core.LedgerState
	}
)

func (AddTransaction) isAction()    {}
func (UpdateTransaction) isAction() {}
func (DeleteTransaction) isAction() {}
func (AddCategory) isAction()       {}
func (UpdateCategory) isAction()    {}
func (DeleteCategory) isAction()    {}
func (SetBudget) isAction()         {}
func (UpdateSettings) isAction()    {}
func (ReplaceAll) isAction()        {}

// Apply computes the snapshot that results from one action. The input
// snapshot is never mutated.
func Apply(s Snapshot, a Action) Snapshot {
	switch a := a.(type) {
	case AddTransaction:
		next := s.clone()
		next.Transactions = append(next.Transactions, a.Transaction)
		return next

	case UpdateTransaction:
		next := s.clone()
		for i, tx := range next.Transactions {
			if tx.ID == a.ID {
				next.Transactions[i] = a.Patch.Merge(tx)
			}
		}
		return next

	case DeleteTransaction:
		next := s.clone()
		next.Transactions = deleteWhere(next.Transactions, func(tx core.Transaction) bool {
			return tx.ID == a.ID
		})
		return next

	case AddCategory:
		next := s.clone()
		next.Categories = append(next.Categories, a.Category)
		return next

	case UpdateCategory:
		next := s.clone()
		for i, c := range next.Categories {
			if c.ID == a.ID {
				next.Categories[i] = a.Patch.Merge(c)
			}
		}
		return next

	case DeleteCategory:
		next := s.clone()
		next.Categories = deleteWhere(next.Categories, func(c core.Category) bool {
			return c.ID == a.ID
		})
		next.Transactions = deleteWhere(next.Transactions, func(tx core.Transaction) bool {
			return tx.CategoryID == a.ID
		})
		for key, b := range next.Budgets {
			if b.CategoryID == a.ID {
				delete(next.Budgets, key)
			}
		}
		return next

	case SetBudget:
		next := s.clone()
		next.Budgets[a.Budget.Key()] = a.Budget
		return next

	case UpdateSettings:
		next := s.clone()
		next.Settings = a.Patch.Merge(next.Settings)
		return next

	case ReplaceAll:
		return FromState(a.State)
	}
	return s
}

func deleteWhere[T any](in []T, drop func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if !drop(v) {
			out = append(out, v)
		}
	}
	return out
}
