package memory

import (
	"context"
	"fmt"
	"sync"

	"finebank/internal/core"
)

// Store is an in-process mirror used for local runs and tests.
type Store struct {
	mu    sync.Mutex
	items []entry
}

type entry struct {
	userID string
	tx     core.Transaction
}

func New() *Store {
	return &Store{}
}

// Append stores the transaction and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, userID string, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, entry{userID: userID, tx: t})
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Transactions returns the mirrored transactions for one account.
func (s *Store) Transactions(userID string) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, e := range s.items {
		if e.userID == userID {
			out = append(out, e.tx)
		}
	}
	return out
}

// Len returns the total number of mirrored rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
