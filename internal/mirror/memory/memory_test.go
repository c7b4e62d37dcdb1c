package memory

import (
	"context"
	"testing"
	"time"

	"finebank/internal/core"
)

func TestAppendAndFilterByUser(t *testing.T) {
	s := New()
	ctx := context.Background()

	tx := core.Transaction{
		ID:         "tx-1",
		CategoryID: "dining",
		Type:       core.Expense,
		Amount:     250_000,
		Date:       time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	ref, err := s.Append(ctx, "user-1", tx)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}

	tx.ID = "tx-2"
	if _, err := s.Append(ctx, "user-2", tx); err != nil {
		t.Fatalf("append second: %v", err)
	}

	if got := len(s.Transactions("user-1")); got != 1 {
		t.Errorf("user-1 transactions = %d, want 1", got)
	}
	if s.Len() != 2 {
		t.Errorf("total = %d, want 2", s.Len())
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	s := New()
	_, err := s.Append(context.Background(), "user-1", core.Transaction{})
	if err == nil {
		t.Fatal("append of invalid transaction should fail")
	}
	if s.Len() != 0 {
		t.Errorf("invalid transaction was stored")
	}
}
