package event

import (
	"testing"
	"time"
)

func TestNewLedgerEvent(t *testing.T) {
	e := NewLedgerEvent(EntityTransaction, ActionCreate, "user-1", "tx-1")

	if e.Entity != EntityTransaction {
		t.Errorf("Entity = %q, want %q", e.Entity, EntityTransaction)
	}
	if e.Action != ActionCreate {
		t.Errorf("Action = %q, want %q", e.Action, ActionCreate)
	}
	if e.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(e.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestLedgerEventJSON(t *testing.T) {
	e := &LedgerEvent{
		Entity:    EntityBudget,
		Action:    ActionUpdate,
		UserID:    "user-1",
		EntityID:  "2024-3-dining",
		Timestamp: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
	}

	data, err := e.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := LedgerEventFromJSON(data)
	if err != nil {
		t.Fatalf("LedgerEventFromJSON() error = %v", err)
	}

	if parsed.Entity != e.Entity || parsed.Action != e.Action ||
		parsed.UserID != e.UserID || parsed.EntityID != e.EntityID {
		t.Errorf("round trip mismatch: %+v", parsed)
	}
	if !parsed.Timestamp.Equal(e.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", parsed.Timestamp, e.Timestamp)
	}
}

func TestLedgerEventInvalidJSON(t *testing.T) {
	if _, err := LedgerEventFromJSON([]byte(`{"entity": 42}`)); err == nil {
		t.Error("LedgerEventFromJSON() should fail with invalid JSON")
	}
}
