package event

import (
	"encoding/json"
	"time"
)

const (
	EntityTransaction = "transaction"
	EntityCategory    = "category"
	EntityBudget      = "budget"
	EntitySettings    = "settings"
	EntityLedger      = "ledger"

	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionReset  = "reset"
)

// LedgerEvent is a lightweight notification that one ledger entity changed.
// It carries only identifiers; consumers fetch the row they need from the
// database, so a stale or duplicated delivery is harmless.
type LedgerEvent struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	UserID    string    `json:"userId"`
	EntityID  string    `json:"entityId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time.
func NewLedgerEvent(entity, action, userID, entityID string) *LedgerEvent {
	return &LedgerEvent{
		Entity:    entity,
		Action:    action,
		UserID:    userID,
		EntityID:  entityID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON creates an event from JSON bytes
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
