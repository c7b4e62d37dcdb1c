package ledger

import "sync"

// Store guards the current snapshot. All reads go through Snapshot(),
// all writes through Dispatch(); the transition itself is the pure Apply.
// There is no ambient global store: whoever needs the ledger receives a
// *Store explicitly.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewStore(initial Snapshot) *Store {
	return &Store{snap: initial.clone()}
}

// Dispatch applies one action to the current snapshot.
func (st *Store) Dispatch(a Action) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.snap = Apply(st.snap, a)
}

// Snapshot returns a copy of the current state. Mutating the returned
// value does not affect the store.
func (st *Store) Snapshot() Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.snap.clone()
}
