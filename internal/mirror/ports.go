package mirror

import (
	"context"

	"finebank/internal/core"
)

// TransactionMirror is the outbound port for the read-only copy of an
// account's transactions kept outside the primary store.
type TransactionMirror interface {
	// Append writes one transaction to the mirror and returns a backend
	// specific reference to the written row.
	Append(ctx context.Context, userID string, t core.Transaction) (rowRef string, err error)
}
