package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finebank/internal/core"
	"finebank/internal/event"
	"finebank/internal/mirror"
)

// TransactionLoader fetches one transaction of one account from storage.
type TransactionLoader interface {
	TransactionByID(ctx context.Context, userID, id string) (core.Transaction, error)
}

// MirrorWorker copies newly created transactions to an external mirror.
// Events carry only identifiers; the worker reads the current row from
// storage, so replayed deliveries mirror whatever the row looks like now.
type MirrorWorker struct {
	loader TransactionLoader
	mirror mirror.TransactionMirror
}

func NewMirrorWorker(loader TransactionLoader, m mirror.TransactionMirror) *MirrorWorker {
	return &MirrorWorker{loader: loader, mirror: m}
}

// HandleEvent processes a single ledger event. Only transaction creations
// are mirrored; every other event is acknowledged and skipped.
func (w *MirrorWorker) HandleEvent(ctx context.Context, e *event.LedgerEvent) error {
	if e.Entity != event.EntityTransaction || e.Action != event.ActionCreate {
		slog.DebugContext(ctx, "Skipping event",
			"entity", e.Entity,
			"action", e.Action)
		return nil
	}

	tx, err := w.loader.TransactionByID(ctx, e.UserID, e.EntityID)
	if err != nil {
		if core.IsNotFound(err) {
			// Deleted between publish and delivery; nothing left to mirror.
			slog.WarnContext(ctx, "Transaction gone before mirroring",
				"transaction_id", e.EntityID)
			return nil
		}
		return fmt.Errorf("load transaction: %w", err)
	}

	ref, err := w.mirror.Append(ctx, e.UserID, tx)
	if err != nil {
		return fmt.Errorf("mirror transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction mirrored",
		"transaction_id", tx.ID,
		"mirror_ref", ref)

	return nil
}
