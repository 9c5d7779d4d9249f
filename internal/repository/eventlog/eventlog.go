// Package eventlog is the append-only, conversation-indexed event log. Each
// conversation has its own ordered stream, so a transcript load never scans
// the whole history.
package eventlog

import (
	"context"

	"chain_chat/internal/model"
)

type Log interface {
	// NextSeq allocates the next ledger-global sequence number.
	NextSeq(ctx context.Context) (uint64, error)
	// Append adds an event to its conversation's stream.
	Append(ctx context.Context, ev *model.MessageEvent) error
	// Range returns events [from, from+limit) in ledger order. limit <= 0
	// means "to the end".
	Range(ctx context.Context, conversation model.Hash, from, limit int64) ([]model.MessageEvent, error)
	Len(ctx context.Context, conversation model.Hash) (int64, error)

	// AppendStored records the secondary durable-storage event.
	AppendStored(ctx context.Context, ev *model.StoredEvent) error
	StoredEvents(ctx context.Context, from, limit int64) ([]model.StoredEvent, error)
}
