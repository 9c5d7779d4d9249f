// Package message stores permanent message records, the per-account
// permanent indexes, and the ledger meta document (counter, fee, collected
// fees).
package message

import (
	"context"

	"chain_chat/internal/model"
)

type (
	// Meta is the mutable ledger bookkeeping persisted across restarts.
	Meta struct {
		Counter             uint64 `bson:"counter"`
		PermanentMessageFee uint64 `bson:"permanent_message_fee"`
		CollectedFees       uint64 `bson:"collected_fees"`
	}

	Store interface {
		// Get returns (nil, nil) when no record exists under id.
		Get(ctx context.Context, id model.Hash) (*model.Message, error)
		// Put writes an immutable record; ids are unique by construction
		// so overwrites cannot happen on valid input.
		Put(ctx context.Context, id model.Hash, msg *model.Message) error
		// AppendIndex appends id to the account's permanent index
		// (insertion order, append only).
		AppendIndex(ctx context.Context, account model.Account, id model.Hash) error
		Index(ctx context.Context, account model.Account) ([]model.Hash, error)

		// LoadMeta returns (nil, nil) on first boot.
		LoadMeta(ctx context.Context) (*Meta, error)
		SaveMeta(ctx context.Context, meta *Meta) error
	}
)
