// Package registry stores the per-account public key records. A zero-valued
// key means "not registered"; records are only ever overwritten, never
// deleted.
package registry

import (
	"context"

	"chain_chat/internal/model"
)

type Store interface {
	// Get returns the zero key when the account has never registered.
	Get(ctx context.Context, account model.Account) (model.PublicKey, error)
	// Put overwrites unconditionally (last write wins).
	Put(ctx context.Context, account model.Account, key model.PublicKey) error
}
