// Package wallet holds the client side of identity: the signing oracle
// abstraction, a local ed25519 wallet, and the derivation of messaging keys
// from wallet signatures.
package wallet

import (
	"context"

	"chain_chat/internal/model"
)

type (
	// SigningOracle signs a message on behalf of an account. Signing must
	// be deterministic per (key, message) pair; key derivation re-signs the
	// same protocol message and expects the same bytes back every time.
	//
	// Sign may suspend indefinitely waiting for user interaction; callers
	// pass a context and must handle cancellation. Implementations return
	// ErrSigningRejected when the user declines and ErrOracleUnavailable
	// when no key is bound to the account.
	SigningOracle interface {
		Sign(ctx context.Context, account model.Account, message []byte) ([]byte, error)
	}
)
