// Package addressing computes the canonical conversation identifier for a
// pair of accounts. The ledger indexes events with the exact same function
// the client queries with, so the two sides agree bit for bit.
package addressing

import (
	"crypto/sha256"

	"chain_chat/internal/model"
)

// ConversationID is order independent: ConversationID(a, b) ==
// ConversationID(b, a). The smaller account (bytewise) is hashed first.
func ConversationID(a, b model.Account) model.Hash {
	if a.Cmp(b) > 0 {
		a, b = b, a
	}
	h := sha256.New()
	h.Write(a[:])
	h.Write(b[:])
	var out model.Hash
	copy(out[:], h.Sum(nil))
	return out
}
