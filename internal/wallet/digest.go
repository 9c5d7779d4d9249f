package wallet

import (
	"crypto/sha256"
	"fmt"

	"chain_chat/internal/cryptographic/signature"
	"chain_chat/internal/model"
)

// Operation digests signed by the caller's wallet and verified by the node.
// Both sides build the exact same bytes, so the signature doubles as the
// caller-identity check for every mutating or access-controlled call.

func RegisterDigest(account model.Account, key model.PublicKey) []byte {
	return opDigest("register", account.Hex(), key.Hex())
}

func SendDigest(sender, recipient model.Account, encryptedContent string, permanent bool, fee uint64) []byte {
	return opDigest("send", sender.Hex(), recipient.Hex(), encryptedContent,
		fmt.Sprintf("%t", permanent), fmt.Sprintf("%d", fee))
}

func ReadDigest(caller model.Account, id model.Hash) []byte {
	return opDigest("read", caller.Hex(), id.Hex())
}

func SetFeeDigest(caller model.Account, fee uint64) []byte {
	return opDigest("set-fee", caller.Hex(), fmt.Sprintf("%d", fee))
}

func WithdrawDigest(caller model.Account) []byte {
	return opDigest("withdraw", caller.Hex())
}

// Verify checks a wallet signature over an operation digest.
func Verify(walletPub, digest, sig []byte) bool {
	return signature.ED25519Verify(walletPub, digest, sig)
}

func opDigest(op string, fields ...string) []byte {
	h := sha256.New()
	h.Write([]byte(op))
	for _, f := range fields {
		h.Write([]byte{'|'})
		h.Write([]byte(f))
	}
	return h.Sum(nil)
}
