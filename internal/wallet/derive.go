package wallet

import (
	"context"
	"errors"

	"chain_chat/internal/cryptographic/dh"
	"chain_chat/internal/cryptographic/kdf"
	"chain_chat/internal/model"
	apperrors "chain_chat/pkg/errors"
)

// KeyDerivationMessage is the fixed protocol message every wallet signs to
// derive its messaging keys. Changing it invalidates every registered key.
const KeyDerivationMessage = "chain_chat key derivation v1"

const (
	seedInfo            = "chain_chat messaging seed v1"
	conversationKeyInfo = "chain_chat message key v1"
)

type (
	// MessagingKeys is one account's derived X25519 pair. Pub is the value
	// registered on the ledger; Priv never leaves the client.
	MessagingKeys struct {
		Priv [32]byte
		Pub  model.PublicKey
	}
)

// DeriveMessagingKeys re-derives an account's messaging keypair from a wallet
// signature over KeyDerivationMessage. No secret state is persisted: the same
// wallet always yields the same keys.
func DeriveMessagingKeys(ctx context.Context, account model.Account, oracle SigningOracle) (*MessagingKeys, error) {
	if oracle == nil {
		return nil, apperrors.ErrOracleUnavailable
	}

	sig, err := oracle.Sign(ctx, account, []byte(KeyDerivationMessage))
	if err != nil {
		if errors.Is(err, apperrors.ErrSigningRejected) || errors.Is(err, apperrors.ErrOracleUnavailable) {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.CodeSigningRejected, "signing request failed", err)
	}

	seed, err := kdf.Derive32(sig, seedInfo)
	if err != nil {
		return nil, err
	}

	priv, pub := dh.X25519KeyPairFromSeed(seed)
	return &MessagingKeys{Priv: priv, Pub: model.PublicKey(pub)}, nil
}

// ConversationKey derives the symmetric key shared by the two parties of a
// conversation: HKDF over the X25519 shared secret between self's private key
// and the other party's registered public key. Both sides compute the same
// 32 bytes, so a single ciphertext serves sender and recipient.
func (k *MessagingKeys) ConversationKey(otherPub model.PublicKey) ([]byte, error) {
	secret, err := dh.X25519SharedSecret(k.Priv, [32]byte(otherPub))
	if err != nil {
		return nil, err
	}
	key, err := kdf.Derive32(secret, conversationKeyInfo)
	if err != nil {
		return nil, err
	}
	return key[:], nil
}
