package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"chain_chat/internal/model"
	apperrors "chain_chat/pkg/errors"
)

const (
	KeySize   = 32
	NonceSize = 12
	TagSize   = 16
)

// Encrypt seals plaintext under a 32-byte key with AES-256-GCM and a fresh
// random 12-byte nonce. Nonces must never repeat under the same key, so they
// are always drawn from crypto/rand and never derived from message content.
func Encrypt(plaintext string, key []byte) (*model.EncryptedPayload, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("rand.Read nonce: %w", err)
	}
	ciphertext := aead.Seal(nil, nonce, []byte(plaintext), nil)
	return &model.EncryptedPayload{IV: nonce, Data: ciphertext}, nil
}

// Decrypt opens a payload with the given key. Every failure mode (bad tag,
// wrong key, truncated or malformed payload) surfaces the same
// ErrDecryptionFailed so callers cannot distinguish them.
func Decrypt(payload *model.EncryptedPayload, key []byte) (string, error) {
	if len(key) != KeySize {
		return "", apperrors.ErrDecryptionFailed
	}

	switch payload.Scheme() {
	case model.SchemeGCM:
		plain, err := open(key, payload.IV, payload.Data)
		if err != nil {
			return "", apperrors.ErrDecryptionFailed
		}
		return string(plain), nil

	case model.SchemeLegacy:
		// Each legacy ciphertext is nonce||ciphertext for one party; try
		// both, the caller's key opens at most one.
		for _, blob := range [][]byte{payload.LegacyRecipient, payload.LegacySender} {
			if len(blob) < NonceSize+TagSize {
				continue
			}
			plain, err := open(key, blob[:NonceSize], blob[NonceSize:])
			if err == nil {
				return string(plain), nil
			}
		}
		return "", apperrors.ErrDecryptionFailed

	default:
		return "", apperrors.ErrDecryptionFailed
	}
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return aead, nil
}

func open(key, nonce, ciphertext []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("bad nonce size")
	}
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, nonce, ciphertext, nil)
}
