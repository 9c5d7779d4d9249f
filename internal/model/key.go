package model

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const PublicKeySize = 32

type (
	// PublicKey is the registered per-account key material. A zero value
	// means "not registered".
	PublicKey [PublicKeySize]byte
)

// ParsePublicKey accepts lowercase hex up to 64 chars; shorter input is
// right-padded with zero bytes. The transit form pads, the canonical form
// strips; see Canonical.
func ParsePublicKey(s string) (PublicKey, error) {
	var k PublicKey
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(s) > PublicKeySize*2 {
		return k, fmt.Errorf("public key longer than %d hex chars", PublicKeySize*2)
	}
	if len(s)%2 != 0 {
		return k, fmt.Errorf("public key hex has odd length")
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return k, fmt.Errorf("decode public key: %w", err)
	}
	copy(k[:], raw)
	return k, nil
}

// Hex is the transit form: full-width lowercase hex with trailing zero padding.
func (k PublicKey) Hex() string {
	return hex.EncodeToString(k[:])
}

// Canonical strips trailing zero bytes, the form used for display and
// comparison against user input.
func (k PublicKey) Canonical() string {
	end := len(k)
	for end > 0 && k[end-1] == 0 {
		end--
	}
	return hex.EncodeToString(k[:end])
}

func (k PublicKey) IsZero() bool {
	return k == PublicKey{}
}

func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.Hex()), nil
}

func (k *PublicKey) UnmarshalText(data []byte) error {
	parsed, err := ParsePublicKey(string(data))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
