package model

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const HashSize = 32

type (
	// Hash is a 32-byte digest. Message ids and conversation ids are both
	// hashes of their defining fields.
	Hash [HashSize]byte
)

func ParseHash(s string) (Hash, error) {
	var h Hash
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(s) != HashSize*2 {
		return h, fmt.Errorf("hash must be %d hex chars, got %d", HashSize*2, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("decode hash: %w", err)
	}
	copy(h[:], raw)
	return h, nil
}

func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) String() string {
	return h.Hex()
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

func (h *Hash) UnmarshalText(data []byte) error {
	parsed, err := ParseHash(string(data))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
