package model

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

const AccountSize = 20

type (
	// Account is the fixed-width ledger identity. It doubles as the
	// messaging identity and the registry key.
	Account [AccountSize]byte
)

func ParseAccount(s string) (Account, error) {
	var a Account
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(s) != AccountSize*2 {
		return a, fmt.Errorf("account must be %d hex chars, got %d", AccountSize*2, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("decode account: %w", err)
	}
	copy(a[:], raw)
	return a, nil
}

func (a Account) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Account) String() string {
	return a.Hex()
}

func (a Account) IsZero() bool {
	return a == Account{}
}

// Cmp orders accounts bytewise, matching the canonicalization used for
// conversation ids.
func (a Account) Cmp(b Account) int {
	return bytes.Compare(a[:], b[:])
}

func (a Account) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

func (a *Account) UnmarshalText(data []byte) error {
	parsed, err := ParseAccount(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
