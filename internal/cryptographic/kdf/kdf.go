package kdf

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// HKDF fills buffer with key material expanded from secret.
// Uses HKDF with SHA-256.
func HKDF(secret, salt, info, buffer []byte) (int, error) {
	h := hkdf.New(sha256.New, secret, salt, info)
	return io.ReadFull(h, buffer)
}

// Derive32 expands secret into a fixed 32-byte key, the width used for both
// X25519 seeds and AES-256 keys.
func Derive32(secret []byte, info string) ([32]byte, error) {
	var out [32]byte
	_, err := HKDF(secret, nil, []byte(info), out[:])
	return out, err
}
