package dh

import (
	"golang.org/x/crypto/curve25519"
)

// X25519KeyPairFromSeed derives a keypair from a 32-byte seed. The same seed
// always yields the same pair, which is what lets both parties re-derive
// their keys from a wallet signature alone.
func X25519KeyPairFromSeed(seed [32]byte) (priv, pub [32]byte) {
	priv = seed
	curve25519.ScalarBaseMult(&pub, &priv)
	return priv, pub
}

// X25519SharedSecret performs X25519 scalar multiplication: priv * pub.
func X25519SharedSecret(priv, pub [32]byte) ([]byte, error) {
	return curve25519.X25519(priv[:], pub[:])
}
