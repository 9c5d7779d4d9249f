package encryption

import (
	"crypto/rand"
	"testing"

	"chain_chat/internal/model"
	apperrors "chain_chat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	key := newKey(t)

	for _, plaintext := range []string{"hello", "", "héllo wörld ✨", string(make([]byte, 4096))} {
		payload, err := Encrypt(plaintext, key)
		require.NoError(t, err)
		require.Equal(t, model.SchemeGCM, payload.Scheme())
		require.Len(t, payload.IV, NonceSize)

		got, err := Decrypt(payload, key)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	key := newKey(t)

	p1, err := Encrypt("same plaintext", key)
	require.NoError(t, err)
	p2, err := Encrypt("same plaintext", key)
	require.NoError(t, err)

	assert.NotEqual(t, p1.IV, p2.IV)
	assert.NotEqual(t, p1.Data, p2.Data)
}

func TestDecrypt_WrongKey(t *testing.T) {
	payload, err := Encrypt("secret", newKey(t))
	require.NoError(t, err)

	_, err = Decrypt(payload, newKey(t))
	require.ErrorIs(t, err, apperrors.ErrDecryptionFailed)
}

func TestDecrypt_Tampered(t *testing.T) {
	key := newKey(t)
	payload, err := Encrypt("secret", key)
	require.NoError(t, err)

	payload.Data[0] ^= 0x01
	_, err = Decrypt(payload, key)
	require.ErrorIs(t, err, apperrors.ErrDecryptionFailed)
}

func TestDecrypt_UniformErrorSurface(t *testing.T) {
	key := newKey(t)
	good, err := Encrypt("secret", key)
	require.NoError(t, err)

	// Wrong key, tampered ciphertext, truncated payload and a malformed
	// scheme must all look identical to the caller.
	tampered := &model.EncryptedPayload{IV: good.IV, Data: append([]byte(nil), good.Data...)}
	tampered.Data[len(tampered.Data)-1] ^= 0xff

	cases := map[string]*model.EncryptedPayload{
		"truncated": {IV: good.IV, Data: good.Data[:4]},
		"tampered":  tampered,
		"empty":     {},
		"bad nonce": {IV: good.IV[:4], Data: good.Data},
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decrypt(payload, key)
			require.ErrorIs(t, err, apperrors.ErrDecryptionFailed)
		})
	}

	_, err = Decrypt(good, key[:16])
	require.ErrorIs(t, err, apperrors.ErrDecryptionFailed)
}

func TestDecrypt_LegacyPayload(t *testing.T) {
	key := newKey(t)

	// A legacy payload carries nonce||ciphertext per party; build one with
	// the current primitives and decode it through the legacy path.
	sealed, err := Encrypt("from the old format", key)
	require.NoError(t, err)
	blob := append(append([]byte(nil), sealed.IV...), sealed.Data...)

	legacy := &model.EncryptedPayload{LegacyRecipient: blob, LegacySender: []byte("junk")}
	require.Equal(t, model.SchemeLegacy, legacy.Scheme())

	got, err := Decrypt(legacy, key)
	require.NoError(t, err)
	assert.Equal(t, "from the old format", got)

	// Same payload with a key that opens neither ciphertext.
	_, err = Decrypt(legacy, newKey(t))
	require.ErrorIs(t, err, apperrors.ErrDecryptionFailed)
}
