package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicKey_PaddingAndCanonical(t *testing.T) {
	// Short hex is right-padded with zero bytes in the transit form and
	// stripped again in the canonical form.
	k, err := ParsePublicKey("abcd")
	require.NoError(t, err)

	assert.Equal(t, "abcd"+strings.Repeat("0", 60), k.Hex())
	assert.Equal(t, "abcd", k.Canonical())
	assert.False(t, k.IsZero())
}

func TestPublicKey_CanonicalRoundtrip(t *testing.T) {
	// Canonical strips whole trailing zero bytes only, so parsing it back
	// recovers the exact key, interior zeros included.
	for _, hex := range []string{
		"ab00cd",
		"ab",
		"00ab",
		strings.Repeat("ff", 32),
		"",
	} {
		k, err := ParsePublicKey(hex)
		require.NoError(t, err)

		back, err := ParsePublicKey(k.Canonical())
		require.NoError(t, err)
		assert.Equal(t, k, back, "input %q", hex)
	}
}

func TestPublicKey_ZeroMeansUnregistered(t *testing.T) {
	var k PublicKey
	assert.True(t, k.IsZero())
	assert.Equal(t, "", k.Canonical())

	parsed, err := ParsePublicKey("")
	require.NoError(t, err)
	assert.True(t, parsed.IsZero())
}

func TestPublicKey_Invalid(t *testing.T) {
	_, err := ParsePublicKey(strings.Repeat("ab", 33))
	require.Error(t, err)

	_, err = ParsePublicKey("abc")
	require.Error(t, err)

	_, err = ParsePublicKey("zz")
	require.Error(t, err)
}

func TestAccount_HexRoundtrip(t *testing.T) {
	a, err := ParseAccount("0xAbCd111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, "0xabcd111111111111111111111111111111111111", a.Hex())

	back, err := ParseAccount(a.Hex())
	require.NoError(t, err)
	assert.Equal(t, a, back)

	_, err = ParseAccount("0x1234")
	require.Error(t, err)
}
