package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key32(b byte) []byte {
	k := make([]byte, 32)
	for i := range k {
		k[i] = b
	}
	return k
}

func TestSealOpenRoundTrip(t *testing.T) {
	enc, err := NewFieldEncryptor(key32(7))
	require.NoError(t, err)

	wire, err := enc.Seal([]byte(`{"step":1}`))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(wire, Sentinel))
	assert.True(t, IsEncrypted(wire))

	plain, err := enc.Open(wire)
	require.NoError(t, err)
	assert.Equal(t, `{"step":1}`, string(plain))
}

func TestSealNondeterministicNonce(t *testing.T) {
	enc, err := NewFieldEncryptor(key32(1))
	require.NoError(t, err)
	a, err := enc.Seal([]byte("same"))
	require.NoError(t, err)
	b, err := enc.Seal([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "two seals of identical plaintext must differ by nonce")
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	enc, err := NewFieldEncryptor(key32(2))
	require.NoError(t, err)
	wire, err := enc.Seal([]byte("payload"))
	require.NoError(t, err)

	tampered := wire[:len(wire)-1] + "Z"
	_, err = enc.Open(tampered)
	assert.Error(t, err)
}

func TestOpenRejectsWrongKey(t *testing.T) {
	a, err := NewFieldEncryptor(key32(3))
	require.NoError(t, err)
	b, err := NewFieldEncryptor(key32(4))
	require.NoError(t, err)

	wire, err := a.Seal([]byte("secret"))
	require.NoError(t, err)
	_, err = b.Open(wire)
	assert.Error(t, err)
}

func TestOpenRejectsPlaintextInput(t *testing.T) {
	enc, err := NewFieldEncryptor(key32(5))
	require.NoError(t, err)
	_, err = enc.Open(`{"not":"encrypted"}`)
	assert.Error(t, err)
}

func TestNewFieldEncryptorRejectsBadKeyLength(t *testing.T) {
	_, err := NewFieldEncryptor([]byte("too-short"))
	assert.Error(t, err)
}

func TestFromPassphraseDerivesStableKey(t *testing.T) {
	a, err := NewFieldEncryptorFromPassphrase("correct horse battery staple")
	require.NoError(t, err)
	b, err := NewFieldEncryptorFromPassphrase("correct horse battery staple")
	require.NoError(t, err)

	wire, err := a.Seal([]byte("x"))
	require.NoError(t, err)
	plain, err := b.Open(wire)
	require.NoError(t, err)
	assert.Equal(t, "x", string(plain))
}
