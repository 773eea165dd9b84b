package secret_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/postcraft-api/internal/secret"
)

const testSecret = "a-very-long-key-encryption-secret-for-tests"

func TestNewSealerRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := secret.NewSealer("short")
	assert.ErrorIs(t, err, secret.ErrSecretTooShort)
}

func TestSealRoundTrip(t *testing.T) {
	t.Parallel()

	sealer, err := secret.NewSealer(testSecret)
	require.NoError(t, err)

	first, err := sealer.Seal("AIzaSyExampleKey1234")
	require.NoError(t, err)
	second, err := sealer.Seal("AIzaSyExampleKey1234")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "each seal uses a fresh nonce")
	assert.NotContains(t, string(first), "AIzaSyExampleKey1234")

	opened, err := sealer.Open(first)
	require.NoError(t, err)
	assert.Equal(t, "AIzaSyExampleKey1234", opened)
}

func TestOpenFailures(t *testing.T) {
	t.Parallel()

	sealer, err := secret.NewSealer(testSecret)
	require.NoError(t, err)
	other, err := secret.NewSealer(testSecret + "-rotated")
	require.NoError(t, err)

	sealed, err := sealer.Seal("AIzaSyExampleKey1234")
	require.NoError(t, err)

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0xff

	_, err = sealer.Open(tampered)
	assert.ErrorIs(t, err, secret.ErrTampered)

	_, err = other.Open(sealed)
	assert.ErrorIs(t, err, secret.ErrTampered)

	_, err = sealer.Open([]byte("tiny"))
	assert.ErrorIs(t, err, secret.ErrMalformed)
}

func TestHint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1234", secret.Hint("AIzaSyExampleKey1234"))
	assert.Equal(t, "1234", secret.Hint("  AIzaSyExampleKey1234\n"))
	assert.Equal(t, "", secret.Hint("short"))
}
