package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	digest, err := HashPassword("hunter2secret")
	require.NoError(t, err)
	require.NotEmpty(t, digest)
	assert.NotEqual(t, "hunter2secret", digest)

	ok, err := VerifyPassword(digest, "hunter2secret")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHashPasswordSaltedPerCall(t *testing.T) {
	d1, err := HashPassword("same-input")
	require.NoError(t, err)
	d2, err := HashPassword("same-input")
	require.NoError(t, err)

	// per-call salt: same plaintext, different digests, both verify
	assert.NotEqual(t, d1, d2)

	for _, d := range []string{d1, d2} {
		ok, err := VerifyPassword(d, "same-input")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestVerifyPasswordWrongPassword(t *testing.T) {
	digest, err := HashPassword("correct horse")
	require.NoError(t, err)

	ok, err := VerifyPassword(digest, "battery staple")
	require.NoError(t, err, "wrong password is not an error")
	assert.False(t, ok)
}

func TestVerifyPasswordMalformedDigest(t *testing.T) {
	ok, err := VerifyPassword("not-a-bcrypt-digest", "anything")
	assert.False(t, ok)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedHash)
}
