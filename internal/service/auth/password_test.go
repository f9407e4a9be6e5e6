package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPBKDF2HasherHash(t *testing.T) {
	t.Parallel()

	hasher := NewPBKDF2Hasher()

	t.Run("produces base64 of salt and key", func(t *testing.T) {
		t.Parallel()
		hash, err := hasher.Hash("Password123")
		require.NoError(t, err)

		raw, err := base64.StdEncoding.DecodeString(hash)
		require.NoError(t, err)
		assert.Len(t, raw, saltLength+keyLength)
	})

	t.Run("same password hashes differently", func(t *testing.T) {
		t.Parallel()
		first, err := hasher.Hash("Password123")
		require.NoError(t, err)
		second, err := hasher.Hash("Password123")
		require.NoError(t, err)

		// Random salt per hash.
		assert.NotEqual(t, first, second)
	})
}

func TestPBKDF2HasherCompare(t *testing.T) {
	t.Parallel()

	hasher := NewPBKDF2Hasher()
	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)

	t.Run("accepts the original password", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, hasher.Compare(hash, "correct horse battery staple"))
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		t.Parallel()
		err := hasher.Compare(hash, "wrong password")
		assert.ErrorIs(t, err, ErrPasswordMismatch)
	})

	t.Run("rejects a malformed hash", func(t *testing.T) {
		t.Parallel()
		err := hasher.Compare("not base64 at all!!!", "anything")
		assert.ErrorIs(t, err, ErrPasswordMismatch)
	})

	t.Run("rejects a truncated hash", func(t *testing.T) {
		t.Parallel()
		short := base64.StdEncoding.EncodeToString([]byte("too short"))
		err := hasher.Compare(short, "anything")
		assert.ErrorIs(t, err, ErrPasswordMismatch)
	})
}
