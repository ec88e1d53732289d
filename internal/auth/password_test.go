package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasherRoundTrip(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	digest, err := hasher.Hash("SUPersecret1")
	require.NoError(t, err)
	require.NotEmpty(t, digest)
	assert.NotEqual(t, "SUPersecret1", digest)

	ok, err := hasher.Verify("SUPersecret1", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("WROngsecret1", digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasherEmptyPassword(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	_, err := hasher.Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestPasswordHasherDistinctDigests(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("SUPersecret1")
	require.NoError(t, err)
	second, err := hasher.Hash("SUPersecret1")
	require.NoError(t, err)

	// bcrypt salts every digest.
	assert.NotEqual(t, first, second)
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	hasher := NewPasswordHasher(-1)

	digest, err := hasher.Hash("SUPersecret1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
