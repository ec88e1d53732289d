package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService("test-secret", time.Hour, 24*time.Hour)
	require.NoError(t, err)
	return svc
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("   ", time.Hour, 24*time.Hour)
	assert.Error(t, err)
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestTokenService(t)
	now := time.Now()

	pair, err := svc.Issue(42, now)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	userID, err := svc.ValidateAccess(pair.Access, now)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)

	userID, err = svc.ValidateRefresh(pair.Refresh, now)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestValidateRejectsWrongType(t *testing.T) {
	svc := newTestTokenService(t)
	now := time.Now()

	pair, err := svc.Issue(7, now)
	require.NoError(t, err)

	_, err = svc.ValidateAccess(pair.Refresh, now)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.ValidateRefresh(pair.Access, now)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := newTestTokenService(t)
	now := time.Now()

	pair, err := svc.Issue(7, now)
	require.NoError(t, err)

	_, err = svc.ValidateAccess(pair.Access, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrTokenExpired)

	// The refresh token has a longer lifetime and is still good.
	_, err = svc.ValidateRefresh(pair.Refresh, now.Add(2*time.Hour))
	assert.NoError(t, err)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	svc := newTestTokenService(t)
	other, err := NewTokenService("other-secret", time.Hour, 24*time.Hour)
	require.NoError(t, err)
	now := time.Now()

	pair, err := other.Issue(7, now)
	require.NoError(t, err)

	_, err = svc.ValidateAccess(pair.Access, now)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateForgedExpiredTokenIsInvalidNotExpired(t *testing.T) {
	svc := newTestTokenService(t)
	other, err := NewTokenService("other-secret", time.Hour, 24*time.Hour)
	require.NoError(t, err)
	now := time.Now()

	pair, err := other.Issue(7, now)
	require.NoError(t, err)

	// Wrong signature wins over expiry.
	_, err = svc.ValidateAccess(pair.Access, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := newTestTokenService(t)

	_, err := svc.ValidateAccess("not-a-token", time.Now())
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.ValidateAccess("", time.Now())
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
