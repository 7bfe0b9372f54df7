package services_test

import (
	"testing"
	"time"

	"github.com/petrodesk/petrodesk/app/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T, accessTTL, refreshTTL time.Duration) services.TokenService {
	t.Helper()
	svc, err := services.NewTokenService(
		accessTTL, refreshTTL,
		"petrodesk-test", "petrodesk-test-api",
		false, "", "", "test-secret-key-for-tests-only-0123456789",
	)
	require.NoError(t, err)
	return svc
}

func TestTokenServiceGenerateAndValidate(t *testing.T) {
	svc := newTestTokenService(t, time.Hour, 24*time.Hour)

	accessToken, refreshToken, err := svc.GenerateTokens(42)
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)

	accessClaims, err := svc.ValidateToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), accessClaims.UserID)
	assert.Equal(t, "access", accessClaims.TokenType)
	assert.NotEmpty(t, accessClaims.TokenID)

	refreshClaims, err := svc.ValidateToken(refreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), refreshClaims.UserID)
	assert.Equal(t, "refresh", refreshClaims.TokenType)
	assert.NotEqual(t, accessClaims.TokenID, refreshClaims.TokenID)
}

func TestTokenServiceRejectsGarbage(t *testing.T) {
	svc := newTestTokenService(t, time.Hour, 24*time.Hour)

	_, err := svc.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, services.ErrTokenInvalid)
}

func TestTokenServiceRejectsExpired(t *testing.T) {
	svc := newTestTokenService(t, -time.Minute, 24*time.Hour)

	accessToken, _, err := svc.GenerateTokens(7)
	require.NoError(t, err)

	_, err = svc.ValidateToken(accessToken)
	assert.ErrorIs(t, err, services.ErrTokenExpired)
}

func TestTokenServiceRevocation(t *testing.T) {
	svc := newTestTokenService(t, time.Hour, 24*time.Hour)

	accessToken, refreshToken, err := svc.GenerateTokens(7)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeToken(accessToken))
	assert.True(t, svc.IsTokenRevoked(accessToken))

	_, err = svc.ValidateToken(accessToken)
	assert.ErrorIs(t, err, services.ErrTokenRevoked)

	// Revoking one token leaves the pair's other token valid
	_, err = svc.ValidateToken(refreshToken)
	assert.NoError(t, err)
}

func TestTokenServiceRequiresSecret(t *testing.T) {
	_, err := services.NewTokenService(time.Hour, 24*time.Hour, "iss", "aud", false, "", "", "")
	assert.Error(t, err)
}
