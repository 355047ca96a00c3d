package auth

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/checkout/internal/config"
	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/security"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Configuration {
	cfg := config.GetDefaultConfig()
	cfg.Auth.Secret = "test-secret"
	cfg.Auth.Issuer = "test-issuer"
	return cfg
}

func TestValidateToken(t *testing.T) {
	cfg := testConfig()
	token, err := GenerateToken(cfg, "user-1", time.Hour)
	require.NoError(t, err)

	claims, err := NewProvider(cfg).ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Principal)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	cfg := testConfig()
	token, err := GenerateToken(cfg, "user-1", -time.Minute)
	require.NoError(t, err)

	_, err = NewProvider(cfg).ValidateToken(context.Background(), token)
	require.Error(t, err)
	assert.True(t, ierr.IsUnauthenticated(err))
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	cfg := testConfig()
	token, err := GenerateToken(cfg, "user-1", time.Hour)
	require.NoError(t, err)

	other := testConfig()
	other.Auth.Secret = "other"
	_, err = NewProvider(other).ValidateToken(context.Background(), token)
	assert.True(t, ierr.IsUnauthenticated(err))
}

func TestValidateTokenRejectsWrongIssuer(t *testing.T) {
	cfg := testConfig()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(cfg.Auth.Secret))
	require.NoError(t, err)

	_, err = NewProvider(cfg).ValidateToken(context.Background(), token)
	assert.True(t, ierr.IsUnauthenticated(err))
}

func TestValidateAPIKey(t *testing.T) {
	cfg := testConfig()
	key, err := GenerateAPIKey()
	require.NoError(t, err)

	cfg.Auth.APIKey.Keys = map[string]config.APIKeyDetails{
		security.HashKey(key):       {Principal: "operator", IsActive: true},
		security.HashKey("revoked"): {Principal: "old", IsActive: false},
	}

	principal, ok := ValidateAPIKey(cfg, key)
	assert.True(t, ok)
	assert.Equal(t, "operator", principal)

	_, ok = ValidateAPIKey(cfg, "revoked")
	assert.False(t, ok)
	_, ok = ValidateAPIKey(cfg, "unknown")
	assert.False(t, ok)
}
