package auth

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/flexprice/checkout/internal/config"
	"github.com/flexprice/checkout/internal/security"
)

// GenerateAPIKey generates a new API key
// The key is returned in its raw form, it should be hashed before storing in config
func GenerateAPIKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// ValidateAPIKey returns the principal of an active configured key
func ValidateAPIKey(cfg *config.Configuration, key string) (string, bool) {
	details, exists := cfg.Auth.APIKey.Keys[security.HashKey(key)]
	if !exists || !details.IsActive || details.Principal == "" {
		return "", false
	}
	return details.Principal, true
}
