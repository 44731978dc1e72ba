package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/flexprice/tariff/internal/config"
)

// HashAPIKey creates a SHA-256 hash of the API key
func HashAPIKey(key string) string {
	hasher := sha256.New()
	hasher.Write([]byte(key))
	return hex.EncodeToString(hasher.Sum(nil))
}

// GenerateAPIKey generates a new API key with the sk_ prefix
// The key is returned in its raw form, it should be hashed before storing in config
func GenerateAPIKey() (string, error) {
	key := make([]byte, 24)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return "sk_" + hex.EncodeToString(key), nil
}

// ValidateAPIKey validates an API key against the configured keys
// Returns the tenant ID and user ID if valid, empty strings if invalid
func ValidateAPIKey(cfg config.APIKeyConfig, key string) (string, string, bool) {
	details, exists := cfg.Keys[HashAPIKey(key)]
	if !exists || !details.IsActive {
		return "", "", false
	}
	return details.TenantID, details.UserID, true
}
