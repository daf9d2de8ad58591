// Package credential derives and compares password hashes.
//
// Hashes are PBKDF2-HMAC-SHA1 with a fixed iteration count and key length,
// base64 encoded. Every stored hash depends on those two constants: changing
// either one invalidates all existing credentials.
package credential

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/proxygate/accounts/internal/core/domain"
)

const (
	// Iterations is the PBKDF2 round count.
	Iterations = 10000
	// KeyLength is the derived key size in bytes.
	KeyLength = 64
	// SaltBytes is the amount of entropy drawn for each new salt.
	SaltBytes = 16
)

// Hash derives the stored form of plaintext under salt.
//
// An empty salt returns plaintext unchanged. Accounts saved before a salt was
// ever generated compare against the raw value, so the pass-through is kept.
// A salt with an empty plaintext is rejected with domain.ErrInvalidInput.
func Hash(plaintext, salt string) (string, error) {
	if salt == "" {
		return plaintext, nil
	}
	if plaintext == "" {
		return "", fmt.Errorf("hash: empty password with salt: %w", domain.ErrInvalidInput)
	}

	key := pbkdf2.Key([]byte(plaintext), []byte(salt), Iterations, KeyLength, sha1.New)
	return base64.StdEncoding.EncodeToString(key), nil
}

// Equal compares two encoded hashes in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
