package credential

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/proxygate/accounts/internal/core/domain"
)

// RandomSource yields cryptographically secure random bytes. Implementations
// must be safe for concurrent use.
type RandomSource interface {
	RandomBytes(n int) ([]byte, error)
}

// SystemRandom reads from the operating system CSPRNG.
type SystemRandom struct{}

// RandomBytes returns n bytes from crypto/rand.
func (SystemRandom) RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// NewSalt draws SaltBytes from src and returns them base64 encoded.
func NewSalt(src RandomSource) (string, error) {
	b, err := src.RandomBytes(SaltBytes)
	if err != nil {
		return "", fmt.Errorf("new salt: %w: %v", domain.ErrRandomSource, err)
	}
	if len(b) != SaltBytes {
		return "", fmt.Errorf("new salt: got %d bytes, want %d: %w", len(b), SaltBytes, domain.ErrRandomSource)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
