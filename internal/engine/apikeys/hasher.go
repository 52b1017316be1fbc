package apikeys

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

// ErrPepperMissing means the server has no pepper configured. It is a
// deployment error, surfaced to callers as a plain unauthorized.
var ErrPepperMissing = errors.New("api key pepper is not configured")

type Hasher struct {
	pepper string
}

func NewHasher(pepper string) *Hasher {
	return &Hasher{pepper: pepper}
}

// HashSecret returns the hex SHA-256 digest of pepper + "." + secret.
func (h *Hasher) HashSecret(secret string) (string, error) {
	if h.pepper == "" {
		return "", ErrPepperMissing
	}

	sum := sha256.Sum256([]byte(h.pepper + "." + secret))
	return hex.EncodeToString(sum[:]), nil
}

// DigestsEqual compares two encoded digests without short-circuiting, so a
// mismatch position is not observable through timing.
func DigestsEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
