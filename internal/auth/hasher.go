package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptySecret rejects hashing an empty secret.
var ErrEmptySecret = errors.New("auth: secret must not be empty")

// Hasher wraps one-way password hashing. bcrypt embeds a random salt per
// digest and compares in constant time.
type Hasher struct {
	cost int
}

// NewHasher constructs a Hasher with the default bcrypt cost.
func NewHasher() *Hasher {
	return &Hasher{cost: bcrypt.DefaultCost}
}

// Hash derives an opaque digest from the secret.
func (h *Hasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether secret matches digest. A malformed digest never
// raises, it simply does not verify.
func (h *Hasher) Verify(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
