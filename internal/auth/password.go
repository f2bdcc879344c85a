package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// Credentials hashes and verifies passwords with bcrypt.
type Credentials struct {
	cost int
}

// NewCredentials returns a bcrypt-backed credential service. Out of range
// costs fall back to bcrypt.DefaultCost.
func NewCredentials(cost int) *Credentials {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Credentials{cost: cost}
}

// Hash returns a salted one-way hash of plaintext.
func (c *Credentials) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), c.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plaintext matches hash.
func (c *Credentials) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
