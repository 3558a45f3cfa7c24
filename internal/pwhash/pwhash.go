// Package pwhash wraps bcrypt for password storage. Plaintext goes in,
// a salted one-way blob comes out, nothing ever goes the other way.
package pwhash

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type (
	// Hasher hashes and verifies passwords with a fixed cost.
	Hasher struct {
		Cost int
	}
)

// DefaultCost keeps logins tolerable while making offline guessing
// expensive.
const DefaultCost = 10

func New() Hasher {
	return Hasher{Cost: DefaultCost}
}

// Hash produces a salted digest of plaintext, the salt is random per
// call and embedded in the output.
func (h Hasher) Hash(plaintext string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = DefaultCost
	}
	blob, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("unable to hash password, cause %w", err)
	}
	return string(blob), nil
}

// Verify reports whether plaintext matches the stored blob. A malformed
// blob is just a failed verification, never a crash.
func (h Hasher) Verify(plaintext, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plaintext)) == nil
}
