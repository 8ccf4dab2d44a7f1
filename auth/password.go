package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is how much of a password bcrypt looks at.
const maxPasswordBytes = 72

// PasswordVerifier hashes and verifies passwords with bcrypt. The salt is
// random per call and embedded in the hash, and comparison is constant time.
type PasswordVerifier struct {
	cost int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewPasswordVerifier returns a verifier using the given bcrypt cost.
func NewPasswordVerifier(cost int) *PasswordVerifier {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordVerifier{cost: cost}
}

// Hash returns a salted bcrypt hash of plaintext. Only the first 72 bytes of
// plaintext count; Verify applies the same cut.
func (p *PasswordVerifier) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(bcryptInput(plaintext), p.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hash. Malformed or empty hashes
// simply do not match.
func (p *PasswordVerifier) Verify(plaintext, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(plaintext)) == nil
}

// BurnComparison runs one full-cost comparison against a throwaway hash. Login
// calls it for unknown emails so both failure paths take the same time.
func (p *PasswordVerifier) BurnComparison(plaintext string) {
	p.dummyOnce.Do(func() {
		p.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), p.cost)
	})
	_ = bcrypt.CompareHashAndPassword(p.dummyHash, bcryptInput(plaintext))
}

// bcryptInput truncates plaintext to maxPasswordBytes. GenerateFromPassword
// rejects longer input instead of ignoring the tail.
func bcryptInput(plaintext string) []byte {
	b := []byte(plaintext)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
