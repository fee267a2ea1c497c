package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// bcryptCost is the default cost for bcrypt hashing.
	bcryptCost = 10

	HashingPlain  = "plain"
	HashingBcrypt = "bcrypt"
)

// Hasher decides how a password is stored and how a stored value is checked.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(stored, password string) bool
}

// NewHasher returns the hasher for a password_hashing config value.
func NewHasher(name string) (Hasher, error) {
	switch name {
	case "", HashingPlain:
		return PlainHasher{}, nil
	case HashingBcrypt:
		return BcryptHasher{Cost: bcryptCost}, nil
	default:
		return nil, fmt.Errorf("unknown password hashing %q", name)
	}
}

// PlainHasher stores passwords verbatim, matching legacy users files.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) {
	return password, nil
}

func (PlainHasher) Compare(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// BcryptHasher stores bcrypt hashes. Hashes contain no whitespace, so they fit
// the users file line format unchanged.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (BcryptHasher) Compare(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
