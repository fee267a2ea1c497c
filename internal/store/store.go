package store

import (
	"context"
	"errors"
	"strings"
	"unicode"
)

var (
	// ErrUserExists is returned when the username is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrAuthFailed is returned when no record matches both username and password.
	ErrAuthFailed = errors.New("authentication failed")
	// ErrRecordNotFound is returned when a mutation matched no record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidCredential is returned for empty fields or fields containing whitespace.
	ErrInvalidCredential = errors.New("invalid credential")
)

// Credential is one persisted username/password record. Password holds the
// stored form, which depends on the configured hasher.
type Credential struct {
	Username string
	Password string
}

// CredentialStore persists accounts. A nil error means success; ErrUserExists
// and ErrAuthFailed/ErrRecordNotFound are the expected failures; anything
// else is an I/O failure.
type CredentialStore interface {
	// Create adds a new account.
	Create(ctx context.Context, username, password string) error

	// Authenticate checks that username and password match a record.
	Authenticate(ctx context.Context, username, password string) error

	// UpdateUsername renames the record matching (oldName, password).
	UpdateUsername(ctx context.Context, oldName, password, newName string) error

	// UpdatePassword replaces the password of the record matching (username, oldPassword).
	UpdatePassword(ctx context.Context, username, oldPassword, newPassword string) error

	// Delete removes the record matching (username, password).
	Delete(ctx context.Context, username, password string) error

	// Close releases underlying resources.
	Close() error
}

// ValidateField rejects values the line-oriented format cannot hold.
func ValidateField(s string) error {
	if s == "" || strings.ContainsFunc(s, isSpace) {
		return ErrInvalidCredential
	}
	return nil
}

// isSpace matches the separators bufio.ScanWords splits on, so a stored
// field always reads back as exactly one token.
func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}
