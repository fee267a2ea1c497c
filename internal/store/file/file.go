// Package file keeps credentials in a flat text file, one
// "username password" record per line. Every call re-reads the whole file.
package file

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/lanchat/internal/auth"
	"github.com/vovakirdan/lanchat/internal/store"
)

// Store implements store.CredentialStore over a single file.
//
// All operations hold mu for their whole read-scan-rewrite sequence, so
// concurrent creates cannot both pass the existence check and concurrent
// rewrites cannot lose each other's updates. Other processes writing the same
// file are not coordinated with.
type Store struct {
	path   string
	hasher auth.Hasher
	log    *zerolog.Logger

	mu sync.Mutex
}

// New returns a store backed by path. The file is created on first write.
func New(path string, hasher auth.Hasher, logger *zerolog.Logger) *Store {
	if hasher == nil {
		hasher = auth.PlainHasher{}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Store{path: path, hasher: hasher, log: logger}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Close is a no-op; the file is only open during calls.
func (s *Store) Close() error {
	return nil
}

// Create appends a record unless the username is already present.
func (s *Store) Create(ctx context.Context, username, password string) error {
	if err := validate(username, password); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	for _, rec := range records {
		if rec.Username == username {
			return store.ErrUserExists
		}
	}

	stored, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open users file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%s %s\n", username, stored); err != nil {
		f.Close()
		return fmt.Errorf("append user: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close users file: %w", err)
	}

	s.log.Info().Str("username", username).Msg("user registered")
	return nil
}

// Authenticate scans for a record matching both fields. A missing file fails.
func (s *Store) Authenticate(ctx context.Context, username, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store.ErrAuthFailed
		}
		return err
	}
	for _, rec := range records {
		if rec.Username == username && s.hasher.Compare(rec.Password, password) {
			return nil
		}
	}
	return store.ErrAuthFailed
}

// UpdateUsername renames the record matching (oldName, password).
func (s *Store) UpdateUsername(ctx context.Context, oldName, password, newName string) error {
	if err := store.ValidateField(newName); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store.ErrRecordNotFound
		}
		return err
	}
	for _, rec := range records {
		if rec.Username == newName {
			return store.ErrUserExists
		}
	}

	return s.rewrite(records, func(rec store.Credential) (store.Credential, bool, bool) {
		if rec.Username == oldName && s.hasher.Compare(rec.Password, password) {
			rec.Username = newName
			return rec, true, true
		}
		return rec, true, false
	})
}

// UpdatePassword replaces the password of the record matching (username, oldPassword).
func (s *Store) UpdatePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if err := store.ValidateField(newPassword); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store.ErrRecordNotFound
		}
		return err
	}

	stored, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.rewrite(records, func(rec store.Credential) (store.Credential, bool, bool) {
		if rec.Username == username && s.hasher.Compare(rec.Password, oldPassword) {
			rec.Password = stored
			return rec, true, true
		}
		return rec, true, false
	})
}

// Delete drops the record matching (username, password).
func (s *Store) Delete(ctx context.Context, username, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store.ErrRecordNotFound
		}
		return err
	}

	return s.rewrite(records, func(rec store.Credential) (store.Credential, bool, bool) {
		if rec.Username == username && s.hasher.Compare(rec.Password, password) {
			return rec, false, true
		}
		return rec, true, false
	})
}

// rewriteFunc maps one record to its replacement. keep=false drops it;
// matched reports whether this record was the mutation target.
type rewriteFunc func(rec store.Credential) (out store.Credential, keep, matched bool)

// rewrite writes every record through fn into a temp file next to the users
// file and renames it over the original. Nothing is written if no record matched.
func (s *Store) rewrite(records []store.Credential, fn rewriteFunc) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".users-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	w := bufio.NewWriter(tmp)
	found := false
	for _, rec := range records {
		out, keep, matched := fn(rec)
		if matched {
			found = true
		}
		if !keep {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", out.Username, out.Password); err != nil {
			tmp.Close()
			return fmt.Errorf("write temp file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if !found {
		return store.ErrRecordNotFound
	}

	if err := os.Chmod(tmpPath, 0o600); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace users file: %w", err)
	}
	return nil
}

// load reads every record. Tokens are paired in order regardless of line
// breaks; a trailing unpaired token is ignored.
func (s *Store) load() ([]store.Credential, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parse(f)
}

func parse(r io.Reader) ([]store.Credential, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	var (
		records []store.Credential
		pending string
		half    bool
	)
	for scanner.Scan() {
		if !half {
			pending = scanner.Text()
			half = true
			continue
		}
		records = append(records, store.Credential{Username: pending, Password: scanner.Text()})
		half = false
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	return records, nil
}

func validate(username, password string) error {
	if err := store.ValidateField(username); err != nil {
		return err
	}
	return store.ValidateField(password)
}
