package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/vovakirdan/lanchat/internal/auth"
	"github.com/vovakirdan/lanchat/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewWithSetup(":memory:", func(db *sql.DB) error {
		_, err := db.Exec(Schema)
		return err
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateAndAuthenticate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, "bob", "pw1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, "bob", "pw2"); !errors.Is(err, store.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if err := s.Authenticate(ctx, "bob", "pw1"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if err := s.Authenticate(ctx, "bob", "pw2"); !errors.Is(err, store.ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
	if err := s.Authenticate(ctx, "nobody", "pw1"); !errors.Is(err, store.ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed for unknown user, got %v", err)
	}
}

func TestMutations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, u := range []string{"alice", "bob"} {
		if err := s.Create(ctx, u, "pw"); err != nil {
			t.Fatalf("create %s: %v", u, err)
		}
	}

	if err := s.UpdateUsername(ctx, "alice", "pw", "bob"); !errors.Is(err, store.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if err := s.UpdateUsername(ctx, "alice", "bad", "ally"); !errors.Is(err, store.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if err := s.UpdateUsername(ctx, "alice", "pw", "ally"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := s.Authenticate(ctx, "alice", "pw"); !errors.Is(err, store.ErrAuthFailed) {
		t.Fatalf("old name still authenticates: %v", err)
	}

	if err := s.UpdatePassword(ctx, "ally", "pw", "fresh"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	if err := s.Authenticate(ctx, "ally", "fresh"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}

	if err := s.Delete(ctx, "ally", "pw"); !errors.Is(err, store.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "ally", "fresh"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Create(ctx, "ally", "again"); err != nil {
		t.Fatalf("recreate after delete: %v", err)
	}
}

func TestNewAppliesSchemaWithBcrypt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lanchat.db")
	s, err := New(path, auth.BcryptHasher{Cost: bcrypt.MinCost}, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Create(ctx, "carol", "secret"); err != nil {
		t.Fatalf("create: %v", err)
	}

	var stored string
	if err := s.db.QueryRowContext(ctx, `SELECT password FROM credentials WHERE username = 'carol'`).Scan(&stored); err != nil {
		t.Fatalf("query: %v", err)
	}
	if stored == "secret" {
		t.Fatal("password stored in plaintext")
	}
	if err := s.Authenticate(ctx, "carol", "secret"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
}
