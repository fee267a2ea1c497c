package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/lanchat/internal/auth"
	"github.com/vovakirdan/lanchat/internal/store"
)

// Schema creates the credentials table.
const Schema = `
CREATE TABLE IF NOT EXISTS credentials (
	username   TEXT NOT NULL PRIMARY KEY,
	password   TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore implements store.CredentialStore for SQLite.
type SQLiteStore struct {
	db     *sql.DB
	hasher auth.Hasher
	log    *zerolog.Logger
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string, hasher auth.Hasher, logger *zerolog.Logger) (*SQLiteStore, error) {
	st, err := NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(Schema)
		return err
	})
	if err != nil {
		return nil, err
	}
	if hasher != nil {
		st.hasher = hasher
	}
	if logger != nil {
		st.log = logger
	}
	return st, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply schema without migrations.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Set connection pool limits before setup
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Run setup function (e.g., apply schema)
	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	nop := zerolog.Nop()
	return &SQLiteStore{db: db, hasher: auth.PlainHasher{}, log: &nop}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Create inserts a new credential unless the username is taken.
func (s *SQLiteStore) Create(ctx context.Context, username, password string) error {
	if err := store.ValidateField(username); err != nil {
		return err
	}
	if err := store.ValidateField(password); err != nil {
		return err
	}

	stored, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		exists, err := usernameExists(ctx, tx, username)
		if err != nil {
			return err
		}
		if exists {
			return store.ErrUserExists
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO credentials (username, password) VALUES (?, ?)`,
			username, stored,
		); err != nil {
			return fmt.Errorf("insert credential: %w", err)
		}
		s.log.Info().Str("username", username).Msg("user registered")
		return nil
	})
}

// Authenticate checks username and password.
func (s *SQLiteStore) Authenticate(ctx context.Context, username, password string) error {
	var stored string
	err := s.db.QueryRowContext(ctx,
		`SELECT password FROM credentials WHERE username = ?`, username,
	).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrAuthFailed
		}
		return fmt.Errorf("query credential: %w", err)
	}
	if !s.hasher.Compare(stored, password) {
		return store.ErrAuthFailed
	}
	return nil
}

// UpdateUsername renames the credential matching (oldName, password).
func (s *SQLiteStore) UpdateUsername(ctx context.Context, oldName, password, newName string) error {
	if err := store.ValidateField(newName); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		exists, err := usernameExists(ctx, tx, newName)
		if err != nil {
			return err
		}
		if exists {
			return store.ErrUserExists
		}
		if err := s.matchTx(ctx, tx, oldName, password); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE credentials SET username = ? WHERE username = ?`, newName, oldName,
		); err != nil {
			return fmt.Errorf("rename credential: %w", err)
		}
		return nil
	})
}

// UpdatePassword replaces the password of the credential matching (username, oldPassword).
func (s *SQLiteStore) UpdatePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if err := store.ValidateField(newPassword); err != nil {
		return err
	}

	stored, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.matchTx(ctx, tx, username, oldPassword); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE credentials SET password = ? WHERE username = ?`, stored, username,
		); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		return nil
	})
}

// Delete removes the credential matching (username, password).
func (s *SQLiteStore) Delete(ctx context.Context, username, password string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.matchTx(ctx, tx, username, password); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM credentials WHERE username = ?`, username,
		); err != nil {
			return fmt.Errorf("delete credential: %w", err)
		}
		return nil
	})
}

// matchTx returns store.ErrRecordNotFound unless (username, password) matches.
func (s *SQLiteStore) matchTx(ctx context.Context, tx *sql.Tx, username, password string) error {
	var stored string
	err := tx.QueryRowContext(ctx,
		`SELECT password FROM credentials WHERE username = ?`, username,
	).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrRecordNotFound
		}
		return fmt.Errorf("query credential: %w", err)
	}
	if !s.hasher.Compare(stored, password) {
		return store.ErrRecordNotFound
	}
	return nil
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func usernameExists(ctx context.Context, tx *sql.Tx, username string) (bool, error) {
	var n int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM credentials WHERE username = ?`, username,
	).Scan(&n); err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return n > 0, nil
}
