// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	solana "github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/escrowd/internal/models"
	"github.com/mmynk/escrowd/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// Ensure txStore implements storage.Tx
var _ storage.Tx = (*txStore)(nil)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// SQLiteStore implements storage.Store using SQLite.
//
// The pool is limited to one connection, so SQLite's single writer is also the
// single reader: a transaction sees no interleaved writes, and nothing outside
// it observes its writes before commit.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InTx runs fn inside a database transaction and commits only if fn succeeds.
func (s *SQLiteStore) InTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&txStore{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// txStore exposes the transactional subset of the store on a *sql.Tx.
type txStore struct {
	q queryer
}

func (t *txStore) CreateSession(ctx context.Context, session *models.Session) error {
	return createSession(ctx, t.q, session)
}

func (t *txStore) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return getSession(ctx, t.q, id)
}

func (t *txStore) SessionByCustody(ctx context.Context, addr solana.PublicKey) (*models.Session, error) {
	return sessionByCustody(ctx, t.q, addr)
}

func (t *txStore) UpdateSession(ctx context.Context, session *models.Session) error {
	return updateSession(ctx, t.q, session)
}

func (t *txStore) CreateAccount(ctx context.Context, account *models.Account) error {
	return createAccount(ctx, t.q, account)
}

func (t *txStore) GetAccount(ctx context.Context, addr solana.PublicKey) (*models.Account, error) {
	return getAccount(ctx, t.q, addr)
}

func (t *txStore) SetBalance(ctx context.Context, addr solana.PublicKey, balance uint64) error {
	return setBalance(ctx, t.q, addr, balance)
}

func (t *txStore) AppendEvent(ctx context.Context, event *models.Event) error {
	return appendEvent(ctx, t.q, event)
}

func parseKey(s string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("corrupt key %q: %w", s, err)
	}
	return key, nil
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	i := v.Int64
	return &i
}
