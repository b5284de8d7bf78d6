// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	solana "github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/mmynk/escrowd/internal/models"
)

var (
	// ErrNotFound is returned (wrapped) when a session or account does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned (wrapped) when a record with the same key already exists.
	ErrConflict = errors.New("already exists")
)

// Accounts is the ledger surface available inside a transaction.
type Accounts interface {
	// CreateAccount inserts a new account. Returns ErrConflict if the address is taken.
	CreateAccount(ctx context.Context, account *models.Account) error

	// GetAccount returns the account at addr or ErrNotFound.
	GetAccount(ctx context.Context, addr solana.PublicKey) (*models.Account, error)

	// SetBalance overwrites the balance of an existing account.
	SetBalance(ctx context.Context, addr solana.PublicKey, balance uint64) error
}

// Tx is the unit of work a single instruction runs against.
// Nothing written through a Tx is visible to other callers until the
// enclosing InTx returns nil.
type Tx interface {
	Accounts

	// CreateSession inserts a new session. Returns ErrConflict on a duplicate ID or address.
	CreateSession(ctx context.Context, session *models.Session) error

	// GetSession returns the session or ErrNotFound.
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)

	// SessionByCustody returns the session whose custody account is addr, or ErrNotFound.
	SessionByCustody(ctx context.Context, addr solana.PublicKey) (*models.Session, error)

	// UpdateSession persists the mutable fields of an existing session.
	UpdateSession(ctx context.Context, session *models.Session) error

	// AppendEvent chains and appends the event, filling Seq, PrevHash and Hash.
	AppendEvent(ctx context.Context, event *models.Event) error
}

// Store defines the interface for escrow storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the engine.
type Store interface {
	// InTx runs fn inside one transaction. If fn returns an error every write
	// made through tx is discarded.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)

	// ListSessionsByPayer returns a payer's sessions, newest first.
	ListSessionsByPayer(ctx context.Context, payer solana.PublicKey) ([]*models.Session, error)

	// ListExpired returns Initialized sessions whose expiry is before now.
	ListExpired(ctx context.Context, now int64, limit int) ([]*models.Session, error)

	// GetAccount retrieves a ledger account by address.
	GetAccount(ctx context.Context, addr solana.PublicKey) (*models.Account, error)

	// ListEvents returns up to limit events with Seq greater than afterSeq, in order.
	ListEvents(ctx context.Context, afterSeq int64, limit int) ([]*models.Event, error)

	// ListSessionEvents returns every event of one session, in order.
	ListSessionEvents(ctx context.Context, id uuid.UUID) ([]*models.Event, error)

	// ListUnpublishedEvents returns up to limit events the relay has not yet published.
	ListUnpublishedEvents(ctx context.Context, limit int) ([]*models.Event, error)

	// MarkPublished stamps the given events as published.
	MarkPublished(ctx context.Context, seqs []int64, at int64) error

	// Close releases any resources held by the store.
	Close() error
}
