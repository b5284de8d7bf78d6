package escrow

import (
	"context"
	"errors"
	"fmt"

	solana "github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/mmynk/escrowd/internal/ledger"
	"github.com/mmynk/escrowd/internal/models"
	"github.com/mmynk/escrowd/internal/storage"
)

// Get returns one session.
func (e *Engine) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	s, err := e.store.GetSession(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fail("get", fmt.Errorf("%w: %s", ErrSessionNotFound, id))
	}
	if err != nil {
		return nil, fail("get", err)
	}
	return s, nil
}

// Events returns the transition log of one session, oldest first.
func (e *Engine) Events(ctx context.Context, id uuid.UUID) ([]*models.Event, error) {
	if _, err := e.Get(ctx, id); err != nil {
		return nil, err
	}
	evs, err := e.store.ListSessionEvents(ctx, id)
	if err != nil {
		return nil, fail("events", err)
	}
	return evs, nil
}

// ListByPayer returns every session of payer, newest first.
func (e *Engine) ListByPayer(ctx context.Context, payer solana.PublicKey) ([]*models.Session, error) {
	sessions, err := e.store.ListSessionsByPayer(ctx, payer)
	if err != nil {
		return nil, fail("list_by_payer", err)
	}
	return sessions, nil
}

// ListExpired returns up to limit Initialized sessions whose expiry has passed.
// Nothing acts on them here; they are reported for external monitoring.
func (e *Engine) ListExpired(ctx context.Context, limit int) ([]*models.Session, error) {
	if limit <= 0 {
		limit = 100
	}
	sessions, err := e.store.ListExpired(ctx, e.now().Unix(), limit)
	if err != nil {
		return nil, fail("list_expired", err)
	}
	return sessions, nil
}

// OpenAccount creates owner's token account for mint. owner must be a wallet
// key: off-curve owners such as settlement authorities get their accounts from
// Init only.
func (e *Engine) OpenAccount(ctx context.Context, owner, mint solana.PublicKey) (*models.Account, error) {
	if owner.IsZero() || mint.IsZero() {
		return nil, fail("open_account", fmt.Errorf("%w: owner and mint are required", ErrInvalidArgument))
	}
	if !owner.IsOnCurve() {
		return nil, fail("open_account", fmt.Errorf("owner %s: %w", owner, ErrDerivedOwner))
	}
	var account *models.Account
	err := e.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		account, err = ledger.Open(ctx, tx, owner, mint, e.now().Unix())
		return err
	})
	if errors.Is(err, storage.ErrConflict) {
		return nil, fail("open_account", fmt.Errorf("%w: %s", ErrAccountExists, owner))
	}
	if err != nil {
		return nil, fail("open_account", err)
	}
	e.log.Info("account opened", "address", account.Address, "owner", owner, "mint", mint)
	return account, nil
}

// Credit mints amount into the account at addr. Session custody accounts are
// refused.
func (e *Engine) Credit(ctx context.Context, addr solana.PublicKey, amount uint64) (*models.Account, error) {
	var account *models.Account
	err := e.store.InTx(ctx, func(tx storage.Tx) error {
		s, err := tx.SessionByCustody(ctx, addr)
		if err == nil {
			return fmt.Errorf("%s holds custody of session %s: %w", addr, s.ID, ErrCustodyAccount)
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		account, err = ledger.Credit(ctx, tx, addr, amount)
		return err
	})
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fail("credit", fmt.Errorf("%w: %s", ErrAccountNotFound, addr))
	}
	if err != nil {
		return nil, fail("credit", err)
	}
	e.log.Info("account credited", "address", addr, "amount", amount, "balance", account.Balance)
	return account, nil
}

// GetAccount returns the account at addr.
func (e *Engine) GetAccount(ctx context.Context, addr solana.PublicKey) (*models.Account, error) {
	account, err := e.store.GetAccount(ctx, addr)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fail("get_account", fmt.Errorf("%w: %s", ErrAccountNotFound, addr))
	}
	if err != nil {
		return nil, fail("get_account", err)
	}
	return account, nil
}
