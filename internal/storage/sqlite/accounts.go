package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	solana "github.com/gagliardetto/solana-go"

	"github.com/mmynk/escrowd/internal/models"
	"github.com/mmynk/escrowd/internal/storage"
)

// GetAccount retrieves a ledger account by address.
func (s *SQLiteStore) GetAccount(ctx context.Context, addr solana.PublicKey) (*models.Account, error) {
	return getAccount(ctx, s.db, addr)
}

func createAccount(ctx context.Context, q queryer, account *models.Account) error {
	if account.Balance > math.MaxInt64 {
		return fmt.Errorf("balance %d exceeds storage range", account.Balance)
	}

	// Check if account exists
	var exists int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM accounts WHERE address = ?", account.Address.String()).Scan(&exists)
	if err == nil {
		return fmt.Errorf("account %s: %w", account.Address, storage.ErrConflict)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check account existence: %w", err)
	}

	_, err = q.ExecContext(ctx,
		"INSERT INTO accounts (address, owner, mint, balance, created_at) VALUES (?, ?, ?, ?, ?)",
		account.Address.String(), account.Owner.String(), account.Mint.String(),
		int64(account.Balance), account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func getAccount(ctx context.Context, q queryer, addr solana.PublicKey) (*models.Account, error) {
	var (
		address, owner, mint string
		balance              int64
		account              models.Account
	)
	err := q.QueryRowContext(ctx,
		"SELECT address, owner, mint, balance, created_at FROM accounts WHERE address = ?",
		addr.String(),
	).Scan(&address, &owner, &mint, &balance, &account.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("account %s: %w", addr, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if account.Address, err = parseKey(address); err != nil {
		return nil, err
	}
	if account.Owner, err = parseKey(owner); err != nil {
		return nil, err
	}
	if account.Mint, err = parseKey(mint); err != nil {
		return nil, err
	}
	account.Balance = uint64(balance)

	return &account, nil
}

func setBalance(ctx context.Context, q queryer, addr solana.PublicKey, balance uint64) error {
	if balance > math.MaxInt64 {
		return fmt.Errorf("balance %d exceeds storage range", balance)
	}

	res, err := q.ExecContext(ctx,
		"UPDATE accounts SET balance = ? WHERE address = ?",
		int64(balance), addr.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("account %s: %w", addr, storage.ErrNotFound)
	}
	return nil
}
