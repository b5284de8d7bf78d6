// Package ledger implements the custody ledger's value-movement primitives.
//
// TransferChecked is the only operation that debits an account. It validates
// mints, authority and balance before writing anything, so an error always
// leaves both balances untouched.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"

	solana "github.com/gagliardetto/solana-go"

	"github.com/mmynk/escrowd/internal/authority"
	"github.com/mmynk/escrowd/internal/models"
	"github.com/mmynk/escrowd/internal/storage"
)

// MaxBalance is the largest balance an account may hold.
const MaxBalance = math.MaxInt64

var (
	ErrInvalidMint       = errors.New("token mint does not match the session's token mint")
	ErrInsufficientFunds = errors.New("insufficient funds in source account")
	ErrUnauthorized      = errors.New("authority does not own the source account")
	ErrInvalidAmount     = errors.New("transfer amount must be positive")
	ErrSameAccount       = errors.New("source and destination are the same account")
	ErrBalanceOverflow   = errors.New("destination balance would overflow")
)

// Authority proves the right to debit an account by resolving to its owner.
type Authority interface {
	Resolve() (solana.PublicKey, error)
}

// Signer is an authority whose key possession was proven by the caller
// (for example by a verified token naming the key).
type Signer solana.PublicKey

// Resolve returns the signer's key.
func (s Signer) Resolve() (solana.PublicKey, error) {
	return solana.PublicKey(s), nil
}

// Transfer describes one checked movement of tokens.
type Transfer struct {
	Source      solana.PublicKey
	Destination solana.PublicKey
	Mint        solana.PublicKey
	Amount      uint64
	Authority   Authority
}

// Result reports balances after a successful transfer.
type Result struct {
	SourceBalance      uint64
	DestinationBalance uint64
}

// TransferChecked moves exactly t.Amount of t.Mint from t.Source to t.Destination.
func TransferChecked(ctx context.Context, accounts storage.Accounts, t Transfer) (Result, error) {
	if t.Amount == 0 {
		return Result{}, ErrInvalidAmount
	}
	if t.Source.Equals(t.Destination) {
		return Result{}, ErrSameAccount
	}
	if t.Authority == nil {
		return Result{}, ErrUnauthorized
	}

	src, err := accounts.GetAccount(ctx, t.Source)
	if err != nil {
		return Result{}, fmt.Errorf("source: %w", err)
	}
	dst, err := accounts.GetAccount(ctx, t.Destination)
	if err != nil {
		return Result{}, fmt.Errorf("destination: %w", err)
	}

	if !src.Mint.Equals(t.Mint) {
		return Result{}, fmt.Errorf("source holds %s, want %s: %w", src.Mint, t.Mint, ErrInvalidMint)
	}
	if !dst.Mint.Equals(t.Mint) {
		return Result{}, fmt.Errorf("destination holds %s, want %s: %w", dst.Mint, t.Mint, ErrInvalidMint)
	}

	signer, err := t.Authority.Resolve()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !signer.Equals(src.Owner) {
		return Result{}, fmt.Errorf("%s cannot debit account owned by %s: %w", signer, src.Owner, ErrUnauthorized)
	}

	if src.Balance < t.Amount {
		return Result{}, fmt.Errorf("balance %d, need %d: %w", src.Balance, t.Amount, ErrInsufficientFunds)
	}
	if t.Amount > MaxBalance || dst.Balance > MaxBalance-t.Amount {
		return Result{}, ErrBalanceOverflow
	}

	res := Result{
		SourceBalance:      src.Balance - t.Amount,
		DestinationBalance: dst.Balance + t.Amount,
	}
	if err := accounts.SetBalance(ctx, src.Address, res.SourceBalance); err != nil {
		return Result{}, err
	}
	if err := accounts.SetBalance(ctx, dst.Address, res.DestinationBalance); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Open creates an empty token account for owner at its associated address.
func Open(ctx context.Context, accounts storage.Accounts, owner, mint solana.PublicKey, now int64) (*models.Account, error) {
	addr, err := authority.TokenAccount(owner, mint)
	if err != nil {
		return nil, err
	}
	account := &models.Account{
		Address:   addr,
		Owner:     owner,
		Mint:      mint,
		CreatedAt: now,
	}
	if err := accounts.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Credit mints amount new tokens into an account.
func Credit(ctx context.Context, accounts storage.Accounts, addr solana.PublicKey, amount uint64) (*models.Account, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	account, err := accounts.GetAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	if amount > MaxBalance || account.Balance > MaxBalance-amount {
		return nil, ErrBalanceOverflow
	}
	account.Balance += amount
	if err := accounts.SetBalance(ctx, addr, account.Balance); err != nil {
		return nil, err
	}
	return account, nil
}
