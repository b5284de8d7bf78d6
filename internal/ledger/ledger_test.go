package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	solana "github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/escrowd/internal/authority"
	"github.com/mmynk/escrowd/internal/models"
	"github.com/mmynk/escrowd/internal/storage"
)

// memAccounts is a map-backed storage.Accounts for exercising the primitive in isolation.
type memAccounts struct {
	accounts map[solana.PublicKey]*models.Account
	writes   int
}

func newMemAccounts() *memAccounts {
	return &memAccounts{accounts: make(map[solana.PublicKey]*models.Account)}
}

func (m *memAccounts) CreateAccount(_ context.Context, a *models.Account) error {
	if _, ok := m.accounts[a.Address]; ok {
		return fmt.Errorf("account %s: %w", a.Address, storage.ErrConflict)
	}
	c := *a
	m.accounts[a.Address] = &c
	return nil
}

func (m *memAccounts) GetAccount(_ context.Context, addr solana.PublicKey) (*models.Account, error) {
	a, ok := m.accounts[addr]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", addr, storage.ErrNotFound)
	}
	c := *a
	return &c, nil
}

func (m *memAccounts) SetBalance(_ context.Context, addr solana.PublicKey, balance uint64) error {
	a, ok := m.accounts[addr]
	if !ok {
		return storage.ErrNotFound
	}
	a.Balance = balance
	m.writes++
	return nil
}

func (m *memAccounts) balance(addr solana.PublicKey) uint64 {
	return m.accounts[addr].Balance
}

var testProgram = solana.MustPublicKeyFromBase58("JCpwefFuKLrZEczt7FFcZ3oLE9nCdGNtRmTSXpQ4dLRd")

type fixture struct {
	accts   *memAccounts
	mint    solana.PublicKey
	payer   solana.PublicKey
	source  *models.Account
	custody *models.Account
	auth    authority.Settlement
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{accts: newMemAccounts(), mint: solana.NewWallet().PublicKey(), payer: solana.NewWallet().PublicKey()}

	var err error
	f.source, err = Open(ctx, f.accts, f.payer, f.mint, 1)
	require.NoError(t, err)
	_, err = Credit(ctx, f.accts, f.source.Address, 5000)
	require.NoError(t, err)

	id := uuid.New()
	session, _, err := authority.SessionAddress(testProgram, f.payer, id)
	require.NoError(t, err)
	var owner solana.PublicKey
	f.auth, owner, err = authority.DeriveSettlement(testProgram, session, id)
	require.NoError(t, err)
	f.custody, err = Open(ctx, f.accts, owner, f.mint, 1)
	require.NoError(t, err)
	return f
}

func TestTransferChecked(t *testing.T) {
	ctx := context.Background()

	t.Run("signer deposits into custody", func(t *testing.T) {
		f := newFixture(t)
		res, err := TransferChecked(ctx, f.accts, Transfer{
			Source: f.source.Address, Destination: f.custody.Address,
			Mint: f.mint, Amount: 1000, Authority: Signer(f.payer),
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(4000), res.SourceBalance)
		assert.Equal(t, uint64(1000), res.DestinationBalance)
		assert.Equal(t, uint64(1000), f.accts.balance(f.custody.Address))
	})

	t.Run("derived authority releases custody", func(t *testing.T) {
		f := newFixture(t)
		_, err := TransferChecked(ctx, f.accts, Transfer{
			Source: f.source.Address, Destination: f.custody.Address,
			Mint: f.mint, Amount: 1000, Authority: Signer(f.payer),
		})
		require.NoError(t, err)

		_, err = TransferChecked(ctx, f.accts, Transfer{
			Source: f.custody.Address, Destination: f.source.Address,
			Mint: f.mint, Amount: 1000, Authority: f.auth,
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(0), f.accts.balance(f.custody.Address))
		assert.Equal(t, uint64(5000), f.accts.balance(f.source.Address))
	})

	t.Run("payer cannot debit custody", func(t *testing.T) {
		f := newFixture(t)
		_, err := Credit(ctx, f.accts, f.custody.Address, 1000)
		require.NoError(t, err)
		writes := f.accts.writes

		_, err = TransferChecked(ctx, f.accts, Transfer{
			Source: f.custody.Address, Destination: f.source.Address,
			Mint: f.mint, Amount: 1000, Authority: Signer(f.payer),
		})
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, writes, f.accts.writes)
	})

	t.Run("authority of another session cannot debit custody", func(t *testing.T) {
		a := newFixture(t)
		b := newFixture(t)
		// Put B's custody into A's ledger so only the authority differs.
		require.NoError(t, a.accts.CreateAccount(ctx, &models.Account{
			Address: b.custody.Address, Owner: b.custody.Owner, Mint: a.mint, Balance: 1000,
		}))

		_, err := TransferChecked(ctx, a.accts, Transfer{
			Source: b.custody.Address, Destination: a.source.Address,
			Mint: a.mint, Amount: 1000, Authority: a.auth,
		})
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, uint64(1000), a.accts.balance(b.custody.Address))
	})

	t.Run("destination mint mismatch", func(t *testing.T) {
		f := newFixture(t)
		other, err := Open(ctx, f.accts, f.payer, solana.NewWallet().PublicKey(), 1)
		require.NoError(t, err)

		_, err = TransferChecked(ctx, f.accts, Transfer{
			Source: f.source.Address, Destination: other.Address,
			Mint: f.mint, Amount: 100, Authority: Signer(f.payer),
		})
		assert.ErrorIs(t, err, ErrInvalidMint)
		assert.Equal(t, uint64(5000), f.accts.balance(f.source.Address))
		assert.Equal(t, uint64(0), f.accts.balance(other.Address))
	})

	t.Run("insufficient funds", func(t *testing.T) {
		f := newFixture(t)
		_, err := TransferChecked(ctx, f.accts, Transfer{
			Source: f.source.Address, Destination: f.custody.Address,
			Mint: f.mint, Amount: 5001, Authority: Signer(f.payer),
		})
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.Equal(t, uint64(5000), f.accts.balance(f.source.Address))
		assert.Equal(t, uint64(0), f.accts.balance(f.custody.Address))
	})

	t.Run("rejects degenerate transfers", func(t *testing.T) {
		f := newFixture(t)
		_, err := TransferChecked(ctx, f.accts, Transfer{
			Source: f.source.Address, Destination: f.custody.Address, Mint: f.mint, Authority: Signer(f.payer),
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = TransferChecked(ctx, f.accts, Transfer{
			Source: f.source.Address, Destination: f.source.Address, Mint: f.mint, Amount: 1, Authority: Signer(f.payer),
		})
		assert.ErrorIs(t, err, ErrSameAccount)

		_, err = TransferChecked(ctx, f.accts, Transfer{
			Source: f.source.Address, Destination: solana.NewWallet().PublicKey(), Mint: f.mint, Amount: 1, Authority: Signer(f.payer),
		})
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})
}

func TestOpenAndCredit(t *testing.T) {
	ctx := context.Background()
	accts := newMemAccounts()
	owner, mint := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()

	acct, err := Open(ctx, accts, owner, mint, 7)
	require.NoError(t, err)
	want, err := authority.TokenAccount(owner, mint)
	require.NoError(t, err)
	assert.Equal(t, want, acct.Address)

	_, err = Open(ctx, accts, owner, mint, 8)
	assert.ErrorIs(t, err, storage.ErrConflict)

	_, err = Credit(ctx, accts, acct.Address, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	credited, err := Credit(ctx, accts, acct.Address, 250)
	require.NoError(t, err)
	assert.Equal(t, uint64(250), credited.Balance)

	_, err = Credit(ctx, accts, acct.Address, MaxBalance)
	assert.ErrorIs(t, err, ErrBalanceOverflow)
}
