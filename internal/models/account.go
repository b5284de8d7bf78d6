package models

import solana "github.com/gagliardetto/solana-go"

// Account is a token holding account in the custody ledger.
type Account struct {
	// Address is the associated token address of (Owner, Mint).
	Address solana.PublicKey

	// Owner is the only authority that may debit the account.
	// For custody accounts this is a derived settlement authority.
	Owner solana.PublicKey

	// Mint is the token type the account holds.
	Mint solana.PublicKey

	// Balance is in the mint's base units.
	Balance uint64

	// CreatedAt is the Unix timestamp when the account was opened.
	CreatedAt int64
}
