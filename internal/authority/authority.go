// Package authority derives the keyless addresses that own escrow state.
//
// A session record lives at the program-derived address of
// ("payment_session", payer, id). The settlement authority that owns the
// session's custody account lives at the program-derived address of
// ("settlement_authority", session address, id). Neither address has a private
// key: the engine acts as the authority by presenting the seed material, and
// the ledger accepts it only if recomputing the address from those seeds yields
// the account owner.
package authority

import (
	"errors"
	"fmt"

	solana "github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

const (
	// SessionSeed labels session record derivations.
	SessionSeed = "payment_session"
	// SettlementSeed labels settlement authority derivations.
	SettlementSeed = "settlement_authority"
)

var (
	ErrZeroProgram = errors.New("program id is required")
	ErrZeroID      = errors.New("session id is required")
)

// SessionAddress finds the record address of the session (payer, id) and its bump.
func SessionAddress(programID, payer solana.PublicKey, id uuid.UUID) (solana.PublicKey, uint8, error) {
	if programID.IsZero() {
		return solana.PublicKey{}, 0, ErrZeroProgram
	}
	if id == uuid.Nil {
		return solana.PublicKey{}, 0, ErrZeroID
	}
	addr, bump, err := solana.FindProgramAddress(
		[][]byte{[]byte(SessionSeed), payer.Bytes(), id[:]},
		programID,
	)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive session address: %w", err)
	}
	return addr, bump, nil
}

// Settlement is the seed material of one session's settlement authority.
// It is not a secret; holding it only lets the holder act as the authority
// through a component that recomputes the address.
type Settlement struct {
	ProgramID solana.PublicKey
	Session   solana.PublicKey
	ID        uuid.UUID
	Bump      uint8
}

// DeriveSettlement searches for the settlement authority of a session and
// returns its seed material together with the address it resolves to.
func DeriveSettlement(programID, session solana.PublicKey, id uuid.UUID) (Settlement, solana.PublicKey, error) {
	if programID.IsZero() {
		return Settlement{}, solana.PublicKey{}, ErrZeroProgram
	}
	if id == uuid.Nil {
		return Settlement{}, solana.PublicKey{}, ErrZeroID
	}
	addr, bump, err := solana.FindProgramAddress(
		[][]byte{[]byte(SettlementSeed), session.Bytes(), id[:]},
		programID,
	)
	if err != nil {
		return Settlement{}, solana.PublicKey{}, fmt.Errorf("failed to derive settlement authority: %w", err)
	}
	s := Settlement{ProgramID: programID, Session: session, ID: id, Bump: bump}
	return s, addr, nil
}

// Seeds returns the full seed set including the bump.
func (s Settlement) Seeds() [][]byte {
	return [][]byte{[]byte(SettlementSeed), s.Session.Bytes(), s.ID[:], {s.Bump}}
}

// Resolve recomputes the authority address from the seed material.
func (s Settlement) Resolve() (solana.PublicKey, error) {
	if s.ProgramID.IsZero() {
		return solana.PublicKey{}, ErrZeroProgram
	}
	if s.ID == uuid.Nil {
		return solana.PublicKey{}, ErrZeroID
	}
	addr, err := solana.CreateProgramAddress(s.Seeds(), s.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid settlement seeds: %w", err)
	}
	return addr, nil
}

// Verify checks that the seed material reproduces want.
func (s Settlement) Verify(want solana.PublicKey) error {
	got, err := s.Resolve()
	if err != nil {
		return err
	}
	if !got.Equals(want) {
		return fmt.Errorf("settlement authority mismatch: seeds resolve to %s, want %s", got, want)
	}
	return nil
}

// TokenAccount returns the associated token account of owner for mint.
// Custody, payer source, merchant and bridge accounts all live at these addresses.
func TokenAccount(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive token account: %w", err)
	}
	return addr, nil
}
