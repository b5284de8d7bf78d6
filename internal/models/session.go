package models

import (
	"fmt"

	solana "github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// MaxFieldLen is the upper bound, in bytes, of every free-form string on a session.
const MaxFieldLen = 50

// Status is the lifecycle state of a payment session.
// The numeric values are the persisted encoding and must not be reordered.
type Status uint8

const (
	StatusInitialized Status = iota
	StatusFunded
	StatusRefunded
	StatusSettled
	StatusPendingFiat
)

var statusNames = map[Status]string{
	StatusInitialized: "initialized",
	StatusFunded:      "funded",
	StatusRefunded:    "refunded",
	StatusSettled:     "settled",
	StatusPendingFiat: "pending_fiat",
}

// transitions lists the only edges a session may take.
var transitions = map[Status][]Status{
	StatusInitialized: {StatusFunded},
	StatusFunded:      {StatusRefunded, StatusSettled, StatusPendingFiat},
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	return s == StatusRefunded || s == StatusSettled || s == StatusPendingFiat
}

// CanTransition reports whether moving from s to next is an edge of the lifecycle.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseStatus converts a status name back to its value.
func ParseStatus(name string) (Status, error) {
	for status, n := range statusNames {
		if n == name {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown session status %q", name)
}

// Session is the durable state of one escrow payment.
//
// Amount, TokenType, Payer and ID are fixed at creation. Status only moves along
// the edges accepted by Status.CanTransition.
type Session struct {
	// ID is the caller-assigned 128-bit identifier.
	ID uuid.UUID

	// Address is the derived record address for (payer, ID); SessionBump is its salt.
	Address     solana.PublicKey
	SessionBump uint8

	// Payer funds the session and receives refunds.
	Payer solana.PublicKey

	// MerchantID identifies the merchant. For direct settlement it must be the
	// base58 key that owns the destination account.
	MerchantID string

	// ReferenceID, FiatCurrency and MerchantBank are routing data for the
	// off-chain payout pipeline. They are opaque to the engine.
	ReferenceID  string
	FiatCurrency string
	MerchantBank string

	// TokenType is the mint accepted by this session.
	TokenType solana.PublicKey

	// Amount is the exact quantity moved by every transfer, in base units.
	Amount uint64

	// CustodyAddress holds the escrowed funds; PayerSourceAddress funds it.
	CustodyAddress     solana.PublicKey
	PayerSourceAddress solana.PublicKey

	// SettlementAuthority owns the custody account. SettlementAuthorityProof is
	// the bump that reproduces it from the session address and ID.
	SettlementAuthority      solana.PublicKey
	SettlementAuthorityProof uint8

	Status Status

	// Unix timestamps. FundedAt and SettledAt are nil until the matching transition.
	CreatedAt int64
	ExpiryAt  int64
	FundedAt  *int64
	SettledAt *int64

	// ExternalPayoutID is empty until an off-chain payout has been recorded.
	ExternalPayoutID string
}

// Clone returns a deep copy so handlers can mutate a working copy without
// touching the caller's value.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.FundedAt != nil {
		v := *s.FundedAt
		c.FundedAt = &v
	}
	if s.SettledAt != nil {
		v := *s.SettledAt
		c.SettledAt = &v
	}
	return &c
}

// Expired reports whether the session is still unfunded past its expiry.
func (s *Session) Expired(now int64) bool {
	return s.Status == StatusInitialized && now > s.ExpiryAt
}

// Snapshot returns the public-facing view carried by events.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID:           s.ID,
		Payer:               s.Payer,
		MerchantID:          s.MerchantID,
		ReferenceID:         s.ReferenceID,
		Amount:              s.Amount,
		TokenType:           s.TokenType,
		CustodyAddress:      s.CustodyAddress,
		PayerSourceAddress:  s.PayerSourceAddress,
		SettlementAuthority: s.SettlementAuthority,
		Status:              s.Status,
		CreatedAt:           s.CreatedAt,
		ExpiryAt:            s.ExpiryAt,
		ExternalPayoutID:    s.ExternalPayoutID,
	}
	if s.FundedAt != nil {
		v := *s.FundedAt
		snap.FundedAt = &v
	}
	if s.SettledAt != nil {
		v := *s.SettledAt
		snap.SettledAt = &v
	}
	return snap
}
