package models

import (
	solana "github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// EventKind names the transition an event records.
type EventKind string

const (
	EventCreated        EventKind = "created"
	EventFunded         EventKind = "funded"
	EventRefunded       EventKind = "refunded"
	EventSettled        EventKind = "settled"
	EventPayoutRecorded EventKind = "payout_recorded"
)

// Snapshot is the public view of a session at the moment an event was written.
type Snapshot struct {
	SessionID           uuid.UUID
	Payer               solana.PublicKey
	MerchantID          string
	ReferenceID         string
	Amount              uint64
	TokenType           solana.PublicKey
	CustodyAddress      solana.PublicKey
	PayerSourceAddress  solana.PublicKey
	SettlementAuthority solana.PublicKey
	Status              Status
	CreatedAt           int64
	ExpiryAt            int64
	FundedAt            *int64
	SettledAt           *int64
	ExternalPayoutID    string
}

// Event is one entry of the append-only transition log.
type Event struct {
	// Seq is assigned by the store and orders all events globally.
	Seq int64

	SessionID uuid.UUID
	Kind      EventKind

	// Payload is the encoded Snapshot.
	Payload []byte

	// PrevHash and Hash chain each event to its predecessor.
	PrevHash []byte
	Hash     []byte

	CreatedAt int64

	// PublishedAt is set once the relay has handed the event to the stream.
	PublishedAt *int64
}
