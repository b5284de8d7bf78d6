// Package models defines the core domain models for escrowd.
//
// # Models
//
//   - Session: one escrow payment, keyed by a 128-bit ID, moving through
//     Initialized → Funded → {Refunded | Settled | PendingFiat}
//   - Account: a token holding account in the custody ledger
//   - Event: an append-only record of a committed transition
//   - Snapshot: the public view of a session carried by an Event
//
// # Design Principles
//
//  1. **Addresses are keys**: payers, owners, mints and derived authorities are
//     all solana.PublicKey values, so derivations and comparisons are byte-exact
//  2. **One transition table**: Status.CanTransition is the only place the
//     lifecycle edges live
//  3. **Unix seconds**: timestamps are int64, optional ones are pointers
//  4. **No behaviour beyond invariants**: handlers live in internal/escrow
package models
