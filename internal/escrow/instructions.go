package escrow

import (
	"context"
	"errors"
	"fmt"
	"math"

	solana "github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/mmynk/escrowd/internal/authority"
	"github.com/mmynk/escrowd/internal/ledger"
	"github.com/mmynk/escrowd/internal/models"
	"github.com/mmynk/escrowd/internal/storage"
)

// InitParams are the caller-supplied fields of a new session.
type InitParams struct {
	ID uuid.UUID
	// MerchantID is stored as given. SettleDirect pays only into an account
	// whose owner's base58 key equals it, so sessions settled through the
	// fiat bridge may carry any identifier.
	MerchantID   string
	ReferenceID  string
	FiatCurrency string
	MerchantBank string
	TokenType    solana.PublicKey
	Amount       uint64
}

func (p InitParams) validate(payer solana.PublicKey) error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("%w: session id is required", ErrInvalidArgument)
	}
	if payer.IsZero() {
		return fmt.Errorf("%w: payer is required", ErrInvalidArgument)
	}
	if p.TokenType.IsZero() {
		return fmt.Errorf("%w: token type is required", ErrInvalidArgument)
	}
	if p.MerchantID == "" {
		return fmt.Errorf("%w: merchant id is required", ErrInvalidArgument)
	}
	for _, f := range []struct {
		name, value string
	}{
		{"merchant_id", p.MerchantID},
		{"reference_id", p.ReferenceID},
		{"fiat_currency", p.FiatCurrency},
		{"merchant_bank", p.MerchantBank},
	} {
		if len(f.value) > models.MaxFieldLen {
			return fmt.Errorf("%s is %d bytes, max %d: %w", f.name, len(f.value), models.MaxFieldLen, ErrFieldTooLong)
		}
	}
	if p.Amount == 0 || p.Amount > math.MaxInt64 {
		return fmt.Errorf("amount %d: %w", p.Amount, ErrInvalidAmount)
	}
	return nil
}

// Init creates an Initialized session owned by payer, together with its empty
// custody account.
func (e *Engine) Init(ctx context.Context, payer solana.PublicKey, p InitParams) (*models.Session, error) {
	return e.run(ctx, "init", p.ID, func(tx storage.Tx) (outcome, error) {
		if err := p.validate(payer); err != nil {
			return outcome{}, err
		}

		addr, bump, err := authority.SessionAddress(e.cfg.ProgramID, payer, p.ID)
		if err != nil {
			return outcome{}, err
		}
		settlement, owner, err := authority.DeriveSettlement(e.cfg.ProgramID, addr, p.ID)
		if err != nil {
			return outcome{}, err
		}
		source, err := authority.TokenAccount(payer, p.TokenType)
		if err != nil {
			return outcome{}, err
		}

		now := e.now().Unix()
		custody, err := ledger.Open(ctx, tx, owner, p.TokenType, now)
		if errors.Is(err, storage.ErrConflict) {
			return outcome{}, fmt.Errorf("custody for session %s: %w", p.ID, ErrAccountExists)
		}
		if err != nil {
			return outcome{}, err
		}

		s := &models.Session{
			ID:                       p.ID,
			Address:                  addr,
			SessionBump:              bump,
			Payer:                    payer,
			MerchantID:               p.MerchantID,
			ReferenceID:              p.ReferenceID,
			FiatCurrency:             p.FiatCurrency,
			MerchantBank:             p.MerchantBank,
			TokenType:                p.TokenType,
			Amount:                   p.Amount,
			CustodyAddress:           custody.Address,
			PayerSourceAddress:       source,
			SettlementAuthority:      owner,
			SettlementAuthorityProof: settlement.Bump,
			Status:                   models.StatusInitialized,
			CreatedAt:                now,
			ExpiryAt:                 now + int64(e.cfg.SessionTTL.Seconds()),
		}
		err = tx.CreateSession(ctx, s)
		if errors.Is(err, storage.ErrConflict) {
			return outcome{}, fmt.Errorf("%w: %s", ErrSessionExists, p.ID)
		}
		if err != nil {
			return outcome{}, err
		}
		if err := appendEvent(ctx, tx, s, models.EventCreated, now); err != nil {
			return outcome{}, err
		}
		return outcome{session: s}, nil
	})
}

// Deposit moves the session amount from the payer's source account into
// custody. signer must be the payer.
func (e *Engine) Deposit(ctx context.Context, signer solana.PublicKey, id uuid.UUID) (*models.Session, error) {
	return e.run(ctx, "deposit", id, func(tx storage.Tx) (outcome, error) {
		s, err := load(ctx, tx, id)
		if err != nil {
			return outcome{}, err
		}
		if err := advance(s, models.StatusFunded); err != nil {
			return outcome{}, err
		}

		// A source that was never opened holds nothing.
		if _, err := tx.GetAccount(ctx, s.PayerSourceAddress); errors.Is(err, storage.ErrNotFound) {
			return outcome{}, fmt.Errorf("source %s not opened, balance 0, need %d: %w", s.PayerSourceAddress, s.Amount, ErrInsufficientEscrowFunds)
		} else if err != nil {
			return outcome{}, err
		}

		_, err = ledger.TransferChecked(ctx, tx, ledger.Transfer{
			Source:      s.PayerSourceAddress,
			Destination: s.CustodyAddress,
			Mint:        s.TokenType,
			Amount:      s.Amount,
			Authority:   ledger.Signer(signer),
		})
		if err != nil {
			return outcome{}, err
		}

		now := e.now().Unix()
		s.FundedAt = &now
		if err := commit(ctx, tx, s, models.EventFunded, now); err != nil {
			return outcome{}, err
		}
		return outcome{session: s, moved: "in"}, nil
	})
}

// Refund returns custody to the payer's source account.
func (e *Engine) Refund(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return e.run(ctx, "refund", id, func(tx storage.Tx) (outcome, error) {
		s, err := load(ctx, tx, id)
		if err != nil {
			return outcome{}, err
		}
		return e.release(ctx, tx, s, s.PayerSourceAddress, models.StatusRefunded, models.EventRefunded)
	})
}

// SettleDirect pays custody into destination, which must be owned by the
// session's merchant.
func (e *Engine) SettleDirect(ctx context.Context, id uuid.UUID, destination solana.PublicKey) (*models.Session, error) {
	return e.run(ctx, "settle_direct", id, func(tx storage.Tx) (outcome, error) {
		s, err := load(ctx, tx, id)
		if err != nil {
			return outcome{}, err
		}
		if !s.Status.CanTransition(models.StatusSettled) {
			return outcome{}, fmt.Errorf("session %s is %s: %w", s.ID, s.Status, ErrInvalidPaymentSessionState)
		}

		dst, err := tx.GetAccount(ctx, destination)
		if errors.Is(err, storage.ErrNotFound) {
			return outcome{}, fmt.Errorf("%w: %s", ErrAccountNotFound, destination)
		}
		if err != nil {
			return outcome{}, err
		}
		if _, err := solana.PublicKeyFromBase58(s.MerchantID); err != nil {
			return outcome{}, fmt.Errorf("merchant %q is not a wallet key, settle through the fiat bridge: %w", s.MerchantID, ErrInvalidMerchant)
		}
		if dst.Owner.String() != s.MerchantID {
			return outcome{}, fmt.Errorf("destination owned by %s, merchant is %q: %w", dst.Owner, s.MerchantID, ErrInvalidMerchant)
		}
		return e.release(ctx, tx, s, destination, models.StatusSettled, models.EventSettled)
	})
}

// SettlePendingFiat pays custody into the bridge account for the session's
// mint, opening it on first use. The off-chain payout is recorded later with
// RecordPayout.
func (e *Engine) SettlePendingFiat(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return e.run(ctx, "settle_pending_fiat", id, func(tx storage.Tx) (outcome, error) {
		s, err := load(ctx, tx, id)
		if err != nil {
			return outcome{}, err
		}
		if !s.Status.CanTransition(models.StatusPendingFiat) {
			return outcome{}, fmt.Errorf("session %s is %s: %w", s.ID, s.Status, ErrInvalidPaymentSessionState)
		}

		bridge, err := e.BridgeAccount(s.TokenType)
		if err != nil {
			return outcome{}, err
		}
		_, err = tx.GetAccount(ctx, bridge)
		if errors.Is(err, storage.ErrNotFound) {
			_, err = ledger.Open(ctx, tx, e.cfg.BridgeOwner, s.TokenType, e.now().Unix())
		}
		if err != nil {
			return outcome{}, err
		}
		return e.release(ctx, tx, s, bridge, models.StatusPendingFiat, models.EventSettled)
	})
}

// release moves the full custody balance out under the derived authority.
func (e *Engine) release(ctx context.Context, tx storage.Tx, s *models.Session, destination solana.PublicKey, next models.Status, kind models.EventKind) (outcome, error) {
	if err := advance(s, next); err != nil {
		return outcome{}, err
	}

	auth := e.settlement(s)
	if err := auth.Verify(s.SettlementAuthority); err != nil {
		return outcome{}, fmt.Errorf("session %s: %v: %w", s.ID, err, ErrUnauthorized)
	}

	_, err := ledger.TransferChecked(ctx, tx, ledger.Transfer{
		Source:      s.CustodyAddress,
		Destination: destination,
		Mint:        s.TokenType,
		Amount:      s.Amount,
		Authority:   auth,
	})
	if err != nil {
		return outcome{}, err
	}

	now := e.now().Unix()
	s.SettledAt = &now
	if err := commit(ctx, tx, s, kind, now); err != nil {
		return outcome{}, err
	}
	return outcome{session: s, moved: "out"}, nil
}

// RecordPayout stamps the off-chain payout id on a PendingFiat session.
// It can be recorded once.
func (e *Engine) RecordPayout(ctx context.Context, id uuid.UUID, payoutID string) (*models.Session, error) {
	return e.run(ctx, "record_payout", id, func(tx storage.Tx) (outcome, error) {
		if payoutID == "" {
			return outcome{}, fmt.Errorf("%w: payout id is required", ErrInvalidArgument)
		}
		if len(payoutID) > models.MaxFieldLen {
			return outcome{}, fmt.Errorf("payout id is %d bytes, max %d: %w", len(payoutID), models.MaxFieldLen, ErrFieldTooLong)
		}

		s, err := load(ctx, tx, id)
		if err != nil {
			return outcome{}, err
		}
		if s.Status != models.StatusPendingFiat {
			return outcome{}, fmt.Errorf("session %s is %s: %w", s.ID, s.Status, ErrInvalidPaymentSessionState)
		}
		if s.ExternalPayoutID != "" {
			return outcome{}, fmt.Errorf("session %s has payout %q: %w", s.ID, s.ExternalPayoutID, ErrPayoutAlreadyRecorded)
		}

		s.ExternalPayoutID = payoutID
		if err := commit(ctx, tx, s, models.EventPayoutRecorded, e.now().Unix()); err != nil {
			return outcome{}, err
		}
		return outcome{session: s, annotated: true}, nil
	})
}
