package service

import (
	"encoding/hex"

	"github.com/mmynk/escrowd/internal/events"
	"github.com/mmynk/escrowd/internal/models"
	"github.com/mmynk/escrowd/pkg/api"
)

func toAPISession(s *models.Session) *api.Session {
	return &api.Session{
		ID:                       s.ID.String(),
		Address:                  s.Address.String(),
		Payer:                    s.Payer.String(),
		MerchantID:               s.MerchantID,
		ReferenceID:              s.ReferenceID,
		FiatCurrency:             s.FiatCurrency,
		MerchantBank:             s.MerchantBank,
		TokenType:                s.TokenType.String(),
		Amount:                   s.Amount,
		CustodyAddress:           s.CustodyAddress.String(),
		PayerSourceAddress:       s.PayerSourceAddress.String(),
		SettlementAuthority:      s.SettlementAuthority.String(),
		SettlementAuthorityProof: s.SettlementAuthorityProof,
		Status:                   s.Status.String(),
		CreatedAt:                s.CreatedAt,
		ExpiryAt:                 s.ExpiryAt,
		FundedAt:                 s.FundedAt,
		SettledAt:                s.SettledAt,
		ExternalPayoutID:         s.ExternalPayoutID,
	}
}

func toAPISessions(sessions []*models.Session) []*api.Session {
	out := make([]*api.Session, len(sessions))
	for i, s := range sessions {
		out[i] = toAPISession(s)
	}
	return out
}

func toAPIEvent(ev *models.Event) *api.Event {
	out := &api.Event{
		Seq:         ev.Seq,
		SessionID:   ev.SessionID.String(),
		Kind:        string(ev.Kind),
		Payload:     ev.Payload,
		PrevHash:    hex.EncodeToString(ev.PrevHash),
		Hash:        hex.EncodeToString(ev.Hash),
		CreatedAt:   ev.CreatedAt,
		PublishedAt: ev.PublishedAt,
	}
	if snap, err := events.Decode(ev.Payload); err == nil {
		out.Status = snap.Status.String()
	}
	return out
}

func toAPIAccount(a *models.Account) *api.Account {
	return &api.Account{
		Address:   a.Address.String(),
		Owner:     a.Owner.String(),
		Mint:      a.Mint.String(),
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
	}
}
