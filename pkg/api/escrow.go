// Package api defines the request and response messages of the escrow.v1 RPC
// services. Messages travel as JSON; keys and mints are base58 strings, ids
// are UUID strings and token amounts are decimal strings.
package api

// Session is the wire form of a payment session.
type Session struct {
	ID                       string `json:"id"`
	Address                  string `json:"address"`
	Payer                    string `json:"payer"`
	MerchantID               string `json:"merchant_id"`
	ReferenceID              string `json:"reference_id,omitempty"`
	FiatCurrency             string `json:"fiat_currency,omitempty"`
	MerchantBank             string `json:"merchant_bank,omitempty"`
	TokenType                string `json:"token_type"`
	Amount                   uint64 `json:"amount,string"`
	CustodyAddress           string `json:"custody_address"`
	PayerSourceAddress       string `json:"payer_source_address"`
	SettlementAuthority      string `json:"settlement_authority"`
	SettlementAuthorityProof uint8  `json:"settlement_authority_proof"`
	Status                   string `json:"status"`
	CreatedAt                int64  `json:"created_at"`
	ExpiryAt                 int64  `json:"expiry_at"`
	FundedAt                 *int64 `json:"funded_at,omitempty"`
	SettledAt                *int64 `json:"settled_at,omitempty"`
	ExternalPayoutID         string `json:"external_payout_id,omitempty"`
}

// Event is one entry of a session's transition log.
type Event struct {
	Seq         int64  `json:"seq"`
	SessionID   string `json:"session_id"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
	Payload     []byte `json:"payload"`
	PrevHash    string `json:"prev_hash,omitempty"`
	Hash        string `json:"hash"`
	CreatedAt   int64  `json:"created_at"`
	PublishedAt *int64 `json:"published_at,omitempty"`
}

// InitSessionRequest opens a session. ID is generated when empty. Payer is
// taken from the caller's token for payers and must be set by operators.
type InitSessionRequest struct {
	ID           string `json:"id,omitempty"`
	Payer        string `json:"payer,omitempty"`
	MerchantID   string `json:"merchant_id"`
	ReferenceID  string `json:"reference_id,omitempty"`
	FiatCurrency string `json:"fiat_currency,omitempty"`
	MerchantBank string `json:"merchant_bank,omitempty"`
	TokenType    string `json:"token_type"`
	Amount       uint64 `json:"amount,string"`
}

type DepositRequest struct {
	SessionID string `json:"session_id"`
}

type RefundRequest struct {
	SessionID string `json:"session_id"`
}

// SettleDirectRequest pays the session into Destination, a token account
// owned by the session's merchant.
type SettleDirectRequest struct {
	SessionID   string `json:"session_id"`
	Destination string `json:"destination"`
}

type SettlePendingFiatRequest struct {
	SessionID string `json:"session_id"`
}

type RecordPayoutRequest struct {
	SessionID string `json:"session_id"`
	PayoutID  string `json:"payout_id"`
}

type GetSessionRequest struct {
	SessionID string `json:"session_id"`
}

// SessionResponse returns the session after an instruction or lookup.
type SessionResponse struct {
	Session *Session `json:"session"`
}

// ListSessionsRequest lists sessions of Payer, or with ExpiredOnly every
// unfunded session past its expiry. Payers may only list their own sessions.
type ListSessionsRequest struct {
	Payer       string `json:"payer,omitempty"`
	ExpiredOnly bool   `json:"expired_only,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

type ListSessionsResponse struct {
	Sessions []*Session `json:"sessions"`
}

type ListEventsRequest struct {
	SessionID string `json:"session_id"`
}

type ListEventsResponse struct {
	Events []*Event `json:"events"`
}

// GetPaymentLinkRequest builds a transfer-request URL for wallets.
type GetPaymentLinkRequest struct {
	SessionID string `json:"session_id"`
	Label     string `json:"label,omitempty"`
	Message   string `json:"message,omitempty"`
}

type GetPaymentLinkResponse struct {
	URL string `json:"url"`
}
