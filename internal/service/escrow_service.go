package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	solana "github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/mmynk/escrowd/internal/auth"
	"github.com/mmynk/escrowd/internal/escrow"
	"github.com/mmynk/escrowd/internal/models"
	"github.com/mmynk/escrowd/pkg/api"
	"github.com/mmynk/escrowd/pkg/api/apiconnect"
)

// EscrowService implements the Connect EscrowService
type EscrowService struct {
	apiconnect.UnimplementedEscrowServiceHandler
	engine   *escrow.Engine
	decimals uint8
}

// NewEscrowService creates a new EscrowService backed by engine. decimals
// scales amounts in payment links.
func NewEscrowService(engine *escrow.Engine, decimals uint8) *EscrowService {
	return &EscrowService{engine: engine, decimals: decimals}
}

// authorizeSession loads a session the caller may see: operators see all,
// payers only their own.
func (s *EscrowService) authorizeSession(ctx context.Context, op string, rawID string) (*models.Session, error) {
	p, err := callerOf(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseSessionID(rawID)
	if err != nil {
		return nil, err
	}
	session, err := s.engine.Get(ctx, id)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	if p.Role == auth.RoleOperator {
		return session, nil
	}
	key, err := payerKey(p)
	if err != nil {
		return nil, err
	}
	if !key.Equals(session.Payer) {
		return nil, permissionDenied(errNotYourSession)
	}
	return session, nil
}

// InitSession opens a new payment session.
func (s *EscrowService) InitSession(ctx context.Context, req *connect.Request[api.InitSessionRequest]) (*connect.Response[api.SessionResponse], error) {
	p, err := callerOf(ctx)
	if err != nil {
		return nil, err
	}

	var payer solana.PublicKey
	switch p.Role {
	case auth.RolePayer:
		if payer, err = payerKey(p); err != nil {
			return nil, err
		}
		if req.Msg.Payer != "" && req.Msg.Payer != p.Subject {
			return nil, permissionDenied(errors.New("payers may only open sessions for themselves"))
		}
	default:
		if req.Msg.Payer == "" {
			return nil, invalidArgument("payer is required")
		}
		if payer, err = parseKey("payer", req.Msg.Payer); err != nil {
			return nil, err
		}
	}

	id := uuid.New()
	if req.Msg.ID != "" {
		if id, err = parseSessionID(req.Msg.ID); err != nil {
			return nil, err
		}
	}
	mint, err := parseKey("token_type", req.Msg.TokenType)
	if err != nil {
		return nil, err
	}

	session, err := s.engine.Init(ctx, payer, escrow.InitParams{
		ID:           id,
		MerchantID:   req.Msg.MerchantID,
		ReferenceID:  req.Msg.ReferenceID,
		FiatCurrency: req.Msg.FiatCurrency,
		MerchantBank: req.Msg.MerchantBank,
		TokenType:    mint,
		Amount:       req.Msg.Amount,
	})
	if err != nil {
		return nil, toConnectError("InitSession", err)
	}

	slog.Info("Session initialized", "session_id", session.ID, "payer", session.Payer, "amount", session.Amount)
	return connect.NewResponse(&api.SessionResponse{Session: toAPISession(session)}), nil
}

// Deposit funds a session. Only the payer can sign a deposit.
func (s *EscrowService) Deposit(ctx context.Context, req *connect.Request[api.DepositRequest]) (*connect.Response[api.SessionResponse], error) {
	p, err := callerOf(ctx)
	if err != nil {
		return nil, err
	}
	if p.Role != auth.RolePayer {
		return nil, permissionDenied(errors.New("deposit requires the payer's signature"))
	}
	signer, err := payerKey(p)
	if err != nil {
		return nil, err
	}
	id, err := parseSessionID(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	session, err := s.engine.Deposit(ctx, signer, id)
	if err != nil {
		return nil, toConnectError("Deposit", err)
	}
	return connect.NewResponse(&api.SessionResponse{Session: toAPISession(session)}), nil
}

// Refund returns a funded session to its payer.
func (s *EscrowService) Refund(ctx context.Context, req *connect.Request[api.RefundRequest]) (*connect.Response[api.SessionResponse], error) {
	current, err := s.authorizeSession(ctx, "Refund", req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	session, err := s.engine.Refund(ctx, current.ID)
	if err != nil {
		return nil, toConnectError("Refund", err)
	}
	return connect.NewResponse(&api.SessionResponse{Session: toAPISession(session)}), nil
}

// SettleDirect pays a funded session to its merchant.
func (s *EscrowService) SettleDirect(ctx context.Context, req *connect.Request[api.SettleDirectRequest]) (*connect.Response[api.SessionResponse], error) {
	if _, err := requireOperator(ctx); err != nil {
		return nil, err
	}
	id, err := parseSessionID(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	dest, err := parseKey("destination", req.Msg.Destination)
	if err != nil {
		return nil, err
	}

	session, err := s.engine.SettleDirect(ctx, id, dest)
	if err != nil {
		return nil, toConnectError("SettleDirect", err)
	}
	return connect.NewResponse(&api.SessionResponse{Session: toAPISession(session)}), nil
}

// SettlePendingFiat hands a funded session to the fiat bridge.
func (s *EscrowService) SettlePendingFiat(ctx context.Context, req *connect.Request[api.SettlePendingFiatRequest]) (*connect.Response[api.SessionResponse], error) {
	if _, err := requireOperator(ctx); err != nil {
		return nil, err
	}
	id, err := parseSessionID(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	session, err := s.engine.SettlePendingFiat(ctx, id)
	if err != nil {
		return nil, toConnectError("SettlePendingFiat", err)
	}
	return connect.NewResponse(&api.SessionResponse{Session: toAPISession(session)}), nil
}

// RecordPayout attaches the off-chain payout id to a pending-fiat session.
func (s *EscrowService) RecordPayout(ctx context.Context, req *connect.Request[api.RecordPayoutRequest]) (*connect.Response[api.SessionResponse], error) {
	if _, err := requireOperator(ctx); err != nil {
		return nil, err
	}
	id, err := parseSessionID(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	session, err := s.engine.RecordPayout(ctx, id, req.Msg.PayoutID)
	if err != nil {
		return nil, toConnectError("RecordPayout", err)
	}
	return connect.NewResponse(&api.SessionResponse{Session: toAPISession(session)}), nil
}

// GetSession retrieves a session by ID.
func (s *EscrowService) GetSession(ctx context.Context, req *connect.Request[api.GetSessionRequest]) (*connect.Response[api.SessionResponse], error) {
	session, err := s.authorizeSession(ctx, "GetSession", req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.SessionResponse{Session: toAPISession(session)}), nil
}

// ListSessions lists a payer's sessions, or expired unfunded sessions for operators.
func (s *EscrowService) ListSessions(ctx context.Context, req *connect.Request[api.ListSessionsRequest]) (*connect.Response[api.ListSessionsResponse], error) {
	p, err := callerOf(ctx)
	if err != nil {
		return nil, err
	}

	if req.Msg.ExpiredOnly {
		if p.Role != auth.RoleOperator {
			return nil, permissionDenied(errOperatorOnly)
		}
		sessions, err := s.engine.ListExpired(ctx, req.Msg.Limit)
		if err != nil {
			return nil, toConnectError("ListSessions", err)
		}
		return connect.NewResponse(&api.ListSessionsResponse{Sessions: toAPISessions(sessions)}), nil
	}

	var payer solana.PublicKey
	if p.Role == auth.RolePayer {
		if payer, err = payerKey(p); err != nil {
			return nil, err
		}
		if req.Msg.Payer != "" && req.Msg.Payer != p.Subject {
			return nil, permissionDenied(errNotYourSession)
		}
	} else if payer, err = parseKey("payer", req.Msg.Payer); err != nil {
		return nil, err
	}

	sessions, err := s.engine.ListByPayer(ctx, payer)
	if err != nil {
		return nil, toConnectError("ListSessions", err)
	}
	if req.Msg.Limit > 0 && len(sessions) > req.Msg.Limit {
		sessions = sessions[:req.Msg.Limit]
	}
	return connect.NewResponse(&api.ListSessionsResponse{Sessions: toAPISessions(sessions)}), nil
}

// ListEvents returns the transition log of a session.
func (s *EscrowService) ListEvents(ctx context.Context, req *connect.Request[api.ListEventsRequest]) (*connect.Response[api.ListEventsResponse], error) {
	session, err := s.authorizeSession(ctx, "ListEvents", req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	evs, err := s.engine.Events(ctx, session.ID)
	if err != nil {
		return nil, toConnectError("ListEvents", err)
	}
	out := make([]*api.Event, len(evs))
	for i, ev := range evs {
		out[i] = toAPIEvent(ev)
	}
	return connect.NewResponse(&api.ListEventsResponse{Events: out}), nil
}

// GetPaymentLink returns a wallet link that funds an Initialized session.
func (s *EscrowService) GetPaymentLink(ctx context.Context, req *connect.Request[api.GetPaymentLinkRequest]) (*connect.Response[api.GetPaymentLinkResponse], error) {
	session, err := s.authorizeSession(ctx, "GetPaymentLink", req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.StatusInitialized {
		return nil, toConnectError("GetPaymentLink", &escrow.Error{
			Op:   "payment_link",
			Kind: escrow.KindState,
			Err:  fmt.Errorf("session %s is %s: %w", session.ID, session.Status, escrow.ErrInvalidPaymentSessionState),
		})
	}
	if len(req.Msg.Label) > models.MaxFieldLen || len(req.Msg.Message) > models.MaxFieldLen*4 {
		return nil, invalidArgument("label or message too long")
	}

	link := PaymentLink(session, s.decimals, req.Msg.Label, req.Msg.Message)
	return connect.NewResponse(&api.GetPaymentLinkResponse{URL: link}), nil
}
