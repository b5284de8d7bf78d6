package service

import (
	"context"

	"connectrpc.com/connect"
	solana "github.com/gagliardetto/solana-go"

	"github.com/mmynk/escrowd/internal/auth"
	"github.com/mmynk/escrowd/internal/escrow"
	"github.com/mmynk/escrowd/pkg/api"
	"github.com/mmynk/escrowd/pkg/api/apiconnect"
)

// LedgerService implements the Connect LedgerService
type LedgerService struct {
	apiconnect.UnimplementedLedgerServiceHandler
	engine *escrow.Engine
}

// NewLedgerService creates a new LedgerService backed by engine.
func NewLedgerService(engine *escrow.Engine) *LedgerService {
	return &LedgerService{engine: engine}
}

// OpenAccount opens a token account. Payers open their own.
func (s *LedgerService) OpenAccount(ctx context.Context, req *connect.Request[api.OpenAccountRequest]) (*connect.Response[api.AccountResponse], error) {
	p, err := callerOf(ctx)
	if err != nil {
		return nil, err
	}

	var owner solana.PublicKey
	if p.Role == auth.RolePayer {
		if owner, err = payerKey(p); err != nil {
			return nil, err
		}
		if req.Msg.Owner != "" && req.Msg.Owner != p.Subject {
			return nil, permissionDenied(errNotYourAcct)
		}
	} else if owner, err = parseKey("owner", req.Msg.Owner); err != nil {
		return nil, err
	}
	mint, err := parseKey("mint", req.Msg.Mint)
	if err != nil {
		return nil, err
	}

	account, err := s.engine.OpenAccount(ctx, owner, mint)
	if err != nil {
		return nil, toConnectError("OpenAccount", err)
	}
	return connect.NewResponse(&api.AccountResponse{Account: toAPIAccount(account)}), nil
}

// Credit mints tokens into an account.
func (s *LedgerService) Credit(ctx context.Context, req *connect.Request[api.CreditRequest]) (*connect.Response[api.AccountResponse], error) {
	if _, err := requireOperator(ctx); err != nil {
		return nil, err
	}
	addr, err := parseKey("address", req.Msg.Address)
	if err != nil {
		return nil, err
	}

	account, err := s.engine.Credit(ctx, addr, req.Msg.Amount)
	if err != nil {
		return nil, toConnectError("Credit", err)
	}
	return connect.NewResponse(&api.AccountResponse{Account: toAPIAccount(account)}), nil
}

// GetAccount retrieves an account by address.
func (s *LedgerService) GetAccount(ctx context.Context, req *connect.Request[api.GetAccountRequest]) (*connect.Response[api.AccountResponse], error) {
	if _, err := callerOf(ctx); err != nil {
		return nil, err
	}
	addr, err := parseKey("address", req.Msg.Address)
	if err != nil {
		return nil, err
	}

	account, err := s.engine.GetAccount(ctx, addr)
	if err != nil {
		return nil, toConnectError("GetAccount", err)
	}
	return connect.NewResponse(&api.AccountResponse{Account: toAPIAccount(account)}), nil
}
