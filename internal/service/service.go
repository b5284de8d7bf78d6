// Package service exposes the escrow engine over Connect RPC.
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
	"github.com/mmynk/escrowd/internal/middleware"
)

var (
	errAuthRequired   = errors.New("authentication required")
	errOperatorOnly   = errors.New("operator role required")
	errNotYourSession = errors.New("session belongs to another payer")
	errNotYourAcct    = errors.New("payers may only act on their own accounts")
)

// connectCode maps an engine error kind to its RPC status.
func connectCode(kind escrow.Kind) connect.Code {
	switch kind {
	case escrow.KindAuthorization:
		return connect.CodePermissionDenied
	case escrow.KindValidation:
		return connect.CodeInvalidArgument
	case escrow.KindState, escrow.KindFunds:
		return connect.CodeFailedPrecondition
	case escrow.KindNotFound:
		return connect.CodeNotFound
	case escrow.KindConflict:
		return connect.CodeAlreadyExists
	default:
		return connect.CodeInternal
	}
}

// toConnectError logs an engine failure and converts it for the client. The
// error kind travels in the Escrow-Error-Kind header.
func toConnectError(op string, err error) error {
	kind := escrow.KindOf(err)
	if kind == escrow.KindInternal {
		slog.Error(op+" failed", "error", err)
	} else {
		slog.Warn(op+" rejected", "kind", kind.String(), "error", err)
	}
	cerr := connect.NewError(connectCode(kind), err)
	cerr.Meta().Set(middleware.ErrorKindHeader, kind.String())
	return cerr
}

// invalidArgument reports a malformed request field.
func invalidArgument(format string, args ...any) error {
	cerr := connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
	cerr.Meta().Set(middleware.ErrorKindHeader, escrow.KindValidation.String())
	return cerr
}

func permissionDenied(err error) error {
	cerr := connect.NewError(connect.CodePermissionDenied, err)
	cerr.Meta().Set(middleware.ErrorKindHeader, escrow.KindAuthorization.String())
	return cerr
}

// callerOf returns the authenticated principal of the request.
func callerOf(ctx context.Context) (auth.Principal, error) {
	p, ok := middleware.GetPrincipal(ctx)
	if !ok {
		return auth.Principal{}, connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}
	return p, nil
}

func requireOperator(ctx context.Context) (auth.Principal, error) {
	p, err := callerOf(ctx)
	if err != nil {
		return auth.Principal{}, err
	}
	if p.Role != auth.RoleOperator {
		return auth.Principal{}, permissionDenied(errOperatorOnly)
	}
	return p, nil
}

// payerKey returns the caller's key when the caller is a payer.
func payerKey(p auth.Principal) (solana.PublicKey, error) {
	key, err := p.Key()
	if err != nil {
		return solana.PublicKey{}, connect.NewError(connect.CodeUnauthenticated, err)
	}
	return key, nil
}

func parseSessionID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, invalidArgument("session_id %q is not a valid id", s)
	}
	return id, nil
}

func parseKey(field, s string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, invalidArgument("%s %q is not a base58 key", field, s)
	}
	return key, nil
}
