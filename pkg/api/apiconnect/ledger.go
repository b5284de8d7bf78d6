package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/escrowd/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService.
const LedgerServiceName = "escrow.v1.LedgerService"

// Procedure paths, usable as a mux pattern or in interceptors.
const (
	LedgerServiceOpenAccountProcedure = "/escrow.v1.LedgerService/OpenAccount"
	LedgerServiceCreditProcedure      = "/escrow.v1.LedgerService/Credit"
	LedgerServiceGetAccountProcedure  = "/escrow.v1.LedgerService/GetAccount"
)

// LedgerServiceHandler manages token accounts of the custody ledger.
type LedgerServiceHandler interface {
	OpenAccount(context.Context, *connect.Request[api.OpenAccountRequest]) (*connect.Response[api.AccountResponse], error)
	Credit(context.Context, *connect.Request[api.CreditRequest]) (*connect.Response[api.AccountResponse], error)
	GetAccount(context.Context, *connect.Request[api.GetAccountRequest]) (*connect.Response[api.AccountResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	openAccountHandler := connect.NewUnaryHandler(LedgerServiceOpenAccountProcedure, svc.OpenAccount, opts...)
	creditHandler := connect.NewUnaryHandler(LedgerServiceCreditProcedure, svc.Credit, opts...)
	getAccountHandler := connect.NewUnaryHandler(LedgerServiceGetAccountProcedure, svc.GetAccount, opts...)
	return "/escrow.v1.LedgerService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case LedgerServiceOpenAccountProcedure:
			openAccountHandler.ServeHTTP(w, r)
		case LedgerServiceCreditProcedure:
			creditHandler.ServeHTTP(w, r)
		case LedgerServiceGetAccountProcedure:
			getAccountHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedLedgerServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedLedgerServiceHandler struct{}

func (UnimplementedLedgerServiceHandler) OpenAccount(context.Context, *connect.Request[api.OpenAccountRequest]) (*connect.Response[api.AccountResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented(LedgerServiceOpenAccountProcedure))
}

func (UnimplementedLedgerServiceHandler) Credit(context.Context, *connect.Request[api.CreditRequest]) (*connect.Response[api.AccountResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented(LedgerServiceCreditProcedure))
}

func (UnimplementedLedgerServiceHandler) GetAccount(context.Context, *connect.Request[api.GetAccountRequest]) (*connect.Response[api.AccountResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented(LedgerServiceGetAccountProcedure))
}

// LedgerServiceClient is a client for the escrow.v1.LedgerService service.
type LedgerServiceClient interface {
	OpenAccount(context.Context, *connect.Request[api.OpenAccountRequest]) (*connect.Response[api.AccountResponse], error)
	Credit(context.Context, *connect.Request[api.CreditRequest]) (*connect.Response[api.AccountResponse], error)
	GetAccount(context.Context, *connect.Request[api.GetAccountRequest]) (*connect.Response[api.AccountResponse], error)
}

// NewLedgerServiceClient constructs a client for the escrow.v1.LedgerService service. baseURL is
// the scheme and host of the server, for example http://localhost:8080.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &ledgerServiceClient{
		openAccount: connect.NewClient[api.OpenAccountRequest, api.AccountResponse](httpClient, baseURL+LedgerServiceOpenAccountProcedure, opts...),
		credit:      connect.NewClient[api.CreditRequest, api.AccountResponse](httpClient, baseURL+LedgerServiceCreditProcedure, opts...),
		getAccount:  connect.NewClient[api.GetAccountRequest, api.AccountResponse](httpClient, baseURL+LedgerServiceGetAccountProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	openAccount *connect.Client[api.OpenAccountRequest, api.AccountResponse]
	credit      *connect.Client[api.CreditRequest, api.AccountResponse]
	getAccount  *connect.Client[api.GetAccountRequest, api.AccountResponse]
}

func (c *ledgerServiceClient) OpenAccount(ctx context.Context, req *connect.Request[api.OpenAccountRequest]) (*connect.Response[api.AccountResponse], error) {
	return c.openAccount.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) Credit(ctx context.Context, req *connect.Request[api.CreditRequest]) (*connect.Response[api.AccountResponse], error) {
	return c.credit.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetAccount(ctx context.Context, req *connect.Request[api.GetAccountRequest]) (*connect.Response[api.AccountResponse], error) {
	return c.getAccount.CallUnary(ctx, req)
}
