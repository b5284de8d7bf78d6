package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/escrowd/pkg/api"
)

// EscrowServiceName is the fully-qualified name of the EscrowService.
const EscrowServiceName = "escrow.v1.EscrowService"

// Procedure paths, usable as a mux pattern or in interceptors.
const (
	EscrowServiceInitSessionProcedure       = "/escrow.v1.EscrowService/InitSession"
	EscrowServiceDepositProcedure           = "/escrow.v1.EscrowService/Deposit"
	EscrowServiceRefundProcedure            = "/escrow.v1.EscrowService/Refund"
	EscrowServiceSettleDirectProcedure      = "/escrow.v1.EscrowService/SettleDirect"
	EscrowServiceSettlePendingFiatProcedure = "/escrow.v1.EscrowService/SettlePendingFiat"
	EscrowServiceRecordPayoutProcedure      = "/escrow.v1.EscrowService/RecordPayout"
	EscrowServiceGetSessionProcedure        = "/escrow.v1.EscrowService/GetSession"
	EscrowServiceListSessionsProcedure      = "/escrow.v1.EscrowService/ListSessions"
	EscrowServiceListEventsProcedure        = "/escrow.v1.EscrowService/ListEvents"
	EscrowServiceGetPaymentLinkProcedure    = "/escrow.v1.EscrowService/GetPaymentLink"
)

// EscrowServiceHandler runs payment session instructions and queries.
type EscrowServiceHandler interface {
	InitSession(context.Context, *connect.Request[api.InitSessionRequest]) (*connect.Response[api.SessionResponse], error)
	Deposit(context.Context, *connect.Request[api.DepositRequest]) (*connect.Response[api.SessionResponse], error)
	Refund(context.Context, *connect.Request[api.RefundRequest]) (*connect.Response[api.SessionResponse], error)
	SettleDirect(context.Context, *connect.Request[api.SettleDirectRequest]) (*connect.Response[api.SessionResponse], error)
	SettlePendingFiat(context.Context, *connect.Request[api.SettlePendingFiatRequest]) (*connect.Response[api.SessionResponse], error)
	RecordPayout(context.Context, *connect.Request[api.RecordPayoutRequest]) (*connect.Response[api.SessionResponse], error)
	GetSession(context.Context, *connect.Request[api.GetSessionRequest]) (*connect.Response[api.SessionResponse], error)
	ListSessions(context.Context, *connect.Request[api.ListSessionsRequest]) (*connect.Response[api.ListSessionsResponse], error)
	ListEvents(context.Context, *connect.Request[api.ListEventsRequest]) (*connect.Response[api.ListEventsResponse], error)
	GetPaymentLink(context.Context, *connect.Request[api.GetPaymentLinkRequest]) (*connect.Response[api.GetPaymentLinkResponse], error)
}

// NewEscrowServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewEscrowServiceHandler(svc EscrowServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	initSessionHandler := connect.NewUnaryHandler(EscrowServiceInitSessionProcedure, svc.InitSession, opts...)
	depositHandler := connect.NewUnaryHandler(EscrowServiceDepositProcedure, svc.Deposit, opts...)
	refundHandler := connect.NewUnaryHandler(EscrowServiceRefundProcedure, svc.Refund, opts...)
	settleDirectHandler := connect.NewUnaryHandler(EscrowServiceSettleDirectProcedure, svc.SettleDirect, opts...)
	settlePendingFiatHandler := connect.NewUnaryHandler(EscrowServiceSettlePendingFiatProcedure, svc.SettlePendingFiat, opts...)
	recordPayoutHandler := connect.NewUnaryHandler(EscrowServiceRecordPayoutProcedure, svc.RecordPayout, opts...)
	getSessionHandler := connect.NewUnaryHandler(EscrowServiceGetSessionProcedure, svc.GetSession, opts...)
	listSessionsHandler := connect.NewUnaryHandler(EscrowServiceListSessionsProcedure, svc.ListSessions, opts...)
	listEventsHandler := connect.NewUnaryHandler(EscrowServiceListEventsProcedure, svc.ListEvents, opts...)
	getPaymentLinkHandler := connect.NewUnaryHandler(EscrowServiceGetPaymentLinkProcedure, svc.GetPaymentLink, opts...)
	return "/escrow.v1.EscrowService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case EscrowServiceInitSessionProcedure:
			initSessionHandler.ServeHTTP(w, r)
		case EscrowServiceDepositProcedure:
			depositHandler.ServeHTTP(w, r)
		case EscrowServiceRefundProcedure:
			refundHandler.ServeHTTP(w, r)
		case EscrowServiceSettleDirectProcedure:
			settleDirectHandler.ServeHTTP(w, r)
		case EscrowServiceSettlePendingFiatProcedure:
			settlePendingFiatHandler.ServeHTTP(w, r)
		case EscrowServiceRecordPayoutProcedure:
			recordPayoutHandler.ServeHTTP(w, r)
		case EscrowServiceGetSessionProcedure:
			getSessionHandler.ServeHTTP(w, r)
		case EscrowServiceListSessionsProcedure:
			listSessionsHandler.ServeHTTP(w, r)
		case EscrowServiceListEventsProcedure:
			listEventsHandler.ServeHTTP(w, r)
		case EscrowServiceGetPaymentLinkProcedure:
			getPaymentLinkHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedEscrowServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedEscrowServiceHandler struct{}

func (UnimplementedEscrowServiceHandler) InitSession(context.Context, *connect.Request[api.InitSessionRequest]) (*connect.Response[api.SessionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented(EscrowServiceInitSessionProcedure))
}

func (UnimplementedEscrowServiceHandler) Deposit(context.Context, *connect.Request[api.DepositRequest]) (*connect.Response[api.SessionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented(EscrowServiceDepositProcedure))
}

func (UnimplementedEscrowServiceHandler) Refund(context.Context, *connect.Request[api.RefundRequest]) (*connect.Response[api.SessionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented(EscrowServiceRefundProcedure))
}

func (UnimplementedEscrowServiceHandler) SettleDirect(context.Context, *connect.Request[api.SettleDirectRequest]) (*connect.Response[api.SessionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented(EscrowServiceSettleDirectProcedure))
}

func (UnimplementedEscrowServiceHandler) SettlePendingFiat(context.Context, *connect.Request[api.SettlePendingFiatRequest]) (*connect.Response[api.SessionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented(EscrowServiceSettlePendingFiatProcedure))
}

func (UnimplementedEscrowServiceHandler) RecordPayout(context.Context, *connect.Request[api.RecordPayoutRequest]) (*connect.Response[api.SessionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented(EscrowServiceRecordPayoutProcedure))
}

func (UnimplementedEscrowServiceHandler) GetSession(context.Context, *connect.Request[api.GetSessionRequest]) (*connect.Response[api.SessionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented(EscrowServiceGetSessionProcedure))
}

func (UnimplementedEscrowServiceHandler) ListSessions(context.Context, *connect.Request[api.ListSessionsRequest]) (*connect.Response[api.ListSessionsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented(EscrowServiceListSessionsProcedure))
}

func (UnimplementedEscrowServiceHandler) ListEvents(context.Context, *connect.Request[api.ListEventsRequest]) (*connect.Response[api.ListEventsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented(EscrowServiceListEventsProcedure))
}

func (UnimplementedEscrowServiceHandler) GetPaymentLink(context.Context, *connect.Request[api.GetPaymentLinkRequest]) (*connect.Response[api.GetPaymentLinkResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented(EscrowServiceGetPaymentLinkProcedure))
}

// EscrowServiceClient is a client for the escrow.v1.EscrowService service.
type EscrowServiceClient interface {
	InitSession(context.Context, *connect.Request[api.InitSessionRequest]) (*connect.Response[api.SessionResponse], error)
	Deposit(context.Context, *connect.Request[api.DepositRequest]) (*connect.Response[api.SessionResponse], error)
	Refund(context.Context, *connect.Request[api.RefundRequest]) (*connect.Response[api.SessionResponse], error)
	SettleDirect(context.Context, *connect.Request[api.SettleDirectRequest]) (*connect.Response[api.SessionResponse], error)
	SettlePendingFiat(context.Context, *connect.Request[api.SettlePendingFiatRequest]) (*connect.Response[api.SessionResponse], error)
	RecordPayout(context.Context, *connect.Request[api.RecordPayoutRequest]) (*connect.Response[api.SessionResponse], error)
	GetSession(context.Context, *connect.Request[api.GetSessionRequest]) (*connect.Response[api.SessionResponse], error)
	ListSessions(context.Context, *connect.Request[api.ListSessionsRequest]) (*connect.Response[api.ListSessionsResponse], error)
	ListEvents(context.Context, *connect.Request[api.ListEventsRequest]) (*connect.Response[api.ListEventsResponse], error)
	GetPaymentLink(context.Context, *connect.Request[api.GetPaymentLinkRequest]) (*connect.Response[api.GetPaymentLinkResponse], error)
}

// NewEscrowServiceClient constructs a client for the escrow.v1.EscrowService service. baseURL is
// the scheme and host of the server, for example http://localhost:8080.
func NewEscrowServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) EscrowServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &escrowServiceClient{
		initSession:       connect.NewClient[api.InitSessionRequest, api.SessionResponse](httpClient, baseURL+EscrowServiceInitSessionProcedure, opts...),
		deposit:           connect.NewClient[api.DepositRequest, api.SessionResponse](httpClient, baseURL+EscrowServiceDepositProcedure, opts...),
		refund:            connect.NewClient[api.RefundRequest, api.SessionResponse](httpClient, baseURL+EscrowServiceRefundProcedure, opts...),
		settleDirect:      connect.NewClient[api.SettleDirectRequest, api.SessionResponse](httpClient, baseURL+EscrowServiceSettleDirectProcedure, opts...),
		settlePendingFiat: connect.NewClient[api.SettlePendingFiatRequest, api.SessionResponse](httpClient, baseURL+EscrowServiceSettlePendingFiatProcedure, opts...),
		recordPayout:      connect.NewClient[api.RecordPayoutRequest, api.SessionResponse](httpClient, baseURL+EscrowServiceRecordPayoutProcedure, opts...),
		getSession:        connect.NewClient[api.GetSessionRequest, api.SessionResponse](httpClient, baseURL+EscrowServiceGetSessionProcedure, opts...),
		listSessions:      connect.NewClient[api.ListSessionsRequest, api.ListSessionsResponse](httpClient, baseURL+EscrowServiceListSessionsProcedure, opts...),
		listEvents:        connect.NewClient[api.ListEventsRequest, api.ListEventsResponse](httpClient, baseURL+EscrowServiceListEventsProcedure, opts...),
		getPaymentLink:    connect.NewClient[api.GetPaymentLinkRequest, api.GetPaymentLinkResponse](httpClient, baseURL+EscrowServiceGetPaymentLinkProcedure, opts...),
	}
}

type escrowServiceClient struct {
	initSession       *connect.Client[api.InitSessionRequest, api.SessionResponse]
	deposit           *connect.Client[api.DepositRequest, api.SessionResponse]
	refund            *connect.Client[api.RefundRequest, api.SessionResponse]
	settleDirect      *connect.Client[api.SettleDirectRequest, api.SessionResponse]
	settlePendingFiat *connect.Client[api.SettlePendingFiatRequest, api.SessionResponse]
	recordPayout      *connect.Client[api.RecordPayoutRequest, api.SessionResponse]
	getSession        *connect.Client[api.GetSessionRequest, api.SessionResponse]
	listSessions      *connect.Client[api.ListSessionsRequest, api.ListSessionsResponse]
	listEvents        *connect.Client[api.ListEventsRequest, api.ListEventsResponse]
	getPaymentLink    *connect.Client[api.GetPaymentLinkRequest, api.GetPaymentLinkResponse]
}

func (c *escrowServiceClient) InitSession(ctx context.Context, req *connect.Request[api.InitSessionRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.initSession.CallUnary(ctx, req)
}

func (c *escrowServiceClient) Deposit(ctx context.Context, req *connect.Request[api.DepositRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.deposit.CallUnary(ctx, req)
}

func (c *escrowServiceClient) Refund(ctx context.Context, req *connect.Request[api.RefundRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.refund.CallUnary(ctx, req)
}

func (c *escrowServiceClient) SettleDirect(ctx context.Context, req *connect.Request[api.SettleDirectRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.settleDirect.CallUnary(ctx, req)
}

func (c *escrowServiceClient) SettlePendingFiat(ctx context.Context, req *connect.Request[api.SettlePendingFiatRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.settlePendingFiat.CallUnary(ctx, req)
}

func (c *escrowServiceClient) RecordPayout(ctx context.Context, req *connect.Request[api.RecordPayoutRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.recordPayout.CallUnary(ctx, req)
}

func (c *escrowServiceClient) GetSession(ctx context.Context, req *connect.Request[api.GetSessionRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.getSession.CallUnary(ctx, req)
}

func (c *escrowServiceClient) ListSessions(ctx context.Context, req *connect.Request[api.ListSessionsRequest]) (*connect.Response[api.ListSessionsResponse], error) {
	return c.listSessions.CallUnary(ctx, req)
}

func (c *escrowServiceClient) ListEvents(ctx context.Context, req *connect.Request[api.ListEventsRequest]) (*connect.Response[api.ListEventsResponse], error) {
	return c.listEvents.CallUnary(ctx, req)
}

func (c *escrowServiceClient) GetPaymentLink(ctx context.Context, req *connect.Request[api.GetPaymentLinkRequest]) (*connect.Response[api.GetPaymentLinkResponse], error) {
	return c.getPaymentLink.CallUnary(ctx, req)
}
