package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	solana "github.com/gagliardetto/solana-go"

	"github.com/mmynk/escrowd/internal/auth"
	"github.com/mmynk/escrowd/internal/escrow"
	"github.com/mmynk/escrowd/internal/middleware"
	"github.com/mmynk/escrowd/internal/storage/sqlite"
	"github.com/mmynk/escrowd/pkg/api"
	"github.com/mmynk/escrowd/pkg/api/apiconnect"
)

var (
	testProgram = solana.MustPublicKeyFromBase58("JCpwefFuKLrZEczt7FFcZ3oLE9nCdGNtRmTSXpQ4dLRd")
	testBridge  = solana.MustPublicKeyFromBase58("7c7DvpirKPx6qxSgtRkmsEi1a78tNyjLZR6wsmAGsegz")
)

// caller bundles the clients of one authenticated principal.
type caller struct {
	key    solana.PublicKey
	escrow apiconnect.EscrowServiceClient
	ledger apiconnect.LedgerServiceClient
}

type testEnv struct {
	payer    caller
	other    caller
	operator caller
	anon     caller
	mint     solana.PublicKey
	source   string
}

// setupTestServer creates a test server with EscrowService and LedgerService
// behind the auth interceptor, a funded payer and a second payer.
func setupTestServer(t *testing.T) (*testEnv, func()) {
	t.Helper()

	// Create temp database
	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	engine, err := escrow.New(store, escrow.Config{ProgramID: testProgram, BridgeOwner: testBridge})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	jwtManager := auth.NewJWTManager("test-secret-0123456789", time.Hour)
	interceptors := connect.WithInterceptors(middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor())

	escrowPath, escrowHandler := apiconnect.NewEscrowServiceHandler(NewEscrowService(engine, 6), interceptors)
	ledgerPath, ledgerHandler := apiconnect.NewLedgerServiceHandler(NewLedgerService(engine), interceptors)

	mux := http.NewServeMux()
	mux.Handle(escrowPath, escrowHandler)
	mux.Handle(ledgerPath, ledgerHandler)

	server := httptest.NewServer(mux)

	newCaller := func(p *auth.Principal) caller {
		var opts []connect.ClientOption
		var key solana.PublicKey
		if p != nil {
			token, err := jwtManager.Generate(*p)
			if err != nil {
				t.Fatalf("failed to generate token: %v", err)
			}
			opts = append(opts, connect.WithInterceptors(middleware.BearerToken(token)))
			key, _ = p.Key()
		}
		return caller{
			key:    key,
			escrow: apiconnect.NewEscrowServiceClient(http.DefaultClient, server.URL, opts...),
			ledger: apiconnect.NewLedgerServiceClient(http.DefaultClient, server.URL, opts...),
		}
	}

	payerKey := solana.NewWallet().PublicKey()
	otherKey := solana.NewWallet().PublicKey()
	env := &testEnv{
		payer:    newCaller(&auth.Principal{Subject: payerKey.String(), Role: auth.RolePayer}),
		other:    newCaller(&auth.Principal{Subject: otherKey.String(), Role: auth.RolePayer}),
		operator: newCaller(&auth.Principal{Subject: "ops-1", Role: auth.RoleOperator}),
		anon:     newCaller(nil),
		mint:     solana.NewWallet().PublicKey(),
	}

	ctx := context.Background()
	opened, err := env.payer.ledger.OpenAccount(ctx, connect.NewRequest(&api.OpenAccountRequest{Mint: env.mint.String()}))
	if err != nil {
		t.Fatalf("OpenAccount failed: %v", err)
	}
	env.source = opened.Msg.Account.Address
	if _, err := env.operator.ledger.Credit(ctx, connect.NewRequest(&api.CreditRequest{Address: env.source, Amount: 5000})); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}

	cleanup := func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	}

	return env, cleanup
}

func (env *testEnv) initSession(t *testing.T, amount uint64, merchant string) *api.Session {
	t.Helper()
	resp, err := env.payer.escrow.InitSession(context.Background(), connect.NewRequest(&api.InitSessionRequest{
		MerchantID:   merchant,
		ReferenceID:  "order-42",
		FiatCurrency: "USD",
		TokenType:    env.mint.String(),
		Amount:       amount,
	}))
	if err != nil {
		t.Fatalf("InitSession failed: %v", err)
	}
	return resp.Msg.Session
}

func (env *testEnv) fundedSession(t *testing.T, amount uint64, merchant string) *api.Session {
	t.Helper()
	s := env.initSession(t, amount, merchant)
	resp, err := env.payer.escrow.Deposit(context.Background(), connect.NewRequest(&api.DepositRequest{SessionID: s.ID}))
	if err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	return resp.Msg.Session
}

func balanceOf(t *testing.T, client apiconnect.LedgerServiceClient, addr string) uint64 {
	t.Helper()
	resp, err := client.GetAccount(context.Background(), connect.NewRequest(&api.GetAccountRequest{Address: addr}))
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	return resp.Msg.Account.Balance
}

// expectCode asserts err is a Connect error with the given code and, when
// kind is set, the matching Escrow-Error-Kind header.
func expectCode(t *testing.T, err error, code connect.Code, kind string) {
	t.Helper()
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error %v, got %v", code, err)
	}
	if connectErr.Code() != code {
		t.Errorf("code: expected %v, got %v (%s)", code, connectErr.Code(), connectErr.Message())
	}
	if kind != "" {
		if got := connectErr.Meta().Get(middleware.ErrorKindHeader); got != kind {
			t.Errorf("kind: expected %q, got %q", kind, got)
		}
	}
}

func TestInitSessionAndRefund(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	s := env.initSession(t, 1000, solana.NewWallet().PublicKey().String())
	if s.Status != "initialized" {
		t.Errorf("status: expected 'initialized', got '%s'", s.Status)
	}
	if s.Payer != env.payer.key.String() {
		t.Errorf("payer: expected %s, got %s", env.payer.key, s.Payer)
	}
	if s.PayerSourceAddress != env.source {
		t.Errorf("source: expected %s, got %s", env.source, s.PayerSourceAddress)
	}

	dep, err := env.payer.escrow.Deposit(ctx, connect.NewRequest(&api.DepositRequest{SessionID: s.ID}))
	if err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if dep.Msg.Session.Status != "funded" || dep.Msg.Session.FundedAt == nil {
		t.Errorf("expected funded session with funded_at, got %+v", dep.Msg.Session)
	}
	if got := balanceOf(t, env.payer.ledger, s.CustodyAddress); got != 1000 {
		t.Errorf("custody: expected 1000, got %d", got)
	}

	ref, err := env.payer.escrow.Refund(ctx, connect.NewRequest(&api.RefundRequest{SessionID: s.ID}))
	if err != nil {
		t.Fatalf("Refund failed: %v", err)
	}
	if ref.Msg.Session.Status != "refunded" {
		t.Errorf("status: expected 'refunded', got '%s'", ref.Msg.Session.Status)
	}
	if got := balanceOf(t, env.payer.ledger, env.source); got != 5000 {
		t.Errorf("source: expected 5000, got %d", got)
	}
	if got := balanceOf(t, env.payer.ledger, s.CustodyAddress); got != 0 {
		t.Errorf("custody: expected 0, got %d", got)
	}
}

func TestInitSessionValidation(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name string
		req  *api.InitSessionRequest
		code connect.Code
	}{
		{"bad mint", &api.InitSessionRequest{MerchantID: "m", TokenType: "nope", Amount: 1}, connect.CodeInvalidArgument},
		{"bad id", &api.InitSessionRequest{ID: "123", MerchantID: "m", TokenType: env.mint.String(), Amount: 1}, connect.CodeInvalidArgument},
		{"zero amount", &api.InitSessionRequest{MerchantID: "m", TokenType: env.mint.String()}, connect.CodeInvalidArgument},
		{"long merchant", &api.InitSessionRequest{MerchantID: strings.Repeat("m", 51), TokenType: env.mint.String(), Amount: 1}, connect.CodeInvalidArgument},
		{"payer for someone else", &api.InitSessionRequest{Payer: env.other.key.String(), MerchantID: "m", TokenType: env.mint.String(), Amount: 1}, connect.CodePermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.payer.escrow.InitSession(ctx, connect.NewRequest(tt.req))
			expectCode(t, err, tt.code, "")
		})
	}

	t.Run("duplicate id", func(t *testing.T) {
		s := env.initSession(t, 100, "merchant")
		_, err := env.payer.escrow.InitSession(ctx, connect.NewRequest(&api.InitSessionRequest{
			ID: s.ID, MerchantID: "merchant", TokenType: env.mint.String(), Amount: 100,
		}))
		expectCode(t, err, connect.CodeAlreadyExists, "conflict")
	})

	t.Run("operator opens for payer", func(t *testing.T) {
		resp, err := env.operator.escrow.InitSession(ctx, connect.NewRequest(&api.InitSessionRequest{
			Payer: env.payer.key.String(), MerchantID: "merchant", TokenType: env.mint.String(), Amount: 100,
		}))
		if err != nil {
			t.Fatalf("InitSession failed: %v", err)
		}
		if resp.Msg.Session.Payer != env.payer.key.String() {
			t.Errorf("payer: expected %s, got %s", env.payer.key, resp.Msg.Session.Payer)
		}
	})
}

func TestDepositErrors(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("double deposit", func(t *testing.T) {
		s := env.fundedSession(t, 1000, "merchant")
		_, err := env.payer.escrow.Deposit(ctx, connect.NewRequest(&api.DepositRequest{SessionID: s.ID}))
		expectCode(t, err, connect.CodeFailedPrecondition, "state")
		if got := balanceOf(t, env.payer.ledger, s.CustodyAddress); got != 1000 {
			t.Errorf("custody: expected 1000, got %d", got)
		}
	})

	t.Run("insufficient funds", func(t *testing.T) {
		s := env.initSession(t, 1_000_000, "merchant")
		_, err := env.payer.escrow.Deposit(ctx, connect.NewRequest(&api.DepositRequest{SessionID: s.ID}))
		expectCode(t, err, connect.CodeFailedPrecondition, "funds")

		got, err := env.payer.escrow.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{SessionID: s.ID}))
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if got.Msg.Session.Status != "initialized" {
			t.Errorf("status: expected 'initialized', got '%s'", got.Msg.Session.Status)
		}
	})

	t.Run("operator cannot sign deposit", func(t *testing.T) {
		s := env.initSession(t, 100, "merchant")
		_, err := env.operator.escrow.Deposit(ctx, connect.NewRequest(&api.DepositRequest{SessionID: s.ID}))
		expectCode(t, err, connect.CodePermissionDenied, "authorization")
	})

	t.Run("another payer cannot fund", func(t *testing.T) {
		s := env.initSession(t, 100, "merchant")
		_, err := env.other.escrow.Deposit(ctx, connect.NewRequest(&api.DepositRequest{SessionID: s.ID}))
		expectCode(t, err, connect.CodePermissionDenied, "authorization")
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := env.payer.escrow.Deposit(ctx, connect.NewRequest(&api.DepositRequest{SessionID: "0b0c7f2e-5d1f-4f7e-9a43-6f1f9f0e8d11"}))
		expectCode(t, err, connect.CodeNotFound, "not_found")
	})
}

func TestSettleDirect(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	merchant := solana.NewWallet().PublicKey()
	dest, err := env.operator.ledger.OpenAccount(ctx, connect.NewRequest(&api.OpenAccountRequest{
		Owner: merchant.String(), Mint: env.mint.String(),
	}))
	if err != nil {
		t.Fatalf("OpenAccount failed: %v", err)
	}

	t.Run("payer cannot settle", func(t *testing.T) {
		s := env.fundedSession(t, 1000, merchant.String())
		_, err := env.payer.escrow.SettleDirect(ctx, connect.NewRequest(&api.SettleDirectRequest{
			SessionID: s.ID, Destination: dest.Msg.Account.Address,
		}))
		expectCode(t, err, connect.CodePermissionDenied, "")
	})

	t.Run("wrong merchant", func(t *testing.T) {
		s := env.fundedSession(t, 1000, solana.NewWallet().PublicKey().String())
		_, err := env.operator.escrow.SettleDirect(ctx, connect.NewRequest(&api.SettleDirectRequest{
			SessionID: s.ID, Destination: dest.Msg.Account.Address,
		}))
		expectCode(t, err, connect.CodePermissionDenied, "authorization")
		if got := balanceOf(t, env.operator.ledger, s.CustodyAddress); got != 1000 {
			t.Errorf("custody: expected 1000, got %d", got)
		}
	})

	t.Run("operator settles to merchant", func(t *testing.T) {
		s := env.fundedSession(t, 1000, merchant.String())
		resp, err := env.operator.escrow.SettleDirect(ctx, connect.NewRequest(&api.SettleDirectRequest{
			SessionID: s.ID, Destination: dest.Msg.Account.Address,
		}))
		if err != nil {
			t.Fatalf("SettleDirect failed: %v", err)
		}
		if resp.Msg.Session.Status != "settled" || resp.Msg.Session.SettledAt == nil {
			t.Errorf("expected settled session with settled_at, got %+v", resp.Msg.Session)
		}
		if got := balanceOf(t, env.operator.ledger, dest.Msg.Account.Address); got != 1000 {
			t.Errorf("merchant: expected 1000, got %d", got)
		}
	})
}

func TestSettlePendingFiatAndPayout(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	s := env.fundedSession(t, 1000, "merchant")

	resp, err := env.operator.escrow.SettlePendingFiat(ctx, connect.NewRequest(&api.SettlePendingFiatRequest{SessionID: s.ID}))
	if err != nil {
		t.Fatalf("SettlePendingFiat failed: %v", err)
	}
	if resp.Msg.Session.Status != "pending_fiat" {
		t.Errorf("status: expected 'pending_fiat', got '%s'", resp.Msg.Session.Status)
	}

	_, err = env.payer.escrow.RecordPayout(ctx, connect.NewRequest(&api.RecordPayoutRequest{SessionID: s.ID, PayoutID: "po-1"}))
	expectCode(t, err, connect.CodePermissionDenied, "")

	payout, err := env.operator.escrow.RecordPayout(ctx, connect.NewRequest(&api.RecordPayoutRequest{SessionID: s.ID, PayoutID: "po-1"}))
	if err != nil {
		t.Fatalf("RecordPayout failed: %v", err)
	}
	if payout.Msg.Session.ExternalPayoutID != "po-1" {
		t.Errorf("payout: expected 'po-1', got '%s'", payout.Msg.Session.ExternalPayoutID)
	}

	_, err = env.payer.escrow.Refund(ctx, connect.NewRequest(&api.RefundRequest{SessionID: s.ID}))
	expectCode(t, err, connect.CodeFailedPrecondition, "state")

	evs, err := env.payer.escrow.ListEvents(ctx, connect.NewRequest(&api.ListEventsRequest{SessionID: s.ID}))
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	wantKinds := []string{"created", "funded", "settled", "payout_recorded"}
	if len(evs.Msg.Events) != len(wantKinds) {
		t.Fatalf("events: expected %d, got %d", len(wantKinds), len(evs.Msg.Events))
	}
	for i, ev := range evs.Msg.Events {
		if ev.Kind != wantKinds[i] {
			t.Errorf("event %d: expected kind %s, got %s", i, wantKinds[i], ev.Kind)
		}
	}
	if last := evs.Msg.Events[3]; last.Status != "pending_fiat" || last.PrevHash != evs.Msg.Events[2].Hash {
		t.Errorf("unexpected last event %+v", last)
	}
}

func TestSessionVisibility(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	s := env.initSession(t, 100, "merchant")

	_, err := env.other.escrow.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{SessionID: s.ID}))
	expectCode(t, err, connect.CodePermissionDenied, "authorization")

	_, err = env.anon.escrow.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{SessionID: s.ID}))
	expectCode(t, err, connect.CodeUnauthenticated, "")

	if _, err := env.operator.escrow.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{SessionID: s.ID})); err != nil {
		t.Errorf("operator GetSession failed: %v", err)
	}

	t.Run("list own sessions", func(t *testing.T) {
		env.initSession(t, 200, "merchant")
		resp, err := env.payer.escrow.ListSessions(ctx, connect.NewRequest(&api.ListSessionsRequest{}))
		if err != nil {
			t.Fatalf("ListSessions failed: %v", err)
		}
		if len(resp.Msg.Sessions) != 2 {
			t.Errorf("sessions: expected 2, got %d", len(resp.Msg.Sessions))
		}

		other, err := env.other.escrow.ListSessions(ctx, connect.NewRequest(&api.ListSessionsRequest{}))
		if err != nil {
			t.Fatalf("ListSessions failed: %v", err)
		}
		if len(other.Msg.Sessions) != 0 {
			t.Errorf("sessions: expected 0, got %d", len(other.Msg.Sessions))
		}

		_, err = env.other.escrow.ListSessions(ctx, connect.NewRequest(&api.ListSessionsRequest{Payer: env.payer.key.String()}))
		expectCode(t, err, connect.CodePermissionDenied, "")
	})

	t.Run("expired listing is operator only", func(t *testing.T) {
		_, err := env.payer.escrow.ListSessions(ctx, connect.NewRequest(&api.ListSessionsRequest{ExpiredOnly: true}))
		expectCode(t, err, connect.CodePermissionDenied, "")

		resp, err := env.operator.escrow.ListSessions(ctx, connect.NewRequest(&api.ListSessionsRequest{ExpiredOnly: true}))
		if err != nil {
			t.Fatalf("ListSessions failed: %v", err)
		}
		if len(resp.Msg.Sessions) != 0 {
			t.Errorf("expected no expired sessions yet, got %d", len(resp.Msg.Sessions))
		}
	})
}

func TestGetPaymentLink(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	s := env.initSession(t, 1_500_000, "merchant")
	resp, err := env.payer.escrow.GetPaymentLink(ctx, connect.NewRequest(&api.GetPaymentLinkRequest{
		SessionID: s.ID, Label: "Coffee Shop", Message: "Thanks!",
	}))
	if err != nil {
		t.Fatalf("GetPaymentLink failed: %v", err)
	}

	u, err := url.Parse(resp.Msg.URL)
	if err != nil {
		t.Fatalf("invalid link %q: %v", resp.Msg.URL, err)
	}
	if u.Scheme != "solana" || u.Opaque != s.SettlementAuthority {
		t.Errorf("recipient: expected solana:%s, got %s", s.SettlementAuthority, resp.Msg.URL)
	}
	q := u.Query()
	checks := map[string]string{
		"amount":    "1.5",
		"spl-token": env.mint.String(),
		"reference": s.Address,
		"label":     "Coffee Shop",
		"message":   "Thanks!",
		"memo":      "order-42",
	}
	for key, want := range checks {
		if got := q.Get(key); got != want {
			t.Errorf("%s: expected %q, got %q", key, want, got)
		}
	}

	funded := env.fundedSession(t, 100, "merchant")
	_, err = env.payer.escrow.GetPaymentLink(ctx, connect.NewRequest(&api.GetPaymentLinkRequest{SessionID: funded.ID}))
	expectCode(t, err, connect.CodeFailedPrecondition, "state")
}

func TestLedgerService(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("payer cannot credit", func(t *testing.T) {
		_, err := env.payer.ledger.Credit(ctx, connect.NewRequest(&api.CreditRequest{Address: env.source, Amount: 1}))
		expectCode(t, err, connect.CodePermissionDenied, "")
	})

	t.Run("payer opens only own account", func(t *testing.T) {
		_, err := env.payer.ledger.OpenAccount(ctx, connect.NewRequest(&api.OpenAccountRequest{
			Owner: env.other.key.String(), Mint: env.mint.String(),
		}))
		expectCode(t, err, connect.CodePermissionDenied, "")
	})

	t.Run("duplicate account", func(t *testing.T) {
		_, err := env.payer.ledger.OpenAccount(ctx, connect.NewRequest(&api.OpenAccountRequest{Mint: env.mint.String()}))
		expectCode(t, err, connect.CodeAlreadyExists, "conflict")
	})

	t.Run("custody cannot be credited", func(t *testing.T) {
		sess := env.fundedSession(t, 1000, "merchant")
		_, err := env.operator.ledger.Credit(ctx, connect.NewRequest(&api.CreditRequest{Address: sess.CustodyAddress, Amount: 500}))
		expectCode(t, err, connect.CodePermissionDenied, "authorization")
		if got := balanceOf(t, env.operator.ledger, sess.CustodyAddress); got != 1000 {
			t.Errorf("custody: expected 1000, got %d", got)
		}

		if _, err := env.payer.escrow.Refund(ctx, connect.NewRequest(&api.RefundRequest{SessionID: sess.ID})); err != nil {
			t.Fatalf("Refund failed: %v", err)
		}
		if got := balanceOf(t, env.operator.ledger, sess.CustodyAddress); got != 0 {
			t.Errorf("custody after refund: expected 0, got %d", got)
		}
	})

	t.Run("settlement authority cannot hold opened accounts", func(t *testing.T) {
		sess := env.initSession(t, 100, "merchant")
		_, err := env.operator.ledger.OpenAccount(ctx, connect.NewRequest(&api.OpenAccountRequest{
			Owner: sess.SettlementAuthority, Mint: solana.NewWallet().PublicKey().String(),
		}))
		expectCode(t, err, connect.CodePermissionDenied, "authorization")
	})

	t.Run("credit zero", func(t *testing.T) {
		_, err := env.operator.ledger.Credit(ctx, connect.NewRequest(&api.CreditRequest{Address: env.source}))
		expectCode(t, err, connect.CodeInvalidArgument, "validation")
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := env.payer.ledger.GetAccount(ctx, connect.NewRequest(&api.GetAccountRequest{Address: solana.NewWallet().PublicKey().String()}))
		expectCode(t, err, connect.CodeNotFound, "not_found")
	})
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   uint64
		decimals uint8
		want     string
	}{
		{1_500_000, 6, "1.5"},
		{1000, 6, "0.001"},
		{1, 9, "0.000000001"},
		{2_000_000, 6, "2"},
		{0, 6, "0"},
		{42, 0, "42"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.amount, tt.decimals); got != tt.want {
			t.Errorf("FormatAmount(%d, %d): expected %q, got %q", tt.amount, tt.decimals, tt.want, got)
		}
	}
}
