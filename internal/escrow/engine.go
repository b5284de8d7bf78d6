// Package escrow executes payment session instructions.
//
// Every instruction runs as one store transaction: it loads the session,
// checks the lifecycle edge, moves custody funds at most once through
// ledger.TransferChecked, persists the session and appends one event. A
// failing instruction leaves sessions, balances and the event log unchanged.
package escrow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/mmynk/escrowd/internal/authority"
	"github.com/mmynk/escrowd/internal/events"
	"github.com/mmynk/escrowd/internal/metrics"
	"github.com/mmynk/escrowd/internal/models"
	"github.com/mmynk/escrowd/internal/storage"
)

// DefaultSessionTTL is used when Config.SessionTTL is not positive.
const DefaultSessionTTL = 15 * time.Minute

// Config fixes the addresses every session is derived under.
type Config struct {
	// ProgramID namespaces all derived addresses.
	ProgramID solana.PublicKey
	// BridgeOwner owns the accounts that receive pending-fiat settlements.
	BridgeOwner solana.PublicKey
	// SessionTTL is added to the creation time to compute ExpiryAt.
	SessionTTL time.Duration
}

// Notifier is told after an instruction commits an event.
type Notifier interface {
	Notify()
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMetrics records instruction outcomes into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithNotifier wakes n after each committed instruction.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// Engine runs instructions against a store.
type Engine struct {
	store    storage.Store
	cfg      Config
	now      func() time.Time
	metrics  *metrics.Metrics
	log      *slog.Logger
	notifier Notifier
	locks    *sessionLocks
}

// New creates an Engine.
func New(store storage.Store, cfg Config, opts ...Option) (*Engine, error) {
	if cfg.ProgramID.IsZero() {
		return nil, authority.ErrZeroProgram
	}
	if cfg.BridgeOwner.IsZero() {
		return nil, errors.New("bridge owner is required")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	e := &Engine{
		store: store,
		cfg:   cfg,
		now:   time.Now,
		log:   slog.Default(),
		locks: newSessionLocks(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// BridgeAccount returns the account pending-fiat settlements of mint are paid into.
func (e *Engine) BridgeAccount(mint solana.PublicKey) (solana.PublicKey, error) {
	return authority.TokenAccount(e.cfg.BridgeOwner, mint)
}

// outcome is what an instruction body reports back to run.
type outcome struct {
	session *models.Session
	// moved is "in" or "out" when custody funds changed hands.
	moved string
	// annotated is set when only session metadata changed.
	annotated bool
}

// run executes body in a transaction while holding the session's lock, then
// records the result.
func (e *Engine) run(ctx context.Context, op string, id uuid.UUID, body func(tx storage.Tx) (outcome, error)) (*models.Session, error) {
	start := time.Now()
	unlock := e.locks.lock(id)
	defer unlock()

	var out outcome
	err := e.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		out, err = body(tx)
		return err
	})
	elapsed := time.Since(start)

	if err != nil {
		err = fail(op, err)
		kind := KindOf(err)
		e.metrics.ObserveInstruction(op, kind.String(), elapsed)
		e.log.Warn("instruction rejected", "op", op, "session_id", id, "kind", kind.String(), "error", err)
		return nil, err
	}

	s := out.session
	e.metrics.ObserveInstruction(op, "ok", elapsed)
	if !out.annotated {
		e.metrics.Transition(s.Status.String())
	}
	if out.moved != "" {
		e.metrics.Moved(out.moved, s.Amount)
	}
	e.log.Info("instruction committed",
		"op", op,
		"session_id", s.ID,
		"status", s.Status.String(),
		"amount", s.Amount,
		"duration", elapsed,
	)
	if e.notifier != nil {
		e.notifier.Notify()
	}
	return s, nil
}

// load reads a session inside tx.
func load(ctx context.Context, tx storage.Tx, id uuid.UUID) (*models.Session, error) {
	s, err := tx.GetSession(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// advance moves s to next if the lifecycle allows it.
func advance(s *models.Session, next models.Status) error {
	if !s.Status.CanTransition(next) {
		return fmt.Errorf("session %s is %s, cannot become %s: %w", s.ID, s.Status, next, ErrInvalidPaymentSessionState)
	}
	s.Status = next
	return nil
}

// commit persists s and appends its event.
func commit(ctx context.Context, tx storage.Tx, s *models.Session, kind models.EventKind, at int64) error {
	if err := tx.UpdateSession(ctx, s); err != nil {
		return err
	}
	return appendEvent(ctx, tx, s, kind, at)
}

func appendEvent(ctx context.Context, tx storage.Tx, s *models.Session, kind models.EventKind, at int64) error {
	payload, err := events.Encode(s.Snapshot())
	if err != nil {
		return err
	}
	return tx.AppendEvent(ctx, &models.Event{
		SessionID: s.ID,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: at,
	})
}

// settlement rebuilds the derived authority that owns s's custody account.
func (e *Engine) settlement(s *models.Session) authority.Settlement {
	return authority.Settlement{
		ProgramID: e.cfg.ProgramID,
		Session:   s.Address,
		ID:        s.ID,
		Bump:      s.SettlementAuthorityProof,
	}
}
