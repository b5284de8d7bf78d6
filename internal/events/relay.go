package events

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/escrowd/internal/metrics"
	"github.com/mmynk/escrowd/internal/models"
)

// DefaultStream is the Redis stream events are published to.
const DefaultStream = "escrow:events"

// Source is the part of the store the relay reads from.
type Source interface {
	ListUnpublishedEvents(ctx context.Context, limit int) ([]*models.Event, error)
	MarkPublished(ctx context.Context, seqs []int64, at int64) error
}

// RelayConfig tunes a Relay.
type RelayConfig struct {
	Stream   string
	Interval time.Duration
	Batch    int
}

// Relay copies committed events to a Redis stream in sequence order.
//
// An event is marked published only after XADD succeeded, so a crash between
// the two publishes it again. Consumers deduplicate on the seq field.
type Relay struct {
	source  Source
	rdb     redis.Cmdable
	cfg     RelayConfig
	metrics *metrics.Metrics
	wake    chan struct{}
	now     func() time.Time
}

// NewRelay creates a Relay. m may be nil.
func NewRelay(source Source, rdb redis.Cmdable, cfg RelayConfig, m *metrics.Metrics) *Relay {
	if cfg.Stream == "" {
		cfg.Stream = DefaultStream
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 100
	}
	return &Relay{
		source:  source,
		rdb:     rdb,
		cfg:     cfg,
		metrics: m,
		wake:    make(chan struct{}, 1),
		now:     time.Now,
	}
}

// Notify asks the relay to run a pass soon. It never blocks.
func (r *Relay) Notify() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// PublishPending publishes one batch of unpublished events and returns how
// many were published.
func (r *Relay) PublishPending(ctx context.Context) (int, error) {
	evs, err := r.source.ListUnpublishedEvents(ctx, r.cfg.Batch)
	if err != nil {
		return 0, fmt.Errorf("failed to load unpublished events: %w", err)
	}
	if len(evs) == 0 {
		return 0, nil
	}

	pipe := r.rdb.Pipeline()
	for _, ev := range evs {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: r.cfg.Stream,
			Values: streamValues(ev),
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to publish events: %w", err)
	}

	seqs := make([]int64, len(evs))
	for i, ev := range evs {
		seqs[i] = ev.Seq
	}
	if err := r.source.MarkPublished(ctx, seqs, r.now().Unix()); err != nil {
		return 0, fmt.Errorf("failed to mark events published: %w", err)
	}
	r.metrics.Published(len(evs))
	return len(evs), nil
}

// Run publishes until ctx is cancelled, draining the backlog on every tick
// or notification.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	slog.Info("Event relay started", "stream", r.cfg.Stream, "interval", r.cfg.Interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Event relay stopped")
			return nil
		case <-ticker.C:
		case <-r.wake:
		}
		r.drain(ctx)
	}
}

func (r *Relay) drain(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := r.PublishPending(ctx)
		if err != nil {
			r.metrics.RelayError()
			slog.Error("Event relay pass failed", "error", err)
			return
		}
		if n < r.cfg.Batch {
			return
		}
	}
}

func streamValues(ev *models.Event) map[string]any {
	return map[string]any{
		"seq":        ev.Seq,
		"session_id": ev.SessionID.String(),
		"kind":       string(ev.Kind),
		"payload":    ev.Payload,
		"prev_hash":  hex.EncodeToString(ev.PrevHash),
		"hash":       hex.EncodeToString(ev.Hash),
		"created_at": ev.CreatedAt,
	}
}
