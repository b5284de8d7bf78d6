package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/escrowd/internal/events"
	"github.com/mmynk/escrowd/internal/models"
)

const eventColumns = "seq, session_id, kind, payload, prev_hash, hash, created_at, published_at"

// ListEvents retrieves events after a sequence number, oldest first.
func (s *SQLiteStore) ListEvents(ctx context.Context, afterSeq int64, limit int) ([]*models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE seq > ? ORDER BY seq LIMIT ?",
		afterSeq, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return collectEvents(rows)
}

// ListSessionEvents retrieves every event of one session, oldest first.
func (s *SQLiteStore) ListSessionEvents(ctx context.Context, id uuid.UUID) ([]*models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE session_id = ? ORDER BY seq",
		id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list session events: %w", err)
	}
	return collectEvents(rows)
}

// ListUnpublishedEvents retrieves events the relay has not handed off yet, oldest first.
func (s *SQLiteStore) ListUnpublishedEvents(ctx context.Context, limit int) ([]*models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE published_at IS NULL ORDER BY seq LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list unpublished events: %w", err)
	}
	return collectEvents(rows)
}

// MarkPublished stamps events as published. Already published events keep
// their original timestamp.
func (s *SQLiteStore) MarkPublished(ctx context.Context, seqs []int64, at int64) error {
	if len(seqs) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(seqs)), ",")
	args := make([]any, 0, len(seqs)+1)
	args = append(args, at)
	for _, seq := range seqs {
		args = append(args, seq)
	}

	_, err := s.db.ExecContext(ctx,
		"UPDATE events SET published_at = ? WHERE published_at IS NULL AND seq IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to mark events published: %w", err)
	}
	return nil
}

// appendEvent links the event to the current head of the log and inserts it
// with the next sequence number. Writers are serialized by the single
// connection, so the head cannot move under the transaction.
func appendEvent(ctx context.Context, q queryer, event *models.Event) error {
	var (
		headSeq int64
		prev    []byte
	)
	err := q.QueryRowContext(ctx, "SELECT seq, hash FROM events ORDER BY seq DESC LIMIT 1").Scan(&headSeq, &prev)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to read log head: %w", err)
	}

	event.Seq = headSeq + 1
	event.PrevHash = prev
	event.Hash = events.ChainHash(prev, event)

	_, err = q.ExecContext(ctx,
		`INSERT INTO events (seq, session_id, kind, payload, prev_hash, hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.Seq, event.SessionID.String(), string(event.Kind), event.Payload, event.PrevHash, event.Hash, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func collectEvents(rows *sql.Rows) ([]*models.Event, error) {
	defer rows.Close()

	var evs []*models.Event
	for rows.Next() {
		var (
			ev          models.Event
			sessionID   string
			kind        string
			publishedAt sql.NullInt64
		)
		if err := rows.Scan(&ev.Seq, &sessionID, &kind, &ev.Payload, &ev.PrevHash, &ev.Hash,
			&ev.CreatedAt, &publishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		id, err := uuid.Parse(sessionID)
		if err != nil {
			return nil, fmt.Errorf("corrupt event session id %q: %w", sessionID, err)
		}
		ev.SessionID = id
		ev.Kind = models.EventKind(kind)
		ev.PublishedAt = intPtr(publishedAt)
		evs = append(evs, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return evs, nil
}
