package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	solana "github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/mmynk/escrowd/internal/models"
	"github.com/mmynk/escrowd/internal/storage"
)

const sessionColumns = `id, address, session_bump, payer, merchant_id, reference_id, fiat_currency,
	merchant_bank, token_type, amount, custody_address, payer_source_address,
	settlement_authority, settlement_bump, status, created_at, expiry_at,
	funded_at, settled_at, external_payout_id`

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return getSession(ctx, s.db, id)
}

// ListSessionsByPayer retrieves all sessions funded by one payer, newest first.
func (s *SQLiteStore) ListSessionsByPayer(ctx context.Context, payer solana.PublicKey) ([]*models.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE payer = ? ORDER BY created_at DESC, id",
		payer.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions by payer: %w", err)
	}
	return collectSessions(rows)
}

// ListExpired retrieves unfunded sessions whose expiry has passed.
func (s *SQLiteStore) ListExpired(ctx context.Context, now int64, limit int) ([]*models.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE status = ? AND expiry_at < ? ORDER BY expiry_at LIMIT ?",
		int(models.StatusInitialized), now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired sessions: %w", err)
	}
	return collectSessions(rows)
}

func createSession(ctx context.Context, q queryer, session *models.Session) error {
	if session.Amount > math.MaxInt64 {
		return fmt.Errorf("amount %d exceeds storage range", session.Amount)
	}

	// Check if session exists, by id or derived address
	var exists int
	err := q.QueryRowContext(ctx,
		"SELECT 1 FROM sessions WHERE id = ? OR address = ?",
		session.ID.String(), session.Address.String(),
	).Scan(&exists)
	if err == nil {
		return fmt.Errorf("session %s: %w", session.ID, storage.ErrConflict)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check session existence: %w", err)
	}

	var payoutID any = nil
	if session.ExternalPayoutID != "" {
		payoutID = session.ExternalPayoutID
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID.String(), session.Address.String(), int(session.SessionBump),
		session.Payer.String(), session.MerchantID, session.ReferenceID, session.FiatCurrency,
		session.MerchantBank, session.TokenType.String(), int64(session.Amount),
		session.CustodyAddress.String(), session.PayerSourceAddress.String(),
		session.SettlementAuthority.String(), int(session.SettlementAuthorityProof),
		int(session.Status), session.CreatedAt, session.ExpiryAt,
		nullInt(session.FundedAt), nullInt(session.SettledAt), payoutID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func getSession(ctx context.Context, q queryer, id uuid.UUID) (*models.Session, error) {
	row := q.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id.String())
	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

func sessionByCustody(ctx context.Context, q queryer, addr solana.PublicKey) (*models.Session, error) {
	row := q.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE custody_address = ?", addr.String())
	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("custody account %s: %w", addr, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session by custody: %w", err)
	}
	return session, nil
}

// updateSession writes the fields a handler may change. Identity, amount and
// addresses are immutable and deliberately absent from the statement.
func updateSession(ctx context.Context, q queryer, session *models.Session) error {
	var payoutID any = nil
	if session.ExternalPayoutID != "" {
		payoutID = session.ExternalPayoutID
	}

	res, err := q.ExecContext(ctx,
		`UPDATE sessions SET status = ?, funded_at = ?, settled_at = ?, external_payout_id = ?
		 WHERE id = ?`,
		int(session.Status), nullInt(session.FundedAt), nullInt(session.SettledAt), payoutID,
		session.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", session.ID, storage.ErrNotFound)
	}
	return nil
}

func collectSessions(rows *sql.Rows) ([]*models.Session, error) {
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

func scanSession(row scanner) (*models.Session, error) {
	var (
		id, address, payer, tokenType     string
		custody, payerSource, settlement  string
		sessionBump, settlementBump, stat int
		amount                            int64
		fundedAt, settledAt               sql.NullInt64
		payoutID                          sql.NullString
		session                           models.Session
	)

	err := row.Scan(
		&id, &address, &sessionBump, &payer, &session.MerchantID, &session.ReferenceID,
		&session.FiatCurrency, &session.MerchantBank, &tokenType, &amount, &custody,
		&payerSource, &settlement, &settlementBump, &stat, &session.CreatedAt,
		&session.ExpiryAt, &fundedAt, &settledAt, &payoutID,
	)
	if err != nil {
		return nil, err
	}

	if session.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("corrupt session id %q: %w", id, err)
	}
	keys := []struct {
		raw string
		dst *solana.PublicKey
	}{
		{address, &session.Address},
		{payer, &session.Payer},
		{tokenType, &session.TokenType},
		{custody, &session.CustodyAddress},
		{payerSource, &session.PayerSourceAddress},
		{settlement, &session.SettlementAuthority},
	}
	for _, k := range keys {
		if *k.dst, err = parseKey(k.raw); err != nil {
			return nil, err
		}
	}

	session.Status = models.Status(stat)
	if !session.Status.Valid() {
		return nil, fmt.Errorf("corrupt status %d on session %s", stat, id)
	}
	session.SessionBump = uint8(sessionBump)
	session.SettlementAuthorityProof = uint8(settlementBump)
	session.Amount = uint64(amount)
	session.FundedAt = intPtr(fundedAt)
	session.SettledAt = intPtr(settledAt)
	if payoutID.Valid {
		session.ExternalPayoutID = payoutID.String
	}

	return &session, nil
}
