package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: accounts must be created BEFORE sessions due to the custody foreign key.
//
// Keys, mints and addresses are stored as base58 text. Amounts and balances
// are INTEGER; the engine rejects values above math.MaxInt64.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    address TEXT PRIMARY KEY,
    owner TEXT NOT NULL,
    mint TEXT NOT NULL,
    balance INTEGER NOT NULL CHECK (balance >= 0),
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    address TEXT NOT NULL UNIQUE,
    session_bump INTEGER NOT NULL,
    payer TEXT NOT NULL,
    merchant_id TEXT NOT NULL,
    reference_id TEXT NOT NULL,
    fiat_currency TEXT NOT NULL,
    merchant_bank TEXT NOT NULL,
    token_type TEXT NOT NULL,
    amount INTEGER NOT NULL CHECK (amount > 0),
    custody_address TEXT NOT NULL,
    payer_source_address TEXT NOT NULL,
    settlement_authority TEXT NOT NULL,
    settlement_bump INTEGER NOT NULL,
    status INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    expiry_at INTEGER NOT NULL,
    funded_at INTEGER,
    settled_at INTEGER,
    external_payout_id TEXT,
    FOREIGN KEY (custody_address) REFERENCES accounts(address)
);

CREATE TABLE IF NOT EXISTS events (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    payload BLOB NOT NULL,
    prev_hash BLOB,
    hash BLOB NOT NULL,
    created_at INTEGER NOT NULL,
    published_at INTEGER,
    FOREIGN KEY (session_id) REFERENCES sessions(id)
);

CREATE INDEX IF NOT EXISTS idx_sessions_payer ON sessions(payer, created_at);
CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_custody ON sessions(custody_address);
CREATE INDEX IF NOT EXISTS idx_sessions_status_expiry ON sessions(status, expiry_at);
CREATE INDEX IF NOT EXISTS idx_events_session_id ON events(session_id, seq);
CREATE INDEX IF NOT EXISTS idx_events_published_at ON events(published_at, seq);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
