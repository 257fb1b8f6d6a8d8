package repos

import (
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"cardauction/internal/domain"
)

// tsLayout is fixed width so TEXT timestamps sort chronologically.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

func toTS(t time.Time) string { return t.UTC().Format(tsLayout) }

func fromTS(s string) time.Time {
	t, err := time.Parse(tsLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, domain.StorageErr("open db", err)
	}
	// One connection: keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, domain.StorageErr("ping db", err)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, domain.StorageErr("ensure schema", err)
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA busy_timeout = 5000;

-- Auctions
CREATE TABLE IF NOT EXISTS auctions(
  id TEXT PRIMARY KEY,
  item_id INTEGER NOT NULL CHECK (item_id BETWEEN 1 AND 72),
  collector_id INTEGER NULL CHECK (collector_id IS NULL OR collector_id BETWEEN 1 AND 30),
  status TEXT NOT NULL CHECK (status IN ('pending','active','completed')),
  lang TEXT NOT NULL DEFAULT 'en',
  matched_attributes TEXT NOT NULL DEFAULT '[]',
  total_value INTEGER NOT NULL DEFAULT 0 CHECK (total_value >= 0),
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_auctions_created_at ON auctions(created_at);
-- at most one active auction
CREATE UNIQUE INDEX IF NOT EXISTS idx_auctions_one_active ON auctions(status) WHERE status = 'active';

-- Customization overrides
CREATE TABLE IF NOT EXISTS customizations(
  kind TEXT NOT NULL CHECK (kind IN ('item','collector')),
  card_id INTEGER NOT NULL,
  title_en TEXT NOT NULL DEFAULT '',
  title_zh TEXT NOT NULL DEFAULT '',
  description_en TEXT NOT NULL DEFAULT '',
  description_zh TEXT NOT NULL DEFAULT '',
  updated_at TEXT NOT NULL,
  PRIMARY KEY(kind, card_id)
);
`
	_, err := db.Exec(schema)
	return err
}
