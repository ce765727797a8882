// Package outcomelog keeps a history of per-agent execution outcomes so
// operators can see why an agent did or did not bid. It is observability
// storage, not load-bearing engine state.
package outcomelog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one persisted outcome row.
type Record struct {
	ID        int64
	CycleID   string
	AgentID   string
	AuctionID string
	Kind      string
	Reason    string
	Amount    string
	BidPlaced bool
	Error     string
	CreatedAt time.Time
}

// Store writes and queries outcome history in its own SQLite file.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS bid_outcomes (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    cycle_id    TEXT NOT NULL,
    agent_id    TEXT NOT NULL,
    auction_id  TEXT NOT NULL,
    kind        TEXT NOT NULL,
    reason      TEXT NOT NULL DEFAULT '',
    amount      TEXT NOT NULL DEFAULT '',
    bid_placed  INTEGER NOT NULL DEFAULT 0,
    error       TEXT NOT NULL DEFAULT '',
    created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bid_outcomes_agent ON bid_outcomes(agent_id, created_at);
CREATE INDEX IF NOT EXISTS idx_bid_outcomes_created ON bid_outcomes(created_at);
`

// New opens (and initializes) the outcome database at path.
func New(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("outcome store: path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open outcome store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init outcome store: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Insert writes one cycle's records in a single transaction.
func (s *Store) Insert(ctx context.Context, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("outcome store: begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bid_outcomes (cycle_id, agent_id, auction_id, kind, reason, amount, bid_placed, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("outcome store: prepare: %w", err)
	}
	defer stmt.Close()
	for _, rec := range recs {
		at := rec.CreatedAt
		if at.IsZero() {
			at = time.Now()
		}
		placed := 0
		if rec.BidPlaced {
			placed = 1
		}
		if _, err := stmt.ExecContext(ctx,
			rec.CycleID, rec.AgentID, rec.AuctionID, rec.Kind, rec.Reason,
			rec.Amount, placed, rec.Error, at.Unix()); err != nil {
			tx.Rollback()
			return fmt.Errorf("outcome store: insert: %w", err)
		}
	}
	return tx.Commit()
}

// ListByAgent returns the most recent records for one agent, newest first.
func (s *Store) ListByAgent(ctx context.Context, agentID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cycle_id, agent_id, auction_id, kind, reason, amount, bid_placed, error, created_at
		FROM bid_outcomes WHERE agent_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`, agentID, limit)
	if err != nil {
		return nil, fmt.Errorf("outcome store: list: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListRecent returns the most recent records across all agents, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cycle_id, agent_id, auction_id, kind, reason, amount, bid_placed, error, created_at
		FROM bid_outcomes ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("outcome store: list recent: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// PurgeOlderThan deletes records created before cutoff and returns the count.
func (s *Store) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM bid_outcomes WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("outcome store: purge: %w", err)
	}
	return res.RowsAffected()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var rec Record
		var placed int
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.CycleID, &rec.AgentID, &rec.AuctionID,
			&rec.Kind, &rec.Reason, &rec.Amount, &placed, &rec.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("outcome store: scan: %w", err)
		}
		rec.BidPlaced = placed == 1
		rec.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}
