// Package history persists monitor passes and their alerts in a local
// SQLite database. The parsing/correlation core stays stateless; only
// this integration layer touches storage.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS passes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at TIMESTAMP NOT NULL,
	disks      INTEGER NOT NULL,
	alerts     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS alerts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	pass_id    INTEGER NOT NULL REFERENCES passes(id) ON DELETE CASCADE,
	message    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_pass ON alerts(pass_id);
`

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// Alert is one recorded alert line.
type Alert struct {
	ID        int64     `json:"id"`
	PassID    int64     `json:"pass_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Open opens or creates the history database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL mode for better concurrency between the API and the monitor.
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer at a time
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("History database opened")
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordPass stores one monitor pass and its alert lines, returning the
// pass id.
func (s *Store) RecordPass(ctx context.Context, startedAt time.Time, diskCount int, alerts []string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO passes (started_at, disks, alerts) VALUES (?, ?, ?)`,
		startedAt, diskCount, len(alerts))
	if err != nil {
		return 0, fmt.Errorf("failed to insert pass: %w", err)
	}
	passID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read pass id: %w", err)
	}

	now := time.Now()
	for _, msg := range alerts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO alerts (pass_id, message, created_at) VALUES (?, ?, ?)`,
			passID, msg, now); err != nil {
			return 0, fmt.Errorf("failed to insert alert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit pass: %w", err)
	}
	return passID, nil
}

// RecentAlerts returns the newest alert lines, most recent first.
func (s *Store) RecentAlerts(ctx context.Context, limit int) ([]Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pass_id, message, created_at FROM alerts ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var a Alert
		if err := rows.Scan(&a.ID, &a.PassID, &a.Message, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
