package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// UpdateRecord represents one completed or failed CasaDNS push attempt
type UpdateRecord struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	IPv4      string    `json:"ipv4,omitempty"`
	IPv6      string    `json:"ipv6,omitempty"`
	Status    int       `json:"status,omitempty"`
	Error     string    `json:"error,omitempty"`
}

const schema = `
CREATE TABLE IF NOT EXISTS update_history (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp DATETIME NOT NULL,
	ipv4      TEXT NOT NULL DEFAULT '',
	ipv6      TEXT NOT NULL DEFAULT '',
	status    INTEGER NOT NULL DEFAULT 0,
	error     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_update_history_timestamp ON update_history(timestamp);
`

// Store is an append-only log of update attempts backed by SQLite
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the history database at path
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

// init applies connection pragmas and bootstraps the schema
func (s *Store) init() error {
	pragmas := []struct {
		name  string
		value string
	}{
		{"journal_mode", "WAL"},
		{"synchronous", "NORMAL"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "ON"},
	}

	for _, pragma := range pragmas {
		query := fmt.Sprintf("PRAGMA %s = %s", pragma.name, pragma.value)
		if _, err := s.db.ExecContext(context.Background(), query); err != nil {
			return fmt.Errorf("failed to set %s: %w", pragma.name, err)
		}
	}

	if _, err := s.db.ExecContext(context.Background(), schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	return nil
}

// Record appends one update attempt to the history
func (s *Store) Record(ctx context.Context, rec UpdateRecord) error {
	query := `INSERT INTO update_history (timestamp, ipv4, ipv6, status, error)
		VALUES (?, ?, ?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, query,
		rec.Timestamp.UTC(), rec.IPv4, rec.IPv6, rec.Status, rec.Error); err != nil {
		return fmt.Errorf("failed to record update: %w", err)
	}

	return nil
}

// Recent returns the most recent update attempts, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]UpdateRecord, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	query := `SELECT id, timestamp, ipv4, ipv6, status, error
		FROM update_history ORDER BY timestamp DESC, id DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	var records []UpdateRecord
	for rows.Next() {
		var rec UpdateRecord
		if err := rows.Scan(&rec.ID, &rec.Timestamp,
			&rec.IPv4, &rec.IPv6, &rec.Status, &rec.Error); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	return records, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
