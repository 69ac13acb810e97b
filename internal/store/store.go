// Package store is the durable key/value layer behind preferences and the
// daily ledger. It is deliberately dumb: two scopes with get/set semantics,
// no rollover or validation logic. SQLite keeps writes atomic per call;
// concurrent writers from separate processes are last-write-wins.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"scrollstop/internal/settings"
)

// ErrNotFound indicates the requested scope has never been written.
var ErrNotFound = errors.New("record not found")

const ledgerDateKey = "daily_block_date"

// Store provides SQLite-backed persistence for both scopes.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes the database at the given path, creating the schema on
// first use.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Single serialized connection: the daemon's ledger writes and a CLI
	// save never interleave mid-transaction within one process.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS preferences (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		data TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS ledger_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS block_counts (
		site TEXT PRIMARY KEY,
		count INTEGER NOT NULL
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// LoadPreferences reads the preferences scope. Returns ErrNotFound when the
// scope has never been seeded.
func (s *Store) LoadPreferences(ctx context.Context) (settings.Preferences, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM preferences WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return settings.Preferences{}, ErrNotFound
	}
	if err != nil {
		return settings.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}
	var prefs settings.Preferences
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return settings.Preferences{}, fmt.Errorf("decode preferences: %w", err)
	}
	return prefs, nil
}

// SavePreferences replaces the preferences scope wholesale.
func (s *Store) SavePreferences(ctx context.Context, prefs settings.Preferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO preferences (id, data) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data`, string(raw))
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// LoadLedger reads the ledger scope: the stored rollover date and the
// per-site block counts. An unseeded ledger returns an empty date and map.
func (s *Store) LoadLedger(ctx context.Context) (string, map[string]int, error) {
	var date string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM ledger_meta WHERE key = ?`, ledgerDateKey).Scan(&date)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", nil, fmt.Errorf("load ledger date: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT site, count FROM block_counts`)
	if err != nil {
		return "", nil, fmt.Errorf("load block counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var site string
		var count int
		if err := rows.Scan(&site, &count); err != nil {
			return "", nil, fmt.Errorf("scan block count: %w", err)
		}
		counts[site] = count
	}
	if err := rows.Err(); err != nil {
		return "", nil, fmt.Errorf("iterate block counts: %w", err)
	}
	return date, counts, nil
}

// SaveLedger replaces the ledger scope wholesale: the date and counts are
// written in one transaction so a reader never sees a date from one day and
// counts from another.
func (s *Store) SaveLedger(ctx context.Context, date string, counts map[string]int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger write: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, ledgerDateKey, date); err != nil {
		return fmt.Errorf("save ledger date: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM block_counts`); err != nil {
		return fmt.Errorf("clear block counts: %w", err)
	}
	for site, count := range counts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO block_counts (site, count) VALUES (?, ?)`, site, count); err != nil {
			return fmt.Errorf("save block count for %s: %w", site, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger write: %w", err)
	}
	return nil
}
