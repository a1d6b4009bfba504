package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	mdwerror "github.com/msto63/sexpr/foundation/core/error"
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	// Path of the database file; ":memory:" keeps the history in memory
	Path string
}

// DefaultSQLiteConfig returns default configuration
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path: "./data/history.db",
	}
}

// NewSQLiteStore opens (and if necessary creates) the history database
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	dsn := ":memory:"
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, mdwerror.Wrap(err, "failed to create history directory").
				WithCode(mdwerror.CodeDatabaseError).
				WithOperation("store.Open").
				WithDetail("path", cfg.Path)
		}
		dsn = cfg.Path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, dbError(err, "failed to open history database", "store.Open")
	}
	if cfg.Path == ":memory:" {
		// every pooled connection would otherwise see its own database
		db.SetMaxOpenConns(1)
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, dbError(err, "failed to initialize history schema", "store.Open")
	}

	return store, nil
}

// initSchema creates the necessary tables
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversions (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		source TEXT NOT NULL,
		input TEXT NOT NULL,
		sexpr TEXT,
		ok INTEGER NOT NULL,
		nodes INTEGER NOT NULL DEFAULT 0,
		duration_ns INTEGER NOT NULL DEFAULT 0,
		request_id TEXT,
		error_kind TEXT,
		error_message TEXT,
		error_start INTEGER,
		error_end INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_conversions_timestamp ON conversions(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_conversions_source ON conversions(source);
	CREATE INDEX IF NOT EXISTS idx_conversions_ok ON conversions(ok);
	`

	_, err := s.db.Exec(schema)
	return err
}

const selectColumns = `SELECT id, timestamp, source, input, sexpr, ok, nodes, duration_ns,
	request_id, error_kind, error_message, error_start, error_end FROM conversions`

// Record stores one conversion
func (s *SQLiteStore) Record(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.prepare()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversions (id, timestamp, source, input, sexpr, ok, nodes, duration_ns,
			request_id, error_kind, error_message, error_start, error_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Timestamp, string(entry.Source), entry.Input, entry.SExpr, entry.OK,
		entry.Nodes, int64(entry.Duration), entry.RequestID, entry.ErrorKind, entry.ErrorMessage,
		entry.ErrorStart, entry.ErrorEnd)
	if err != nil {
		return dbError(err, "failed to insert history entry", "store.Record")
	}
	return nil
}

// Get returns the entry with id
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, dbError(err, "failed to read history entry", "store.Get")
	}
	return entry, nil
}

// List retrieves entries based on filter criteria
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectColumns + ` WHERE 1=1`
	var args []interface{}

	if filter.Source != "" {
		query += " AND source = ?"
		args = append(args, string(filter.Source))
	}
	if filter.FailedOnly {
		query += " AND ok = 0"
	}
	if !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.Since.UTC())
	}

	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "failed to query history", "store.List")
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, dbError(err, "failed to scan history entry", "store.List")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to iterate history", "store.List")
	}

	return entries, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		entry      Entry
		source     string
		sexpr      sql.NullString
		durationNs int64
		requestID  sql.NullString
		errorKind  sql.NullString
		errorMsg   sql.NullString
		errorStart sql.NullInt64
		errorEnd   sql.NullInt64
	)

	if err := row.Scan(&entry.ID, &entry.Timestamp, &source, &entry.Input, &sexpr, &entry.OK,
		&entry.Nodes, &durationNs, &requestID, &errorKind, &errorMsg, &errorStart, &errorEnd); err != nil {
		return nil, err
	}

	entry.Source = Source(source)
	entry.SExpr = sexpr.String
	entry.Duration = time.Duration(durationNs)
	entry.RequestID = requestID.String
	entry.ErrorKind = errorKind.String
	entry.ErrorMessage = errorMsg.String
	entry.ErrorStart = int(errorStart.Int64)
	entry.ErrorEnd = int(errorEnd.Int64)
	return &entry, nil
}

// Stats returns totals per source and the covered time range
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{BySource: make(map[Source]int64)}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source, COUNT(*), SUM(CASE WHEN ok = 0 THEN 1 ELSE 0 END)
		FROM conversions GROUP BY source
	`)
	if err != nil {
		return nil, dbError(err, "failed to compute history stats", "store.Stats")
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		var total, failed int64
		if err := rows.Scan(&source, &total, &failed); err != nil {
			return nil, dbError(err, "failed to scan history stats", "store.Stats")
		}
		stats.BySource[Source(source)] = total
		stats.Total += total
		stats.Failed += failed
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to iterate history stats", "store.Stats")
	}

	if stats.Total > 0 {
		var oldest, newest time.Time
		if err := s.db.QueryRowContext(ctx, `SELECT timestamp FROM conversions ORDER BY timestamp ASC LIMIT 1`).Scan(&oldest); err != nil {
			return nil, dbError(err, "failed to read oldest entry", "store.Stats")
		}
		if err := s.db.QueryRowContext(ctx, `SELECT timestamp FROM conversions ORDER BY timestamp DESC LIMIT 1`).Scan(&newest); err != nil {
			return nil, dbError(err, "failed to read newest entry", "store.Stats")
		}
		stats.Oldest = oldest
		stats.Newest = newest
	}

	return stats, nil
}

// Prune removes entries older than the specified duration
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).UTC()

	result, err := s.db.ExecContext(ctx, `DELETE FROM conversions WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, dbError(err, "failed to prune history", "store.Prune")
	}
	deleted, _ := result.RowsAffected()
	return deleted, nil
}

// Ping verifies the database connection
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
