package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteOptions configures the SQLite store.
type SQLiteOptions struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// SQLiteStore persists entries in a local SQLite database.
type SQLiteStore struct {
	db        *sql.DB
	path      string
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	logger    *slog.Logger

	insertStmt *sql.Stmt
	recentStmt *sql.Stmt
	pruneStmt  *sql.Stmt
}

// NewSQLiteStore opens or creates the database at opts.Path and applies
// the schema.
func NewSQLiteStore(opts SQLiteOptions) (*SQLiteStore, error) {
	if opts.Path == "" {
		return nil, newStoreError("sqlite", "open", fmt.Errorf("db path cannot be empty"))
	}
	if opts.BusyTimeout == 0 {
		opts.BusyTimeout = 5 * time.Second
	}

	// busy_timeout is per connection, so it goes in the DSN.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		opts.Path, opts.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, newStoreError("sqlite", "open", err)
	}

	s := &SQLiteStore{
		db:     db,
		path:   opts.Path,
		logger: slog.Default().With("component", "journal.sqlite"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("journal sqlite store initialized",
		"path", opts.Path,
		"busy_timeout", opts.BusyTimeout,
	)
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return newStoreError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return newStoreError("sqlite", "insert_schema_version", err)
	}

	var version sql.NullInt64
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return newStoreError("sqlite", "get_schema_version", err)
	}
	if version.Int64 != SchemaVersion {
		return newStoreError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version.Int64))
	}

	var err error
	if s.insertStmt, err = s.db.Prepare(insertEntry); err != nil {
		return newStoreError("sqlite", "prepare_insert", err)
	}
	if s.recentStmt, err = s.db.Prepare(selectRecent); err != nil {
		return newStoreError("sqlite", "prepare_recent", err)
	}
	if s.pruneStmt, err = s.db.Prepare(deleteBefore); err != nil {
		return newStoreError("sqlite", "prepare_prune", err)
	}
	return nil
}

// Append inserts one entry.
func (s *SQLiteStore) Append(ctx context.Context, e *Entry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	urls, err := json.Marshal(e.AttemptedURLs)
	if err != nil {
		return newStoreError("sqlite", "append", err)
	}

	_, err = s.insertStmt.ExecContext(ctx,
		e.ID, e.RequestID, e.Time.UnixNano(), e.Method, e.Path, e.Operation,
		e.Outcome, e.Status, string(urls), e.Attempts, e.Stripped,
		e.CredentialSource, int64(e.Duration), e.Error,
	)
	if err != nil {
		return newStoreError("sqlite", "append", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A limit of zero or
// less returns every entry.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}

	rows, err := s.recentStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, newStoreError("sqlite", "recent", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var (
			e         Entry
			at        int64
			urls      sql.NullString
			source    sql.NullString
			errText   sql.NullString
			durationN int64
		)
		if err := rows.Scan(&e.ID, &e.RequestID, &at, &e.Method, &e.Path,
			&e.Operation, &e.Outcome, &e.Status, &urls, &e.Attempts,
			&e.Stripped, &source, &durationN, &errText); err != nil {
			return nil, newStoreError("sqlite", "scan", err)
		}
		e.Time = time.Unix(0, at).UTC()
		e.Duration = time.Duration(durationN)
		e.CredentialSource = source.String
		e.Error = errText.String
		if urls.Valid && urls.String != "" && urls.String != "null" {
			if err := json.Unmarshal([]byte(urls.String), &e.AttemptedURLs); err != nil {
				return nil, newStoreError("sqlite", "decode_urls", err)
			}
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, newStoreError("sqlite", "recent", err)
	}
	return out, nil
}

// PruneBefore deletes entries recorded before cutoff.
func (s *SQLiteStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}

	res, err := s.pruneStmt.ExecContext(ctx, cutoff.UnixNano())
	if err != nil {
		return 0, newStoreError("sqlite", "prune", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, newStoreError("sqlite", "prune", err)
	}
	return n, nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.db.PingContext(ctx); err != nil {
		return newStoreError("sqlite", "ping", err)
	}
	return nil
}

// Close closes prepared statements and the database.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true

		for _, stmt := range []*sql.Stmt{s.insertStmt, s.recentStmt, s.pruneStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		err = s.db.Close()
		s.logger.Info("journal sqlite store closed", "path", s.path)
	})
	return err
}
