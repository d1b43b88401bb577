package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"curator/internal/config"
)

// SQLiteStore persists records in a single SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS records (
    position INTEGER PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    authors TEXT NOT NULL DEFAULT '',
    year TEXT NOT NULL DEFAULT '',
    doi TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    approved INTEGER NOT NULL DEFAULT 0,
    rejected INTEGER NOT NULL DEFAULT 0,
    feedback TEXT NOT NULL DEFAULT '',
    document_ref TEXT NOT NULL DEFAULT '',
    metadata_json TEXT NOT NULL DEFAULT '{}',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_doi ON records(doi);
`

const recordColumns = `position, title, authors, year, doi, category, approved, rejected, feedback, document_ref, metadata_json`

// Open initializes or connects to the record database at the configured path.
func Open(cfg *config.Config) (*SQLiteStore, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.Paths.StorePath)
}

// OpenPath initializes or connects to the record database at path.
func OpenPath(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// List returns every record in position order.
func (s *SQLiteStore) List(ctx context.Context) ([]*Record, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM records ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get fetches the record at a 1-based position.
func (s *SQLiteStore) Get(ctx context.Context, position int64) (*Record, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE position = ?`, position)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("position %d: %w", position, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// Set overwrites the record at rec.Position.
func (s *SQLiteStore) Set(ctx context.Context, rec *Record) error {
	ctx = ensureContext(ctx)
	metadataJSON, err := marshalMetadata(rec.Metadata)
	if err != nil {
		return &PersistError{Op: "set", Err: err}
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE records
         SET title = ?, authors = ?, year = ?, doi = ?, category = ?,
             approved = ?, rejected = ?, feedback = ?, document_ref = ?,
             metadata_json = ?, updated_at = ?
         WHERE position = ?`,
		rec.Title,
		rec.Authors,
		rec.Year,
		rec.DOI,
		rec.Category,
		boolToInt(rec.Approved),
		boolToInt(rec.Rejected),
		rec.Feedback,
		rec.DocumentRef,
		metadataJSON,
		timestamp(),
		rec.Position,
	)
	if err != nil {
		return &PersistError{Op: "set", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &PersistError{Op: "set", Err: err}
	}
	if affected == 0 {
		return fmt.Errorf("position %d: %w", rec.Position, ErrNotFound)
	}
	return nil
}

// Append adds a record at the next position and returns that position.
func (s *SQLiteStore) Append(ctx context.Context, rec *Record) (int64, error) {
	ctx = ensureContext(ctx)
	metadataJSON, err := marshalMetadata(rec.Metadata)
	if err != nil {
		return 0, &PersistError{Op: "append", Err: err}
	}

	var position int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) + 1 FROM records`).Scan(&position); err != nil {
			return err
		}
		now := timestamp()
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO records (
                position, title, authors, year, doi, category,
                approved, rejected, feedback, document_ref, metadata_json,
                created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			position,
			rec.Title,
			rec.Authors,
			rec.Year,
			rec.DOI,
			rec.Category,
			boolToInt(rec.Approved),
			boolToInt(rec.Rejected),
			rec.Feedback,
			rec.DocumentRef,
			metadataJSON,
			now,
			now,
		)
		return err
	})
	if err != nil {
		return 0, &PersistError{Op: "append", Err: err}
	}
	rec.Position = position
	return position, nil
}

// Delete removes the record at a position and shifts later records down one.
func (s *SQLiteStore) Delete(ctx context.Context, position int64) error {
	ctx = ensureContext(ctx)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM records WHERE position = ?`, position)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("position %d: %w", position, ErrNotFound)
		}

		rows, err := tx.QueryContext(ctx, `SELECT position FROM records WHERE position > ? ORDER BY position`, position)
		if err != nil {
			return err
		}
		var shifted []int64
		for rows.Next() {
			var p int64
			if err := rows.Scan(&p); err != nil {
				rows.Close()
				return err
			}
			shifted = append(shifted, p)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		// Shift ascending so each target slot is already vacant.
		now := timestamp()
		for _, p := range shifted {
			if _, err := tx.ExecContext(ctx, `UPDATE records SET position = ?, updated_at = ? WHERE position = ?`, p-1, now, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return &PersistError{Op: "delete", Err: err}
	}
	return nil
}

// Persist forces WAL content into the main database file.
func (s *SQLiteStore) Persist(ctx context.Context) error {
	ctx = ensureContext(ctx)
	if _, err := s.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return &PersistError{Op: "checkpoint", Err: err}
	}
	return nil
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}

func (s *SQLiteStore) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec          Record
		approved     int
		rejected     int
		metadataJSON string
	)
	if err := row.Scan(
		&rec.Position,
		&rec.Title,
		&rec.Authors,
		&rec.Year,
		&rec.DOI,
		&rec.Category,
		&approved,
		&rejected,
		&rec.Feedback,
		&rec.DocumentRef,
		&metadataJSON,
	); err != nil {
		return nil, err
	}
	rec.Approved = approved != 0
	rec.Rejected = rejected != 0
	if metadataJSON != "" && metadataJSON != "{}" {
		if err := json.Unmarshal([]byte(metadataJSON), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for position %d: %w", rec.Position, err)
		}
	}
	return &rec, nil
}

func marshalMetadata(metadata map[string]string) (string, error) {
	if len(metadata) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return string(data), nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
