package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"fabledesk/internal/logging"

	_ "modernc.org/sqlite"
)

// Store is the durable side of a project: one SQLite file holding every
// entity plus trash, snapshots, audit, and feature gates. Each table
// keeps the query/sort keys in typed columns and the full entity in a
// json column, so restore-from-trash and snapshots stay lossless.
type Store struct {
	db  *sql.DB
	log *logging.Logger

	// Injection points for tests.
	now   func() time.Time
	newID func() string
}

// Open opens (creating if missing) the project database at path and
// runs the idempotent migration list.
func Open(ctx context.Context, path string, log *logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.Discard()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Concurrent connections on one file fight over the write lock.
	db.SetMaxOpenConns(1)
	s := &Store{
		db:    db,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.seedCapabilities(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// seedCapabilities writes the default gate map for a fresh project.
// An existing row, even one disabling everything, is left alone.
func (s *Store) seedCapabilities(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO app_meta (k, v) VALUES (?, ?)`,
		capabilitiesKey, mustJSON(DefaultCapabilities()))
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func readJSONRows[T any](ctx context.Context, db *sql.DB, query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var js string
		if err := rows.Scan(&js); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func readJSONRow[T any](ctx context.Context, db *sql.DB, kind, id, query string, args ...any) (T, error) {
	var v T
	var js string
	if err := db.QueryRowContext(ctx, query, args...).Scan(&js); err != nil {
		if err == sql.ErrNoRows {
			return v, &NotFoundError{Kind: kind, ID: id}
		}
		return v, err
	}
	if err := json.Unmarshal([]byte(js), &v); err != nil {
		return v, err
	}
	return v, nil
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// Every entity here is a plain struct; marshal cannot fail.
		panic(err)
	}
	return string(b)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// inTx runs fn inside a transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
