// Package store persists users, groups, posts, comments and follow edges in
// SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const DriverName = "sqlite"

type Store struct {
	DB *sql.DB

	// Now stamps created_at columns. Tests replace it to get distinct,
	// predictable timestamps.
	Now func() time.Time
}

func Open(dsn string) (*Store, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return New(db), nil
}

func New(db *sql.DB) *Store {
	return &Store{DB: db, Now: time.Now}
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) now() int64 {
	return s.Now().UTC().UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// isUniqueErr matches SQLite's "UNIQUE constraint failed: table.column".
func isUniqueErr(err error, col string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") && strings.Contains(msg, strings.ToLower(col))
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
