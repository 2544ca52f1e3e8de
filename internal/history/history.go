// Package history keeps a SQLite log of board builds so past runs can be
// listed with `kixport history`.
package history

import (
	"context"
	"time"
)

// Status values stored for a board build.
const (
	StatusSuccess  = "success"
	StatusFailed   = "failed"
	StatusCanceled = "canceled"
)

// Entry is one recorded board build.
type Entry struct {
	ID        int64
	RunID     string
	Board     string
	Version   string
	Commit    string
	Status    string
	StartedAt time.Time
	Duration  time.Duration
	Error     string
}

// Query filters List results. Zero values mean no filter; Limit <= 0 returns
// every row.
type Query struct {
	Board string
	Limit int
}

// Store persists and lists board build entries.
type Store interface {
	// Record appends an entry.
	Record(ctx context.Context, e Entry) error

	// List returns entries newest first.
	List(ctx context.Context, q Query) ([]Entry, error)

	// Close releases the underlying database.
	Close() error
}
