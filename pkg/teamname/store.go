package teamname

import (
	"context"
	"time"
)

// Store persists reservation records and enforces that, per event, at most
// one active record holds a given name. Timestamps are supplied by the caller.
type Store interface {
	// Insert atomically adds rec unless an active record for the same event
	// already holds rec.Name, in which case it returns ErrConflict.
	Insert(ctx context.Context, rec Record) error

	// ExpireReserved releases active, never-assigned records reserved at or
	// before threshold and returns how many were released.
	ExpireReserved(ctx context.Context, eventID string, threshold, now time.Time) (int64, error)

	// FindActiveByToken returns ErrNotFound when no active record has the token.
	FindActiveByToken(ctx context.Context, eventID, token string) (*Record, error)

	// Assign marks the active record as assigned unless it already is.
	// It reports false when no active record has the token.
	Assign(ctx context.Context, eventID, token string, at time.Time) (bool, error)

	ReleaseByToken(ctx context.Context, eventID, token string, at time.Time) (bool, error)
	ReleaseByName(ctx context.Context, eventID, name string, at time.Time) (int64, error)

	// ReleaseUnassigned releases every active record that was never assigned.
	ReleaseUnassigned(ctx context.Context, eventID string, at time.Time) (int64, error)

	CountActive(ctx context.Context, eventID string) (int, error)

	// List returns the event's records newest first. A non-positive limit
	// returns all of them.
	List(ctx context.Context, eventID string, limit int) ([]Record, error)
}
