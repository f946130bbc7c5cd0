package teamname

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a reservation record.
type Status string

const (
	StatusReserved Status = "reserved"
	StatusAssigned Status = "assigned"
	StatusReleased Status = "released"
)

// Record is a single name reservation as persisted by a Store.
type Record struct {
	ID             uuid.UUID  `json:"id"`
	EventID        string     `json:"event_id"`
	Name           string     `json:"name"`
	LexiconVersion int        `json:"lexicon_version"`
	Token          string     `json:"token"`
	Fallback       bool       `json:"fallback"`
	ReservedAt     time.Time  `json:"reserved_at"`
	AssignedAt     *time.Time `json:"assigned_at,omitempty"`
	ReleasedAt     *time.Time `json:"released_at,omitempty"`
}

// Status derives the lifecycle state from the timestamps.
func (r Record) Status() Status {
	switch {
	case r.ReleasedAt != nil:
		return StatusReleased
	case r.AssignedAt != nil:
		return StatusAssigned
	default:
		return StatusReserved
	}
}

// Active reports whether the record still holds its name.
func (r Record) Active() bool {
	return r.ReleasedAt == nil
}

// Clone returns a deep copy so callers cannot mutate store-owned timestamps.
func (r Record) Clone() Record {
	if r.AssignedAt != nil {
		t := *r.AssignedAt
		r.AssignedAt = &t
	}
	if r.ReleasedAt != nil {
		t := *r.ReleasedAt
		r.ReleasedAt = &t
	}
	return r
}

// Reservation is the result of a successful Reserve call.
type Reservation struct {
	Name           string    `json:"name"`
	Token          string    `json:"token"`
	ExpiresAt      time.Time `json:"expires_at"`
	LexiconVersion int       `json:"lexicon_version"`
	Total          int       `json:"total"`
	Remaining      int       `json:"remaining"`
	Fallback       bool      `json:"fallback"`
}

// Confirmation describes a confirmed reservation.
type Confirmation struct {
	Name       string    `json:"name"`
	Fallback   bool      `json:"fallback"`
	AssignedAt time.Time `json:"assigned_at"`
}

// Inventory reports capacity of the filtered name space for one event.
type Inventory struct {
	Total     int `json:"total"`
	Reserved  int `json:"reserved"`
	Available int `json:"available"`
}
