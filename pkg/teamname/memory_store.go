package teamname

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore implements Store using in-process maps. Uniqueness holds only
// within one process, so it suits tests, the CLI and single-node setups.
type MemoryStore struct {
	mu     sync.Mutex
	events map[string]*eventRecords
}

type eventRecords struct {
	records []*Record          // insertion order
	active  map[string]*Record // name -> active record
	tokens  map[string]*Record // token -> latest record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[string]*eventRecords)}
}

func (m *MemoryStore) event(eventID string) *eventRecords {
	ev, ok := m.events[eventID]
	if !ok {
		ev = &eventRecords{
			active: make(map[string]*Record),
			tokens: make(map[string]*Record),
		}
		m.events[eventID] = ev
	}
	return ev
}

// Insert adds rec unless its name is already held by an active record.
func (m *MemoryStore) Insert(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev := m.event(rec.EventID)
	if _, taken := ev.active[rec.Name]; taken {
		return ErrConflict
	}
	if prev, ok := ev.tokens[rec.Token]; ok && prev.Active() {
		return ErrConflict
	}

	stored := rec.Clone()
	ev.records = append(ev.records, &stored)
	ev.tokens[stored.Token] = &stored
	if stored.Active() {
		ev.active[stored.Name] = &stored
	}
	return nil
}

// ExpireReserved releases stale unassigned reservations.
func (m *MemoryStore) ExpireReserved(ctx context.Context, eventID string, threshold, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.releaseWhere(eventID, now, func(r *Record) bool {
		return r.AssignedAt == nil && !r.ReservedAt.After(threshold)
	}), nil
}

// FindActiveByToken returns a copy of the active record holding token.
func (m *MemoryStore) FindActiveByToken(ctx context.Context, eventID, token string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.activeByToken(eventID, token)
	if rec == nil {
		return nil, ErrNotFound
	}
	out := rec.Clone()
	return &out, nil
}

// Assign sets AssignedAt on the active record if it is not set yet.
func (m *MemoryStore) Assign(ctx context.Context, eventID, token string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.activeByToken(eventID, token)
	if rec == nil {
		return false, nil
	}
	if rec.AssignedAt == nil {
		rec.AssignedAt = &at
	}
	return true, nil
}

// ReleaseByToken releases the active record holding token.
func (m *MemoryStore) ReleaseByToken(ctx context.Context, eventID, token string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.activeByToken(eventID, token)
	if rec == nil {
		return false, nil
	}
	m.release(eventID, rec, at)
	return true, nil
}

// ReleaseByName releases the active record holding name.
func (m *MemoryStore) ReleaseByName(ctx context.Context, eventID, name string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev, ok := m.events[eventID]
	if !ok {
		return 0, nil
	}
	rec, ok := ev.active[name]
	if !ok {
		return 0, nil
	}
	m.release(eventID, rec, at)
	return 1, nil
}

// ReleaseUnassigned releases every active record that was never assigned.
func (m *MemoryStore) ReleaseUnassigned(ctx context.Context, eventID string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.releaseWhere(eventID, at, func(r *Record) bool {
		return r.AssignedAt == nil
	}), nil
}

// CountActive returns the number of active records for the event.
func (m *MemoryStore) CountActive(ctx context.Context, eventID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev, ok := m.events[eventID]
	if !ok {
		return 0, nil
	}
	return len(ev.active), nil
}

// List returns copies of the event's records, newest first.
func (m *MemoryStore) List(ctx context.Context, eventID string, limit int) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev, ok := m.events[eventID]
	if !ok {
		return []Record{}, nil
	}

	out := make([]Record, 0, len(ev.records))
	for i := len(ev.records) - 1; i >= 0; i-- {
		out = append(out, ev.records[i].Clone())
	}
	// records are appended in insertion order; a stable sort keeps later
	// inserts first among equal timestamps
	slices.SortStableFunc(out, func(a, b Record) int {
		return b.ReservedAt.Compare(a.ReservedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) activeByToken(eventID, token string) *Record {
	ev, ok := m.events[eventID]
	if !ok {
		return nil
	}
	rec, ok := ev.tokens[token]
	if !ok || !rec.Active() {
		return nil
	}
	return rec
}

func (m *MemoryStore) release(eventID string, rec *Record, at time.Time) {
	rec.ReleasedAt = &at
	delete(m.events[eventID].active, rec.Name)
}

func (m *MemoryStore) releaseWhere(eventID string, at time.Time, match func(*Record) bool) int64 {
	ev, ok := m.events[eventID]
	if !ok {
		return 0
	}

	var released int64
	for _, rec := range ev.active {
		if match(rec) {
			rec.ReleasedAt = &at
			delete(ev.active, rec.Name)
			released++
		}
	}
	return released
}
