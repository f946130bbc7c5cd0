// Package storetest is a conformance suite for teamname.Store
// implementations. Every backend runs the same cases:
//
//	func TestStore(t *testing.T) {
//		storetest.Run(t, func(t *testing.T) teamname.Store {
//			return newStore(t)
//		})
//	}
//
// Each case uses a fresh event ID, so backends backed by a shared database
// do not need to be truncated between cases.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/teamnames/pkg/teamname"
)

// Factory returns the store under test. It may register cleanup on t.
type Factory func(t *testing.T) teamname.Store

// Run executes the conformance suite.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	cases := []struct {
		name string
		fn   func(t *testing.T, s teamname.Store)
	}{
		{"insert and find", testInsertAndFind},
		{"active name conflicts", testConflict},
		{"names are scoped per event", testEventScope},
		{"released name can be reused", testReuseAfterRelease},
		{"expire reserved", testExpireReserved},
		{"assign", testAssign},
		{"release by token", testReleaseByToken},
		{"release by name", testReleaseByName},
		{"release unassigned", testReleaseUnassigned},
		{"count active", testCountActive},
		{"list newest first", testList},
		{"concurrent inserts", testConcurrentInsert},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newStore(t))
		})
	}
}

// baseTime is truncated to milliseconds so every backend round-trips it.
func baseTime() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func newEventID() string {
	return "event-" + uuid.NewString()
}

func newRecord(eventID, name string, at time.Time) teamname.Record {
	return teamname.Record{
		ID:             uuid.New(),
		EventID:        eventID,
		Name:           name,
		LexiconVersion: 2,
		Token:          uuid.NewString(),
		ReservedAt:     at,
	}
}

func insert(t *testing.T, s teamname.Store, rec teamname.Record) teamname.Record {
	t.Helper()
	require.NoError(t, s.Insert(context.Background(), rec))
	return rec
}

func sameTime(t *testing.T, want time.Time, got *time.Time) {
	t.Helper()
	require.NotNil(t, got)
	assert.WithinDuration(t, want, *got, time.Millisecond)
}

func testInsertAndFind(t *testing.T, s teamname.Store) {
	ctx := context.Background()
	event := newEventID()
	now := baseTime()

	rec := newRecord(event, "BraveFox", now)
	rec.Fallback = true
	insert(t, s, rec)

	got, err := s.FindActiveByToken(ctx, event, rec.Token)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, event, got.EventID)
	assert.Equal(t, "BraveFox", got.Name)
	assert.Equal(t, 2, got.LexiconVersion)
	assert.Equal(t, rec.Token, got.Token)
	assert.True(t, got.Fallback)
	assert.WithinDuration(t, now, got.ReservedAt, time.Millisecond)
	assert.Nil(t, got.AssignedAt)
	assert.Nil(t, got.ReleasedAt)
	assert.Equal(t, teamname.StatusReserved, got.Status())

	_, err = s.FindActiveByToken(ctx, event, "missing")
	assert.ErrorIs(t, err, teamname.ErrNotFound)

	_, err = s.FindActiveByToken(ctx, newEventID(), rec.Token)
	assert.ErrorIs(t, err, teamname.ErrNotFound)
}

func testConflict(t *testing.T, s teamname.Store) {
	ctx := context.Background()
	event := newEventID()

	insert(t, s, newRecord(event, "BraveFox", baseTime()))

	err := s.Insert(ctx, newRecord(event, "BraveFox", baseTime()))
	require.ErrorIs(t, err, teamname.ErrConflict)

	n, err := s.CountActive(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func testEventScope(t *testing.T, s teamname.Store) {
	insert(t, s, newRecord(newEventID(), "BraveFox", baseTime()))
	insert(t, s, newRecord(newEventID(), "BraveFox", baseTime()))
}

func testReuseAfterRelease(t *testing.T, s teamname.Store) {
	ctx := context.Background()
	event := newEventID()
	now := baseTime()

	first := insert(t, s, newRecord(event, "BraveFox", now))
	ok, err := s.ReleaseByToken(ctx, event, first.Token, now.Add(time.Second))
	require.NoError(t, err)
	require.True(t, ok)

	second := insert(t, s, newRecord(event, "BraveFox", now.Add(2*time.Second)))

	got, err := s.FindActiveByToken(ctx, event, second.Token)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	_, err = s.FindActiveByToken(ctx, event, first.Token)
	assert.ErrorIs(t, err, teamname.ErrNotFound)
}

func testExpireReserved(t *testing.T, s teamname.Store) {
	ctx := context.Background()
	event := newEventID()
	now := baseTime()

	stale := insert(t, s, newRecord(event, "Stale", now.Add(-20*time.Minute)))
	edge := insert(t, s, newRecord(event, "Edge", now.Add(-10*time.Minute)))
	fresh := insert(t, s, newRecord(event, "Fresh", now.Add(-time.Minute)))
	confirmed := insert(t, s, newRecord(event, "Confirmed", now.Add(-30*time.Minute)))
	other := insert(t, s, newRecord(newEventID(), "Other", now.Add(-30*time.Minute)))

	ok, err := s.Assign(ctx, event, confirmed.Token, now.Add(-29*time.Minute))
	require.NoError(t, err)
	require.True(t, ok)

	n, err := s.ExpireReserved(ctx, event, now.Add(-10*time.Minute), now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	for _, rec := range []teamname.Record{stale, edge} {
		_, err := s.FindActiveByToken(ctx, event, rec.Token)
		assert.ErrorIs(t, err, teamname.ErrNotFound, rec.Name)
	}
	for _, rec := range []teamname.Record{fresh, confirmed} {
		_, err := s.FindActiveByToken(ctx, event, rec.Token)
		assert.NoError(t, err, rec.Name)
	}
	_, err = s.FindActiveByToken(ctx, other.EventID, other.Token)
	assert.NoError(t, err)

	n, err = s.ExpireReserved(ctx, event, now.Add(-10*time.Minute), now)
	require.NoError(t, err)
	assert.Zero(t, n)

	records, err := s.List(ctx, event, 0)
	require.NoError(t, err)
	for _, rec := range records {
		if rec.Name == "Stale" {
			sameTime(t, now, rec.ReleasedAt)
		}
	}
}

func testAssign(t *testing.T, s teamname.Store) {
	ctx := context.Background()
	event := newEventID()
	now := baseTime()

	rec := insert(t, s, newRecord(event, "BraveFox", now))

	ok, err := s.Assign(ctx, event, rec.Token, now.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, ok)

	// second assign keeps the first timestamp
	ok, err = s.Assign(ctx, event, rec.Token, now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.FindActiveByToken(ctx, event, rec.Token)
	require.NoError(t, err)
	sameTime(t, now.Add(time.Second), got.AssignedAt)
	assert.Equal(t, teamname.StatusAssigned, got.Status())

	ok, err = s.Assign(ctx, event, "missing", now)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.ReleaseByToken(ctx, event, rec.Token, now.Add(2*time.Second))
	require.NoError(t, err)
	ok, err = s.Assign(ctx, event, rec.Token, now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testReleaseByToken(t *testing.T, s teamname.Store) {
	ctx := context.Background()
	event := newEventID()
	now := baseTime()

	rec := insert(t, s, newRecord(event, "BraveFox", now))

	ok, err := s.ReleaseByToken(ctx, event, rec.Token, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ReleaseByToken(ctx, event, rec.Token, now)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.ReleaseByToken(ctx, event, "missing", now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testReleaseByName(t *testing.T, s teamname.Store) {
	ctx := context.Background()
	event := newEventID()
	now := baseTime()

	rec := insert(t, s, newRecord(event, "BraveFox", now))
	_, err := s.Assign(ctx, event, rec.Token, now)
	require.NoError(t, err)

	n, err := s.ReleaseByName(ctx, event, "BraveFox", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.ReleaseByName(ctx, event, "BraveFox", now)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.ReleaseByName(ctx, event, "bravefox", now)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func testReleaseUnassigned(t *testing.T, s teamname.Store) {
	ctx := context.Background()
	event := newEventID()
	now := baseTime()

	insert(t, s, newRecord(event, "A", now))
	insert(t, s, newRecord(event, "B", now))
	kept := insert(t, s, newRecord(event, "C", now))
	_, err := s.Assign(ctx, event, kept.Token, now)
	require.NoError(t, err)

	n, err := s.ReleaseUnassigned(ctx, event, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	active, err := s.CountActive(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, 1, active)
}

func testCountActive(t *testing.T, s teamname.Store) {
	ctx := context.Background()
	event := newEventID()
	now := baseTime()

	n, err := s.CountActive(ctx, event)
	require.NoError(t, err)
	assert.Zero(t, n)

	for i := range 3 {
		insert(t, s, newRecord(event, fmt.Sprintf("Team%d", i), now))
	}
	released := insert(t, s, newRecord(event, "Gone", now))
	_, err = s.ReleaseByToken(ctx, event, released.Token, now)
	require.NoError(t, err)

	n, err = s.CountActive(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func testList(t *testing.T, s teamname.Store) {
	ctx := context.Background()
	event := newEventID()
	now := baseTime()

	oldest := insert(t, s, newRecord(event, "Oldest", now.Add(-3*time.Minute)))
	middle := insert(t, s, newRecord(event, "Middle", now.Add(-2*time.Minute)))
	newest := insert(t, s, newRecord(event, "Newest", now.Add(-time.Minute)))

	_, err := s.Assign(ctx, event, middle.Token, now)
	require.NoError(t, err)
	_, err = s.ReleaseByToken(ctx, event, oldest.Token, now)
	require.NoError(t, err)

	records, err := s.List(ctx, event, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Newest", "Middle", "Oldest"}, []string{records[0].Name, records[1].Name, records[2].Name})
	assert.Equal(t, newest.Token, records[0].Token)
	assert.Equal(t, teamname.StatusReserved, records[0].Status())
	assert.Equal(t, teamname.StatusAssigned, records[1].Status())
	assert.Equal(t, teamname.StatusReleased, records[2].Status())

	limited, err := s.List(ctx, event, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "Newest", limited[0].Name)

	empty, err := s.List(ctx, newEventID(), 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testConcurrentInsert(t *testing.T, s teamname.Store) {
	ctx := context.Background()
	event := newEventID()
	now := baseTime()

	const workers = 16
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		conflicts atomic.Int32
		failures  = make(chan error, workers)
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Insert(ctx, newRecord(event, "Contested", now))
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, teamname.ErrConflict):
				conflicts.Add(1)
			default:
				failures <- err
			}
		}()
	}
	wg.Wait()
	close(failures)

	for err := range failures {
		t.Errorf("unexpected insert error: %v", err)
	}
	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(workers-1), conflicts.Load())
}
