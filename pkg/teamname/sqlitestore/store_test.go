package sqlitestore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/teamnames/pkg/lexicon"
	"github.com/dmitrymomot/teamnames/pkg/teamname"
	"github.com/dmitrymomot/teamnames/pkg/teamname/sqlitestore"
	"github.com/dmitrymomot/teamnames/pkg/teamname/storetest"
)

func openStore(t *testing.T, path string) *sqlitestore.Store {
	t.Helper()
	s, err := sqlitestore.Open(context.Background(), sqlitestore.Config{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) teamname.Store {
		return openStore(t, filepath.Join(t.TempDir(), "teamnames.db"))
	})
}

func TestReopenKeepsReservations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "teamnames.db")

	lex, err := lexicon.Parse([]byte(`{"adjectives": ["Solo"], "nouns": ["Act"]}`))
	require.NoError(t, err)

	first := openStore(t, path)
	res, err := teamname.New(lex, first).Reserve(ctx, "quiz")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := openStore(t, path)
	require.NoError(t, second.Ping(ctx))

	svc := teamname.New(lex, second)
	conf, ok, err := svc.Confirm(ctx, "quiz", res.Token, res.Name)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "SoloAct", conf.Name)

	next, err := svc.Reserve(ctx, "quiz")
	require.NoError(t, err)
	assert.True(t, next.Fallback)
}

func TestServiceExpiry(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "teamnames.db"))

	lex, err := lexicon.Parse([]byte(`{"adjectives": ["Solo"], "nouns": ["Act"]}`))
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	svc := teamname.New(lex, store, teamname.WithClock(func() time.Time { return now }))

	first, err := svc.Reserve(ctx, "quiz")
	require.NoError(t, err)

	now = now.Add(teamname.DefaultTTL + time.Second)
	again, err := svc.Reserve(ctx, "quiz")
	require.NoError(t, err)
	assert.Equal(t, first.Name, again.Name)
	assert.False(t, again.Fallback)

	history, err := svc.History(ctx, "quiz", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, teamname.StatusReserved, history[0].Status())
	assert.Equal(t, teamname.StatusReleased, history[1].Status())
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := sqlitestore.Open(context.Background(), sqlitestore.Config{})
	assert.Error(t, err)
}
