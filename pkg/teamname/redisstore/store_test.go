package redisstore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/teamnames/pkg/lexicon"
	"github.com/dmitrymomot/teamnames/pkg/redis"
	"github.com/dmitrymomot/teamnames/pkg/teamname"
	"github.com/dmitrymomot/teamnames/pkg/teamname/redisstore"
	"github.com/dmitrymomot/teamnames/pkg/teamname/storetest"
)

func newStore(t *testing.T) *redisstore.Store {
	t.Helper()
	return newStoreWithConfig(t, redisstore.Config{})
}

func newStoreWithConfig(t *testing.T, cfg redisstore.Config) *redisstore.Store {
	t.Helper()
	url := os.Getenv("TEAMNAME_TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEAMNAME_TEST_REDIS_URL not set")
	}

	client, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: url, RetryAttempts: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, redis.Healthcheck(client)(context.Background()))

	cfg.KeyPrefix = "teamname-test-" + uuid.NewString()
	return redisstore.New(client, cfg)
}

func TestStore(t *testing.T) {
	store := newStore(t)
	storetest.Run(t, func(t *testing.T) teamname.Store {
		return store
	})
}

func TestServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Ping(ctx))

	lex, err := lexicon.Parse([]byte(`{"adjectives": ["Solo"], "nouns": ["Act"]}`))
	require.NoError(t, err)
	svc := teamname.New(lex, store)

	res, err := svc.Reserve(ctx, "quiz")
	require.NoError(t, err)
	assert.Equal(t, "SoloAct", res.Name)
	assert.Zero(t, res.Remaining)

	conf, ok, err := svc.Confirm(ctx, "quiz", res.Token, "soloact")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, conf.Fallback)

	n, err := svc.ResetEvent(ctx, "quiz")
	require.NoError(t, err)
	assert.Zero(t, n)

	history, err := svc.History(ctx, "quiz", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, teamname.StatusAssigned, history[0].Status())
}

func TestRetention(t *testing.T) {
	ctx := context.Background()
	store := newStoreWithConfig(t, redisstore.Config{Retention: 50 * time.Millisecond})
	now := time.Now().UTC()

	for _, name := range []string{"SwiftFox", "BoldOwl"} {
		require.NoError(t, store.Insert(ctx, teamname.Record{
			ID:             uuid.New(),
			EventID:        "quiz",
			Name:           name,
			LexiconVersion: 1,
			Token:          name + "-token",
			ReservedAt:     now,
		}))
	}

	ok, err := store.ReleaseByToken(ctx, "quiz", "SwiftFox-token", now)
	require.NoError(t, err)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		history, err := store.List(ctx, "quiz", 0)
		return err == nil && len(history) == 1 && history[0].Name == "BoldOwl"
	}, 2*time.Second, 20*time.Millisecond)

	rec, err := store.FindActiveByToken(ctx, "quiz", "BoldOwl-token")
	require.NoError(t, err)
	assert.Equal(t, "BoldOwl", rec.Name)
}

func TestNewPanicsOnNilClient(t *testing.T) {
	assert.Panics(t, func() { redisstore.New(nil, redisstore.Config{}) })
}
