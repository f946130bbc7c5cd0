package mongostore_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/teamnames/pkg/mongo"
	"github.com/dmitrymomot/teamnames/pkg/teamname"
	"github.com/dmitrymomot/teamnames/pkg/teamname/mongostore"
	"github.com/dmitrymomot/teamnames/pkg/teamname/storetest"
)

func TestStore(t *testing.T) {
	url := os.Getenv("TEAMNAME_TEST_MONGO_URL")
	if url == "" {
		t.Skip("TEAMNAME_TEST_MONGO_URL not set")
	}

	ctx := context.Background()
	db, err := mongo.NewWithDatabase(ctx, mongo.Config{ConnectionURL: url, RetryAttempts: 1}, "teamnames_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Client().Disconnect(context.Background()) })
	require.NoError(t, mongo.Healthcheck(db.Client())(ctx))

	store := mongostore.New(db, "team_names_"+uuid.NewString()[:8])
	require.NoError(t, store.EnsureIndexes(ctx))
	require.NoError(t, store.EnsureIndexes(ctx), "indexes are idempotent")

	storetest.Run(t, func(t *testing.T) teamname.Store {
		return store
	})
}

func TestNewPanicsOnNilDatabase(t *testing.T) {
	assert.Panics(t, func() { mongostore.New(nil, "") })
}
