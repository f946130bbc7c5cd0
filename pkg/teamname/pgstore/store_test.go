package pgstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/teamnames/pkg/pg"
	"github.com/dmitrymomot/teamnames/pkg/teamname"
	"github.com/dmitrymomot/teamnames/pkg/teamname/pgstore"
	"github.com/dmitrymomot/teamnames/pkg/teamname/storetest"
)

func TestStore(t *testing.T) {
	url := os.Getenv("TEAMNAME_TEST_PG_URL")
	if url == "" {
		t.Skip("TEAMNAME_TEST_PG_URL not set")
	}

	ctx := context.Background()
	pool, err := pg.Connect(ctx, pg.Config{ConnectionString: url, RetryAttempts: 1})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pgstore.Migrate(ctx, pool, "teamname_schema_migrations", nil))
	require.NoError(t, pg.Healthcheck(pool)(ctx))

	storetest.Run(t, func(t *testing.T) teamname.Store {
		return pgstore.New(pool)
	})
}
