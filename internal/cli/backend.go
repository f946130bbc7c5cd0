package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/teamnames/pkg/config"
	"github.com/dmitrymomot/teamnames/pkg/mongo"
	"github.com/dmitrymomot/teamnames/pkg/pg"
	"github.com/dmitrymomot/teamnames/pkg/redis"
	"github.com/dmitrymomot/teamnames/pkg/teamname"
	"github.com/dmitrymomot/teamnames/pkg/teamname/mongostore"
	"github.com/dmitrymomot/teamnames/pkg/teamname/pgstore"
	"github.com/dmitrymomot/teamnames/pkg/teamname/redisstore"
	"github.com/dmitrymomot/teamnames/pkg/teamname/sqlitestore"
)

// ErrUnknownStore is returned for an unsupported TEAMNAME_STORE value.
var ErrUnknownStore = errors.New("unknown store backend")

// backend bundles a store with its lifecycle hooks.
type backend struct {
	name    string
	store   teamname.Store
	migrate func(context.Context) error
	health  func(context.Context) error
	close   func() error
}

func nop(context.Context) error { return nil }

func staticBackend(name string, store teamname.Store) *backend {
	return &backend{
		name:    name,
		store:   store,
		migrate: nop,
		health:  nop,
		close:   func() error { return nil },
	}
}

func openBackend(ctx context.Context, kind string, log *slog.Logger) (*backend, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "memory":
		return staticBackend("memory", teamname.NewMemoryStore()), nil

	case "sqlite":
		var cfg sqlitestore.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		s, err := sqlitestore.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &backend{
			name:    "sqlite",
			store:   s,
			migrate: nop, // Open applies migrations
			health:  s.Ping,
			close:   s.Close,
		}, nil

	case "postgres", "pg":
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &backend{
			name:  "postgres",
			store: pgstore.New(pool),
			migrate: func(ctx context.Context) error {
				return pgstore.Migrate(ctx, pool, cfg.MigrationsTable, log)
			},
			health: pg.Healthcheck(pool),
			close: func() error {
				pool.Close()
				return nil
			},
		}, nil

	case "redis":
		var cfg redis.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		var storeCfg redisstore.Config
		if err := config.Load(&storeCfg); err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &backend{
			name:    "redis",
			store:   redisstore.New(client, storeCfg),
			migrate: nop,
			health:  redis.Healthcheck(client),
			close:   client.Close,
		}, nil

	case "mongo", "mongodb":
		var cfg mongo.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		db, err := mongo.NewWithDatabase(ctx, cfg, cfg.Database)
		if err != nil {
			return nil, err
		}
		store := mongostore.New(db, "")
		return &backend{
			name:    "mongo",
			store:   store,
			migrate: store.EnsureIndexes,
			health:  mongo.Healthcheck(db.Client()),
			close: func() error {
				return db.Client().Disconnect(context.Background())
			},
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownStore, kind)
}
