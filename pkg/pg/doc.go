// Package pg connects to PostgreSQL with pgx/v5 and applies goose
// migrations from an fs.FS.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.MigrateFS(ctx, pool, migrations, "migrations", cfg.MigrationsTable, log); err != nil {
//		return err
//	}
//
// Connect retries with a delay that grows with each attempt and stops early
// when the context is cancelled. IsDuplicateKeyError classifies unique
// constraint violations for callers that treat them as conflicts.
package pg
