// Package mongo connects to MongoDB with retries and exposes a healthcheck
// and error classification helpers for stores built on the official driver.
//
// Configuration comes from MONGODB_* environment variables:
//
//	var cfg mongo.Config
//	if err := config.Load(&cfg); err != nil { ... }
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, cfg.Database)
//	if err != nil { ... }
//	defer db.Client().Disconnect(context.Background())
//
// Connection failures are joined with ErrFailedToConnectToMongo and keep the
// last driver error, so errors.Is works on both.
package mongo
