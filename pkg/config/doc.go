// Package config loads typed configuration from environment variables using
// github.com/caarlos0/env/v11, with optional .env files read through
// github.com/joho/godotenv.
//
// Every component declares its own struct with env tags (teamname.Config,
// pg.Config, redis.Config, mongo.Config, sqlitestore.Config). Load parses a
// struct type once per process and serves copies afterwards:
//
//	config.MustLoadEnv(".env", ".env.local")
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// ResetCache and ForceReload exist for tests that change the environment.
package config
