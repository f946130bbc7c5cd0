package redisstore

import "time"

// Config controls key naming and how long released records are kept.
type Config struct {
	KeyPrefix string `env:"TEAMNAME_REDIS_PREFIX" envDefault:"teamname"`
	// Retention expires a record this long after it is released. Zero keeps
	// released records forever.
	Retention time.Duration `env:"TEAMNAME_REDIS_RETENTION" envDefault:"0s"`
}
