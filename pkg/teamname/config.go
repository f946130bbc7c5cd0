package teamname

import "time"

const (
	// DefaultTTL is how long an unconfirmed reservation holds its name.
	DefaultTTL = 10 * time.Minute

	// MinTTL is the shortest lease a Service accepts.
	MinTTL = time.Minute

	DefaultFallbackPrefix = "Gast-"
	DefaultMaxBatch       = 10
)

// Config holds allocator configuration
type Config struct {
	// Lexicon is a file path or s3://bucket/key URI; empty uses the built-in lexicon
	Lexicon string `env:"TEAMNAME_LEXICON"`

	// ReservationTTL is clamped to MinTTL
	ReservationTTL time.Duration `env:"TEAMNAME_RESERVATION_TTL" envDefault:"10m"`

	FallbackPrefix string `env:"TEAMNAME_FALLBACK_PREFIX" envDefault:"Gast-"`
	MaxBatch       int    `env:"TEAMNAME_MAX_BATCH" envDefault:"10"`

	SelectionCacheSize int `env:"TEAMNAME_SELECTION_CACHE_SIZE" envDefault:"256"`

	// Store selects the backend: memory, sqlite, postgres, redis or mongo
	Store string `env:"TEAMNAME_STORE" envDefault:"memory"`
}

// DefaultConfig returns default allocator configuration
func DefaultConfig() Config {
	return Config{
		ReservationTTL:     DefaultTTL,
		FallbackPrefix:     DefaultFallbackPrefix,
		MaxBatch:           DefaultMaxBatch,
		SelectionCacheSize: 256,
		Store:              "memory",
	}
}

// normalized fills zero values with defaults and applies the TTL floor.
func (c Config) normalized() Config {
	if c.ReservationTTL <= 0 {
		c.ReservationTTL = DefaultTTL
	}
	if c.ReservationTTL < MinTTL {
		c.ReservationTTL = MinTTL
	}
	if c.FallbackPrefix == "" {
		c.FallbackPrefix = DefaultFallbackPrefix
	}
	if c.MaxBatch <= 0 {
		c.MaxBatch = DefaultMaxBatch
	}
	return c
}
