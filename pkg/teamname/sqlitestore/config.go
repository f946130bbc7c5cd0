package sqlitestore

import "time"

// Config locates the database file.
type Config struct {
	Path        string        `env:"SQLITE_PATH" envDefault:"teamnames.db"`
	BusyTimeout time.Duration `env:"SQLITE_BUSY_TIMEOUT" envDefault:"5s"`
}
