package logger

import (
	"log/slog"
	"os"
)

// Environment names a deployment preset.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// ParseEnvironment accepts the full names and the dev/stage/prod short forms.
// Anything else is treated as development.
func ParseEnvironment(s string) Environment {
	switch s {
	case string(Production), "prod":
		return Production
	case string(Staging), "stage":
		return Staging
	default:
		return Development
	}
}

// WithEnvironment applies the preset for env and tags records with the
// service name. Development logs text at DEBUG; staging and production log
// JSON at INFO.
func WithEnvironment(env string, service string) Option {
	return func(c *config) {
		e := ParseEnvironment(env)
		if e == Development {
			c.level = slog.LevelDebug
			c.format = FormatText
		} else {
			c.level = slog.LevelInfo
			c.format = FormatJSON
		}
		if c.output == nil {
			c.output = os.Stdout
		}
		if service != "" {
			c.attrs = append(c.attrs, slog.String("service", service))
		}
		c.attrs = append(c.attrs, slog.String("env", string(e)))
	}
}
