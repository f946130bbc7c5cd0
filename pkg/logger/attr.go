package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// tokenPrefixLen is how much of a reservation token is safe to log.
const tokenPrefixLen = 8

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups the non-nil errors under "errors". All-nil input yields an
// empty Attr, which slog drops.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error records err under "error". A nil error yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

func EventID(id string) slog.Attr {
	return slog.String("event_id", id)
}

func TeamName(name string) slog.Attr {
	return slog.String("team_name", name)
}

// Token logs only a prefix of a reservation token; the full value is a
// bearer credential for confirm and release.
func Token(token string) slog.Attr {
	if len(token) > tokenPrefixLen {
		token = token[:tokenPrefixLen] + "..."
	}
	return slog.String("token", token)
}

func LexiconVersion(v int) slog.Attr {
	return slog.Int("lexicon_version", v)
}

// Attempts records how many candidates were tried before a claim succeeded.
func Attempts(n int) slog.Attr {
	return slog.Int("attempts", n)
}

// Store records the storage backend name.
func Store(name string) slog.Attr {
	return slog.String("store", name)
}
