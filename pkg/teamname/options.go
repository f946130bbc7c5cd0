package teamname

import (
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/teamnames/pkg/lexicon"
)

// Option is a functional option for configuring the Service
type Option func(*Service)

// WithConfig sets custom configuration
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithTTL sets the reservation lease. Values below MinTTL are raised to it.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.config.ReservationTTL = ttl
	}
}

// WithFallbackPrefix sets the prefix of synthetic names
func WithFallbackPrefix(prefix string) Option {
	return func(s *Service) {
		s.config.FallbackPrefix = prefix
	}
}

// WithMaxBatch caps how many names one ReserveBatch call may claim
func WithMaxBatch(n int) Option {
	return func(s *Service) {
		s.config.MaxBatch = n
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRandom sets the entropy source for tokens, fallback suffixes and
// start offsets. Defaults to crypto/rand.
func WithRandom(r io.Reader) Option {
	return func(s *Service) {
		if r != nil {
			s.random = r
		}
	}
}

// WithStartIndex replaces the random scan offset. fn receives the selection
// size and its result is reduced modulo that size.
func WithStartIndex(fn func(total int) int) Option {
	return func(s *Service) {
		s.startIndex = fn
	}
}

// ReserveOption narrows the name space for a single reservation call
type ReserveOption func(*reserveOptions)

type reserveOptions struct {
	domains []string
	tones   []string
}

// WithDomains selects noun categories
func WithDomains(domains ...string) ReserveOption {
	return func(o *reserveOptions) {
		o.domains = append(o.domains, domains...)
	}
}

// WithTones selects adjective categories
func WithTones(tones ...string) ReserveOption {
	return func(o *reserveOptions) {
		o.tones = append(o.tones, tones...)
	}
}

func (o reserveOptions) selection(lex *lexicon.Lexicon) *lexicon.Selection {
	return lex.GetNameSelection(o.domains, o.tones)
}
