package teamname

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/teamnames/pkg/lexicon"
	"github.com/dmitrymomot/teamnames/pkg/logger"
)

// Service hands out unique team names per event. It keeps no mutable state
// of its own: uniqueness is enforced by the Store, so any number of Service
// instances may share one store.
type Service struct {
	lexicon    *lexicon.Lexicon
	store      Store
	config     Config
	now        func() time.Time
	random     io.Reader
	startIndex func(total int) int
	log        *slog.Logger
}

// New creates a Service. It panics when lex or store is nil since the
// allocator cannot run without a name space or persistence.
func New(lex *lexicon.Lexicon, store Store, opts ...Option) *Service {
	if lex == nil {
		panic("teamname: lexicon is required")
	}
	if store == nil {
		panic("teamname: store is required")
	}

	s := &Service{
		lexicon: lex,
		store:   store,
		config:  DefaultConfig(),
		now:     time.Now,
		random:  rand.Reader,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.config = s.config.normalized()
	s.log = s.log.With(logger.Component("teamname"))
	return s
}

// Reserve claims a currently unused name for the event. When the filtered
// name space is exhausted it returns a fallback name with Remaining set to 0.
func (s *Service) Reserve(ctx context.Context, eventID string, opts ...ReserveOption) (Reservation, error) {
	out, err := s.reserve(ctx, eventID, 1, opts)
	if err != nil {
		return Reservation{}, err
	}
	return out[0], nil
}

// ReserveBatch claims up to count names in one scan. count is clamped to
// [1, MaxBatch]. Fewer names are returned when the space runs short; if none
// can be claimed a single fallback reservation is returned.
func (s *Service) ReserveBatch(ctx context.Context, eventID string, count int, opts ...ReserveOption) ([]Reservation, error) {
	return s.reserve(ctx, eventID, min(max(count, 1), s.config.MaxBatch), opts)
}

func (s *Service) reserve(ctx context.Context, eventID string, count int, opts []ReserveOption) ([]Reservation, error) {
	if blank(eventID) {
		return nil, errors.Join(ErrInvalidArgument, errors.New("event id is required"))
	}

	var o reserveOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := s.sweep(ctx, eventID); err != nil {
		return nil, err
	}

	sel := o.selection(s.lexicon)
	total := sel.Total()
	start := s.scanStart(total)

	out := make([]Reservation, 0, count)
	for i := 0; i < total && len(out) < count; i++ {
		name := sel.NameAt((start + i) % total)

		rec, err := s.claim(ctx, eventID, name, false)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return nil, s.rollback(ctx, eventID, out, err)
		}

		res, err := s.reservation(ctx, rec, total)
		if err != nil {
			return nil, s.rollback(ctx, eventID, append(out, res), err)
		}
		out = append(out, res)

		s.log.DebugContext(ctx, "team name reserved",
			logger.EventID(eventID),
			logger.TeamName(name),
			logger.Token(rec.Token),
			logger.Attempts(i+1),
		)
	}

	if len(out) > 0 {
		return out, nil
	}

	res, err := s.reserveFallback(ctx, eventID, total)
	if err != nil {
		return nil, err
	}
	return []Reservation{res}, nil
}

func (s *Service) reserveFallback(ctx context.Context, eventID string, total int) (Reservation, error) {
	for attempt := range fallbackMaxAttempts {
		suffix, err := randomSuffix(s.random, fallbackSuffixWidth(attempt))
		if err != nil {
			return Reservation{}, errors.Join(ErrTokenGeneration, err)
		}

		rec, err := s.claim(ctx, eventID, s.config.FallbackPrefix+suffix, true)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return Reservation{}, err
		}

		s.log.WarnContext(ctx, "name space exhausted, issued fallback name",
			logger.EventID(eventID),
			logger.TeamName(rec.Name),
			logger.Attempts(attempt+1),
		)

		res := s.newReservation(rec, total)
		res.Remaining = 0
		return res, nil
	}

	s.log.ErrorContext(ctx, "fallback names exhausted",
		logger.EventID(eventID),
		logger.Attempts(fallbackMaxAttempts),
	)
	return Reservation{}, ErrFallbackExhausted
}

// claim inserts a fresh record for name. ErrConflict is passed through
// unwrapped so the caller can move on to the next candidate.
func (s *Service) claim(ctx context.Context, eventID, name string, fallback bool) (Record, error) {
	token, err := newToken(s.random)
	if err != nil {
		return Record{}, errors.Join(ErrTokenGeneration, err)
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return Record{}, errors.Join(ErrTokenGeneration, err)
	}

	rec := Record{
		ID:             id,
		EventID:        eventID,
		Name:           name,
		LexiconVersion: s.lexicon.Version(),
		Token:          token,
		Fallback:       fallback,
		ReservedAt:     s.now(),
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		if errors.Is(err, ErrConflict) {
			return Record{}, ErrConflict
		}
		return Record{}, s.persistenceError(ctx, "insert reservation", eventID, err)
	}
	return rec, nil
}

// rollback releases the reservations a failed call already claimed, so the
// caller never holds names it was not told about.
func (s *Service) rollback(ctx context.Context, eventID string, claimed []Reservation, cause error) error {
	errs := []error{cause}
	now := s.now()
	for _, res := range claimed {
		if _, err := s.store.ReleaseByToken(ctx, eventID, res.Token, now); err != nil {
			errs = append(errs, s.persistenceError(ctx, "roll back reservation", eventID, err))
		}
	}
	return errors.Join(errs...)
}

// reservation builds the result for rec. On error the returned Reservation
// still carries the token so the claim can be rolled back.
func (s *Service) reservation(ctx context.Context, rec Record, total int) (Reservation, error) {
	res := s.newReservation(rec, total)
	active, err := s.store.CountActive(ctx, rec.EventID)
	if err != nil {
		return res, s.persistenceError(ctx, "count active reservations", rec.EventID, err)
	}
	res.Remaining = max(0, total-active)
	return res, nil
}

func (s *Service) newReservation(rec Record, total int) Reservation {
	return Reservation{
		Name:           rec.Name,
		Token:          rec.Token,
		ExpiresAt:      rec.ReservedAt.Add(s.config.ReservationTTL),
		LexiconVersion: rec.LexiconVersion,
		Total:          total,
		Fallback:       rec.Fallback,
	}
}

// Confirm marks the reservation held by token as assigned. ok is false when
// the token is unknown, released or expired, or when expectedName is given
// and does not match the reserved name ignoring case and surrounding space.
// Confirming an already confirmed reservation succeeds without changes.
func (s *Service) Confirm(ctx context.Context, eventID, token, expectedName string) (Confirmation, bool, error) {
	if blank(eventID) || blank(token) {
		return Confirmation{}, false, errors.Join(ErrInvalidArgument, errors.New("event id and token are required"))
	}

	if err := s.sweep(ctx, eventID); err != nil {
		return Confirmation{}, false, err
	}

	rec, err := s.store.FindActiveByToken(ctx, eventID, token)
	if errors.Is(err, ErrNotFound) {
		return Confirmation{}, false, nil
	}
	if err != nil {
		return Confirmation{}, false, s.persistenceError(ctx, "find reservation", eventID, err)
	}

	if strings.TrimSpace(expectedName) != "" && lexicon.MatchKey(expectedName) != lexicon.MatchKey(rec.Name) {
		return Confirmation{}, false, nil
	}

	assignedAt := s.now()
	if rec.AssignedAt != nil {
		assignedAt = *rec.AssignedAt
	} else {
		ok, err := s.store.Assign(ctx, eventID, token, assignedAt)
		if err != nil {
			return Confirmation{}, false, s.persistenceError(ctx, "assign reservation", eventID, err)
		}
		if !ok {
			return Confirmation{}, false, nil
		}
	}

	s.log.DebugContext(ctx, "team name confirmed",
		logger.EventID(eventID),
		logger.TeamName(rec.Name),
	)

	return Confirmation{Name: rec.Name, Fallback: rec.Fallback, AssignedAt: assignedAt}, true, nil
}

// Release frees the name held by token, confirmed or not. It reports
// whether an active record was released.
func (s *Service) Release(ctx context.Context, eventID, token string) (bool, error) {
	if blank(eventID) || blank(token) {
		return false, errors.Join(ErrInvalidArgument, errors.New("event id and token are required"))
	}

	released, err := s.store.ReleaseByToken(ctx, eventID, token, s.now())
	if err != nil {
		return false, s.persistenceError(ctx, "release reservation", eventID, err)
	}
	return released, nil
}

// ReleaseByName frees whatever active record holds name. Empty arguments
// are ignored.
func (s *Service) ReleaseByName(ctx context.Context, eventID, name string) error {
	if blank(eventID) || blank(name) {
		return nil
	}

	if _, err := s.store.ReleaseByName(ctx, eventID, name, s.now()); err != nil {
		return s.persistenceError(ctx, "release reservation by name", eventID, err)
	}
	return nil
}

// Inventory reports the filtered capacity for the event after expiring
// stale reservations. An empty event ID yields a zero inventory.
func (s *Service) Inventory(ctx context.Context, eventID string, opts ...ReserveOption) (Inventory, error) {
	if blank(eventID) {
		return Inventory{}, nil
	}

	var o reserveOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := s.sweep(ctx, eventID); err != nil {
		return Inventory{}, err
	}

	total := o.selection(s.lexicon).Total()
	reserved, err := s.store.CountActive(ctx, eventID)
	if err != nil {
		return Inventory{}, s.persistenceError(ctx, "count active reservations", eventID, err)
	}

	return Inventory{
		Total:     total,
		Reserved:  reserved,
		Available: max(0, total-reserved),
	}, nil
}

// History lists the event's reservations newest first. A non-positive limit
// returns everything.
func (s *Service) History(ctx context.Context, eventID string, limit int) ([]Record, error) {
	if blank(eventID) {
		return nil, errors.Join(ErrInvalidArgument, errors.New("event id is required"))
	}

	if err := s.sweep(ctx, eventID); err != nil {
		return nil, err
	}

	records, err := s.store.List(ctx, eventID, limit)
	if err != nil {
		return nil, s.persistenceError(ctx, "list reservations", eventID, err)
	}
	return records, nil
}

// ResetEvent releases every unconfirmed reservation of the event and
// returns how many were released.
func (s *Service) ResetEvent(ctx context.Context, eventID string) (int64, error) {
	if blank(eventID) {
		return 0, nil
	}

	n, err := s.store.ReleaseUnassigned(ctx, eventID, s.now())
	if err != nil {
		return 0, s.persistenceError(ctx, "reset event", eventID, err)
	}
	if n > 0 {
		s.log.InfoContext(ctx, "event reservations reset", logger.EventID(eventID), slog.Int64("released", n))
	}
	return n, nil
}

// LexiconVersion returns the version of the loaded lexicon.
func (s *Service) LexiconVersion() int {
	return s.lexicon.Version()
}

// TotalCombinations returns the size of the unfiltered name space.
func (s *Service) TotalCombinations() int {
	return s.lexicon.TotalCombinations()
}

// Lexicon returns the loaded lexicon.
func (s *Service) Lexicon() *lexicon.Lexicon {
	return s.lexicon
}

// TTL returns the effective reservation lease.
func (s *Service) TTL() time.Duration {
	return s.config.ReservationTTL
}

// sweep releases this event's unconfirmed reservations older than the TTL.
func (s *Service) sweep(ctx context.Context, eventID string) error {
	now := s.now()
	n, err := s.store.ExpireReserved(ctx, eventID, now.Add(-s.config.ReservationTTL), now)
	if err != nil {
		return s.persistenceError(ctx, "expire reservations", eventID, err)
	}
	if n > 0 {
		s.log.InfoContext(ctx, "expired stale reservations", logger.EventID(eventID), slog.Int64("released", n))
	}
	return nil
}

func (s *Service) scanStart(total int) int {
	if total <= 0 {
		return 0
	}
	var idx int
	if s.startIndex != nil {
		idx = s.startIndex(total)
	} else {
		idx = randomStartIndex(s.random, total)
	}
	idx %= total
	if idx < 0 {
		idx += total
	}
	return idx
}

func (s *Service) persistenceError(ctx context.Context, op, eventID string, err error) error {
	s.log.ErrorContext(ctx, "store operation failed",
		slog.String("op", op),
		logger.EventID(eventID),
		logger.Error(err),
	)
	return errors.Join(ErrPersistence, err)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
