// Package redisstore implements teamname.Store on Redis. Each mutation runs
// as a Lua script, so the active-name hash is the single point of
// arbitration between concurrent allocators.
//
// Released records stay readable through List until Config.Retention runs
// out. With the zero retention every record and history entry of an event is
// kept, so storage grows with the number of reservations ever made; use a
// retention or ResetEvent plus key deletion for long-running events. History
// entries whose record has expired are dropped the next time List meets them.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/teamnames/pkg/teamname"
)

// Store is a Redis-backed teamname.Store.
type Store struct {
	client    redis.UniversalClient
	prefix    string
	retention int64 // milliseconds, 0 keeps released records
}

var _ teamname.Store = (*Store)(nil)

// New wraps client. An empty cfg.KeyPrefix defaults to "teamname".
func New(client redis.UniversalClient, cfg Config) *Store {
	if client == nil {
		panic("redisstore: nil client")
	}
	prefix := strings.TrimSpace(cfg.KeyPrefix)
	if prefix == "" {
		prefix = "teamname"
	}
	return &Store{
		client:    client,
		prefix:    prefix,
		retention: max(cfg.Retention, 0).Milliseconds(),
	}
}

type keys struct {
	active  string
	pending string
	history string
	seq     string
	record  string // prefix, token appended
}

func (s *Store) keys(eventID string) keys {
	base := fmt.Sprintf("%s:{%s}", s.prefix, eventID)
	return keys{
		active:  base + ":active",
		pending: base + ":pending",
		history: base + ":history",
		seq:     base + ":seq",
		record:  base + ":rec:",
	}
}

// Insert adds rec, returning teamname.ErrConflict when its name is held or
// its token was used before.
func (s *Store) Insert(ctx context.Context, rec teamname.Record) error {
	k := s.keys(rec.EventID)
	ok, err := insertScript.Run(ctx, s.client,
		[]string{k.active, k.record + rec.Token, k.pending, k.history, k.seq},
		rec.Name, rec.Token, rec.ID.String(), rec.LexiconVersion, boolString(rec.Fallback), micros(rec.ReservedAt),
	).Int()
	if err != nil {
		return fmt.Errorf("insert team name: %w", err)
	}
	if ok == 0 {
		return teamname.ErrConflict
	}
	return nil
}

// ExpireReserved releases unassigned reservations made at or before threshold.
func (s *Store) ExpireReserved(ctx context.Context, eventID string, threshold, now time.Time) (int64, error) {
	return s.releasePending(ctx, eventID, strconv.FormatInt(micros(threshold), 10), now)
}

// ReleaseUnassigned releases every active record that was never assigned.
func (s *Store) ReleaseUnassigned(ctx context.Context, eventID string, at time.Time) (int64, error) {
	return s.releasePending(ctx, eventID, "+inf", at)
}

func (s *Store) releasePending(ctx context.Context, eventID, maxScore string, at time.Time) (int64, error) {
	k := s.keys(eventID)
	n, err := releasePendingScript.Run(ctx, s.client,
		[]string{k.active, k.pending},
		maxScore, micros(at), k.record, s.retention,
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("release pending team names: %w", err)
	}
	return n, nil
}

// FindActiveByToken returns the active record holding token.
func (s *Store) FindActiveByToken(ctx context.Context, eventID, token string) (*teamname.Record, error) {
	k := s.keys(eventID)
	fields, err := s.client.HGetAll(ctx, k.record+token).Result()
	if err != nil {
		return nil, fmt.Errorf("find team name: %w", err)
	}
	if len(fields) == 0 {
		return nil, teamname.ErrNotFound
	}
	rec, err := decodeRecord(eventID, token, fields)
	if err != nil {
		return nil, err
	}
	if !rec.Active() {
		return nil, teamname.ErrNotFound
	}
	return &rec, nil
}

// Assign sets assigned_at once on the active record holding token.
func (s *Store) Assign(ctx context.Context, eventID, token string, at time.Time) (bool, error) {
	k := s.keys(eventID)
	n, err := assignScript.Run(ctx, s.client,
		[]string{k.record + token, k.pending},
		token, micros(at),
	).Int()
	if err != nil {
		return false, fmt.Errorf("assign team name: %w", err)
	}
	return n == 1, nil
}

// ReleaseByToken releases the active record holding token.
func (s *Store) ReleaseByToken(ctx context.Context, eventID, token string, at time.Time) (bool, error) {
	k := s.keys(eventID)
	n, err := releaseTokenScript.Run(ctx, s.client,
		[]string{k.active, k.record + token, k.pending},
		token, micros(at), s.retention,
	).Int()
	if err != nil {
		return false, fmt.Errorf("release team name: %w", err)
	}
	return n == 1, nil
}

// ReleaseByName releases the active record holding name.
func (s *Store) ReleaseByName(ctx context.Context, eventID, name string, at time.Time) (int64, error) {
	k := s.keys(eventID)
	n, err := releaseNameScript.Run(ctx, s.client,
		[]string{k.active, k.pending},
		name, micros(at), k.record, s.retention,
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("release team name by name: %w", err)
	}
	return n, nil
}

// CountActive returns the number of names currently held for the event.
func (s *Store) CountActive(ctx context.Context, eventID string) (int, error) {
	n, err := s.client.HLen(ctx, s.keys(eventID).active).Result()
	if err != nil {
		return 0, fmt.Errorf("count active team names: %w", err)
	}
	return int(n), nil
}

// List returns the event's records, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, eventID string, limit int) ([]teamname.Record, error) {
	k := s.keys(eventID)
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	members, err := s.client.ZRevRange(ctx, k.history, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list team names: %w", err)
	}

	tokens := make([]string, 0, len(members))
	kept := make([]string, 0, len(members))
	cmds := make([]*redis.MapStringStringCmd, 0, len(members))
	pipe := s.client.Pipeline()
	for _, m := range members {
		_, token, ok := strings.Cut(m, ":")
		if !ok {
			continue
		}
		tokens = append(tokens, token)
		kept = append(kept, m)
		cmds = append(cmds, pipe.HGetAll(ctx, k.record+token))
	}
	if len(cmds) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("list team names: %w", err)
		}
	}

	out := make([]teamname.Record, 0, len(cmds))
	var expired []any
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			expired = append(expired, kept[i])
			continue
		}
		rec, err := decodeRecord(eventID, tokens[i], fields)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	if len(expired) > 0 {
		if err := s.client.ZRem(ctx, k.history, expired...).Err(); err != nil {
			return nil, fmt.Errorf("prune team name history: %w", err)
		}
	}
	return out, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

var errCorruptRecord = errors.New("redisstore: corrupt record")

func decodeRecord(eventID, token string, f map[string]string) (teamname.Record, error) {
	id, err := uuid.Parse(f["id"])
	if err != nil {
		return teamname.Record{}, errors.Join(errCorruptRecord, err)
	}
	version, err := strconv.Atoi(f["lexicon_version"])
	if err != nil {
		return teamname.Record{}, errors.Join(errCorruptRecord, err)
	}
	reservedAt, err := parseMicros(f["reserved_at"])
	if err != nil {
		return teamname.Record{}, err
	}

	rec := teamname.Record{
		ID:             id,
		EventID:        eventID,
		Name:           f["name"],
		LexiconVersion: version,
		Token:          token,
		Fallback:       f["fallback"] == "1",
		ReservedAt:     reservedAt,
	}
	if v, ok := f["assigned_at"]; ok {
		t, err := parseMicros(v)
		if err != nil {
			return teamname.Record{}, err
		}
		rec.AssignedAt = &t
	}
	if v, ok := f["released_at"]; ok {
		t, err := parseMicros(v)
		if err != nil {
			return teamname.Record{}, err
		}
		rec.ReleasedAt = &t
	}
	return rec, nil
}

func micros(t time.Time) int64 { return t.UnixMicro() }

func parseMicros(v string) (time.Time, error) {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, errors.Join(errCorruptRecord, err)
	}
	return time.UnixMicro(n).UTC(), nil
}

func boolString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
