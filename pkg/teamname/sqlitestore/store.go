// Package sqlitestore implements teamname.Store on an embedded SQLite
// database (modernc.org/sqlite, no cgo). Timestamps are stored as unix
// microseconds. The pool is limited to one connection, so a single process
// serializes its writes; the partial unique index still guards names.
package sqlitestore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/dmitrymomot/teamnames/pkg/teamname"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is a SQLite-backed teamname.Store.
type Store struct {
	db *sql.DB
}

var _ teamname.Store = (*Store)(nil)

// Open creates the database file if needed, applies migrations and returns
// a ready store.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlitestore: empty database path")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlitestore: create db dir: %w", err)
		}
	}

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", cfg.Path, busy.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlitestore: ping: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("sqlitestore: migrate: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("sqlitestore: migrate: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

func toMicros(t time.Time) int64 {
	return t.UnixMicro()
}

func fromMicros(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMicro(v.Int64).UTC()
	return &t
}

func (s *Store) Insert(ctx context.Context, rec teamname.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO team_names (id, event_id, name, lexicon_version, reservation_token, fallback, reserved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.EventID, rec.Name, rec.LexiconVersion, rec.Token, rec.Fallback, toMicros(rec.ReservedAt),
	)
	if isUniqueViolation(err) {
		return teamname.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert team name: %w", err)
	}
	return nil
}

func (s *Store) ExpireReserved(ctx context.Context, eventID string, threshold, now time.Time) (int64, error) {
	return s.exec(ctx, "expire reservations",
		`UPDATE team_names SET released_at = ?
		 WHERE event_id = ? AND released_at IS NULL AND assigned_at IS NULL AND reserved_at <= ?`,
		toMicros(now), eventID, toMicros(threshold),
	)
}

const recordColumns = `id, event_id, name, lexicon_version, reservation_token, fallback, reserved_at, assigned_at, released_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (teamname.Record, error) {
	var (
		rec        teamname.Record
		id         string
		reservedAt int64
		assignedAt sql.NullInt64
		releasedAt sql.NullInt64
	)
	if err := row.Scan(&id, &rec.EventID, &rec.Name, &rec.LexiconVersion, &rec.Token, &rec.Fallback,
		&reservedAt, &assignedAt, &releasedAt); err != nil {
		return teamname.Record{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return teamname.Record{}, fmt.Errorf("parse record id: %w", err)
	}
	rec.ID = parsed
	rec.ReservedAt = time.UnixMicro(reservedAt).UTC()
	rec.AssignedAt = fromMicros(assignedAt)
	rec.ReleasedAt = fromMicros(releasedAt)
	return rec, nil
}

func (s *Store) FindActiveByToken(ctx context.Context, eventID, token string) (*teamname.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM team_names
		 WHERE event_id = ? AND reservation_token = ? AND released_at IS NULL`,
		eventID, token,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, teamname.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find team name: %w", err)
	}
	return &rec, nil
}

func (s *Store) Assign(ctx context.Context, eventID, token string, at time.Time) (bool, error) {
	n, err := s.exec(ctx, "assign team name",
		`UPDATE team_names SET assigned_at = COALESCE(assigned_at, ?)
		 WHERE event_id = ? AND reservation_token = ? AND released_at IS NULL`,
		toMicros(at), eventID, token,
	)
	return n > 0, err
}

func (s *Store) ReleaseByToken(ctx context.Context, eventID, token string, at time.Time) (bool, error) {
	n, err := s.exec(ctx, "release team name",
		`UPDATE team_names SET released_at = ?
		 WHERE event_id = ? AND reservation_token = ? AND released_at IS NULL`,
		toMicros(at), eventID, token,
	)
	return n > 0, err
}

func (s *Store) ReleaseByName(ctx context.Context, eventID, name string, at time.Time) (int64, error) {
	return s.exec(ctx, "release team name by name",
		`UPDATE team_names SET released_at = ?
		 WHERE event_id = ? AND name = ? AND released_at IS NULL`,
		toMicros(at), eventID, name,
	)
}

func (s *Store) ReleaseUnassigned(ctx context.Context, eventID string, at time.Time) (int64, error) {
	return s.exec(ctx, "release unassigned team names",
		`UPDATE team_names SET released_at = ?
		 WHERE event_id = ? AND released_at IS NULL AND assigned_at IS NULL`,
		toMicros(at), eventID,
	)
}

func (s *Store) CountActive(ctx context.Context, eventID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM team_names WHERE event_id = ? AND released_at IS NULL`,
		eventID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count team names: %w", err)
	}
	return n, nil
}

// List returns records newest first. SQLite treats a negative LIMIT as
// unbounded.
func (s *Store) List(ctx context.Context, eventID string, limit int) ([]teamname.Record, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM team_names
		 WHERE event_id = ?
		 ORDER BY reserved_at DESC, seq DESC
		 LIMIT ?`,
		eventID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list team names: %w", err)
	}
	defer rows.Close()

	out := []teamname.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list team names: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list team names: %w", err)
	}
	return out, nil
}

func (s *Store) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
