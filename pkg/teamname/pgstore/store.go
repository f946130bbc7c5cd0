// Package pgstore implements teamname.Store on PostgreSQL. A partial unique
// index on (event_id, name) over unreleased rows enforces name uniqueness, so
// concurrent allocators on any number of hosts can share one database.
package pgstore

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/teamnames/pkg/pg"
	"github.com/dmitrymomot/teamnames/pkg/teamname"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a PostgreSQL-backed teamname.Store.
type Store struct {
	db DBTX
}

var _ teamname.Store = (*Store)(nil)

// New wraps db. Run Migrate once before use.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// Migrate creates or upgrades the team_names schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool, table string, log *slog.Logger) error {
	return pg.MigrateFS(ctx, pool, migrations, "migrations", table, log)
}

const recordColumns = `id, event_id, name, lexicon_version, reservation_token, fallback, reserved_at, assigned_at, released_at`

type recordRow struct {
	ID             [16]byte   `db:"id"`
	EventID        string     `db:"event_id"`
	Name           string     `db:"name"`
	LexiconVersion int        `db:"lexicon_version"`
	Token          string     `db:"reservation_token"`
	Fallback       bool       `db:"fallback"`
	ReservedAt     time.Time  `db:"reserved_at"`
	AssignedAt     *time.Time `db:"assigned_at"`
	ReleasedAt     *time.Time `db:"released_at"`
}

func (r recordRow) record() teamname.Record {
	return teamname.Record{
		ID:             uuid.UUID(r.ID),
		EventID:        r.EventID,
		Name:           r.Name,
		LexiconVersion: r.LexiconVersion,
		Token:          r.Token,
		Fallback:       r.Fallback,
		ReservedAt:     r.ReservedAt,
		AssignedAt:     r.AssignedAt,
		ReleasedAt:     r.ReleasedAt,
	}
}

// Insert adds rec, mapping a unique violation to teamname.ErrConflict.
func (s *Store) Insert(ctx context.Context, rec teamname.Record) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO team_names (id, event_id, name, lexicon_version, reservation_token, fallback, reserved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID.String(), rec.EventID, rec.Name, rec.LexiconVersion, rec.Token, rec.Fallback, rec.ReservedAt,
	)
	if pg.IsDuplicateKeyError(err) {
		return teamname.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert team name: %w", err)
	}
	return nil
}

func (s *Store) ExpireReserved(ctx context.Context, eventID string, threshold, now time.Time) (int64, error) {
	return s.exec(ctx, "expire reservations",
		`UPDATE team_names SET released_at = $3
		 WHERE event_id = $1 AND released_at IS NULL AND assigned_at IS NULL AND reserved_at <= $2`,
		eventID, threshold, now,
	)
}

func (s *Store) FindActiveByToken(ctx context.Context, eventID, token string) (*teamname.Record, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+recordColumns+` FROM team_names
		 WHERE event_id = $1 AND reservation_token = $2 AND released_at IS NULL`,
		eventID, token,
	)
	if err != nil {
		return nil, fmt.Errorf("find team name: %w", err)
	}

	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[recordRow])
	if pg.IsNotFoundError(err) {
		return nil, teamname.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find team name: %w", err)
	}
	rec := row.record()
	return &rec, nil
}

func (s *Store) Assign(ctx context.Context, eventID, token string, at time.Time) (bool, error) {
	n, err := s.exec(ctx, "assign team name",
		`UPDATE team_names SET assigned_at = COALESCE(assigned_at, $3)
		 WHERE event_id = $1 AND reservation_token = $2 AND released_at IS NULL`,
		eventID, token, at,
	)
	return n > 0, err
}

func (s *Store) ReleaseByToken(ctx context.Context, eventID, token string, at time.Time) (bool, error) {
	n, err := s.exec(ctx, "release team name",
		`UPDATE team_names SET released_at = $3
		 WHERE event_id = $1 AND reservation_token = $2 AND released_at IS NULL`,
		eventID, token, at,
	)
	return n > 0, err
}

func (s *Store) ReleaseByName(ctx context.Context, eventID, name string, at time.Time) (int64, error) {
	return s.exec(ctx, "release team name by name",
		`UPDATE team_names SET released_at = $3
		 WHERE event_id = $1 AND name = $2 AND released_at IS NULL`,
		eventID, name, at,
	)
}

func (s *Store) ReleaseUnassigned(ctx context.Context, eventID string, at time.Time) (int64, error) {
	return s.exec(ctx, "release unassigned team names",
		`UPDATE team_names SET released_at = $2
		 WHERE event_id = $1 AND released_at IS NULL AND assigned_at IS NULL`,
		eventID, at,
	)
}

func (s *Store) CountActive(ctx context.Context, eventID string) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM team_names WHERE event_id = $1 AND released_at IS NULL`,
		eventID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count team names: %w", err)
	}
	return n, nil
}

// List returns records newest first; a NULL limit means no limit.
func (s *Store) List(ctx context.Context, eventID string, limit int) ([]teamname.Record, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+recordColumns+` FROM team_names
		 WHERE event_id = $1
		 ORDER BY reserved_at DESC, seq DESC
		 LIMIT $2`,
		eventID, lim,
	)
	if err != nil {
		return nil, fmt.Errorf("list team names: %w", err)
	}

	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[recordRow])
	if err != nil {
		return nil, fmt.Errorf("list team names: %w", err)
	}

	out := make([]teamname.Record, 0, len(found))
	for _, row := range found {
		out = append(out, row.record())
	}
	return out, nil
}

func (s *Store) exec(ctx context.Context, op, sql string, args ...any) (int64, error) {
	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return tag.RowsAffected(), nil
}
