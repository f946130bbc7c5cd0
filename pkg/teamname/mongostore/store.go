// Package mongostore implements teamname.Store on MongoDB. A partial unique
// index on (event_id, name) restricted to active documents enforces name
// uniqueness across allocators.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongox "github.com/dmitrymomot/teamnames/pkg/mongo"
	"github.com/dmitrymomot/teamnames/pkg/teamname"
)

// DefaultCollection is used when New receives an empty name.
const DefaultCollection = "team_names"

// Store is a MongoDB-backed teamname.Store.
type Store struct {
	coll *mongo.Collection
}

var _ teamname.Store = (*Store)(nil)

// New returns a store on db.collection. Call EnsureIndexes once before use.
func New(db *mongo.Database, collection string) *Store {
	if db == nil {
		panic("mongostore: nil database")
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return &Store{coll: db.Collection(collection)}
}

// EnsureIndexes creates the uniqueness and lookup indexes. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().
				SetName("team_names_active_name").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"active": true}),
		},
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "token", Value: 1}},
			Options: options.Index().SetName("team_names_token").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "reserved_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("team_names_history"),
		},
	})
	if err != nil {
		return fmt.Errorf("create team name indexes: %w", err)
	}
	return nil
}

type document struct {
	OID            bson.ObjectID `bson:"_id"`
	ID             string        `bson:"id"`
	EventID        string        `bson:"event_id"`
	Name           string        `bson:"name"`
	LexiconVersion int           `bson:"lexicon_version"`
	Token          string        `bson:"token"`
	Fallback       bool          `bson:"fallback"`
	Active         bool          `bson:"active"`
	ReservedAt     time.Time     `bson:"reserved_at"`
	AssignedAt     *time.Time    `bson:"assigned_at,omitempty"`
	ReleasedAt     *time.Time    `bson:"released_at,omitempty"`
}

func (d document) record() (teamname.Record, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return teamname.Record{}, fmt.Errorf("decode team name %s: %w", d.OID.Hex(), err)
	}
	return teamname.Record{
		ID:             id,
		EventID:        d.EventID,
		Name:           d.Name,
		LexiconVersion: d.LexiconVersion,
		Token:          d.Token,
		Fallback:       d.Fallback,
		ReservedAt:     d.ReservedAt.UTC(),
		AssignedAt:     utc(d.AssignedAt),
		ReleasedAt:     utc(d.ReleasedAt),
	}, nil
}

// Insert adds rec, mapping a duplicate key to teamname.ErrConflict.
func (s *Store) Insert(ctx context.Context, rec teamname.Record) error {
	// _id orders records inserted within the same millisecond
	_, err := s.coll.InsertOne(ctx, document{
		OID:            bson.NewObjectID(),
		ID:             rec.ID.String(),
		EventID:        rec.EventID,
		Name:           rec.Name,
		LexiconVersion: rec.LexiconVersion,
		Token:          rec.Token,
		Fallback:       rec.Fallback,
		Active:         true,
		ReservedAt:     rec.ReservedAt,
	})
	if mongox.IsDuplicateKeyError(err) {
		return teamname.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert team name: %w", err)
	}
	return nil
}

// ExpireReserved releases unassigned reservations made at or before threshold.
func (s *Store) ExpireReserved(ctx context.Context, eventID string, threshold, now time.Time) (int64, error) {
	return s.releaseMany(ctx, bson.M{
		"event_id":    eventID,
		"active":      true,
		"assigned_at": nil,
		"reserved_at": bson.M{"$lte": threshold},
	}, now)
}

// ReleaseUnassigned releases every active record that was never assigned.
func (s *Store) ReleaseUnassigned(ctx context.Context, eventID string, at time.Time) (int64, error) {
	return s.releaseMany(ctx, bson.M{
		"event_id":    eventID,
		"active":      true,
		"assigned_at": nil,
	}, at)
}

func (s *Store) releaseMany(ctx context.Context, filter bson.M, at time.Time) (int64, error) {
	res, err := s.coll.UpdateMany(ctx, filter, releaseUpdate(at))
	if err != nil {
		return 0, fmt.Errorf("release team names: %w", err)
	}
	return res.ModifiedCount, nil
}

// FindActiveByToken returns the active record holding token.
func (s *Store) FindActiveByToken(ctx context.Context, eventID, token string) (*teamname.Record, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"event_id": eventID, "token": token, "active": true}).Decode(&doc)
	if mongox.IsNotFoundError(err) {
		return nil, teamname.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find team name: %w", err)
	}
	rec, err := doc.record()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Assign sets assigned_at once on the active record holding token.
func (s *Store) Assign(ctx context.Context, eventID, token string, at time.Time) (bool, error) {
	filter := bson.M{"event_id": eventID, "token": token, "active": true}
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"event_id": eventID, "token": token, "active": true, "assigned_at": nil},
		bson.M{"$set": bson.M{"assigned_at": at}},
	)
	if err != nil {
		return false, fmt.Errorf("assign team name: %w", err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}

	n, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("assign team name: %w", err)
	}
	return n > 0, nil
}

// ReleaseByToken releases the active record holding token.
func (s *Store) ReleaseByToken(ctx context.Context, eventID, token string, at time.Time) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"event_id": eventID, "token": token, "active": true},
		releaseUpdate(at),
	)
	if err != nil {
		return false, fmt.Errorf("release team name: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

// ReleaseByName releases the active record holding name.
func (s *Store) ReleaseByName(ctx context.Context, eventID, name string, at time.Time) (int64, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"event_id": eventID, "name": name, "active": true},
		releaseUpdate(at),
	)
	if err != nil {
		return 0, fmt.Errorf("release team name by name: %w", err)
	}
	return res.ModifiedCount, nil
}

// CountActive returns the number of names currently held for the event.
func (s *Store) CountActive(ctx context.Context, eventID string) (int, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"event_id": eventID, "active": true})
	if err != nil {
		return 0, fmt.Errorf("count active team names: %w", err)
	}
	return int(n), nil
}

// List returns the event's records, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, eventID string, limit int) ([]teamname.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "reserved_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.coll.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list team names: %w", err)
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list team names: %w", err)
	}

	out := make([]teamname.Record, 0, len(docs))
	for _, d := range docs {
		rec, err := d.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func releaseUpdate(at time.Time) bson.M {
	return bson.M{"$set": bson.M{"active": false, "released_at": at}}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
