// Package mongo stores graph records in a MongoDB collection.
//
// Records live in the "graphs" collection with the record id as _id. New ids
// come from an atomically incremented document in the "counters" collection;
// saving with an explicit id raises that counter to at least the id.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/store"
)

const (
	graphsCollection   = "graphs"
	countersCollection = "counters"
	graphCounterID     = "graph"
)

// Config configures the MongoDB connection.
type Config struct {
	URI      string // e.g. mongodb://localhost:27017
	Database string
}

// Store is a MongoDB-backed store.Store.
type Store struct {
	client   *mongo.Client
	graphs   *mongo.Collection
	counters *mongo.Collection
}

// NewStore connects to MongoDB, verifies the connection and ensures the
// study index exists.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Database == "" {
		return nil, errors.New("mongo database name is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.Database)
	s := &Store{
		client:   client,
		graphs:   db.Collection(graphsCollection),
		counters: db.Collection(countersCollection),
	}

	_, err = s.graphs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "study_id", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("create study index: %w", err)
	}
	return s, nil
}

func (s *Store) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": graphCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next graph id: %w", err)
	}
	return counter.Seq, nil
}

func (s *Store) advanceID(ctx context.Context, id int64) error {
	_, err := s.counters.UpdateOne(ctx,
		bson.M{"_id": graphCounterID},
		bson.M{"$max": bson.M{"seq": id}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("advance graph id: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, id int64) (*store.Record, error) {
	var rec store.Record
	err := s.graphs.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load graph %d: %w", id, err)
	}
	return &rec, nil
}

func (s *Store) Save(ctx context.Context, rec *store.Record) error {
	if rec.ID == 0 {
		id, err := s.nextID(ctx)
		if err != nil {
			return err
		}
		rec.ID = id
	} else if err := s.advanceID(ctx, rec.ID); err != nil {
		return err
	}
	// Mongo stores milliseconds; truncate so a loaded record equals the saved one.
	rec.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	_, err := s.graphs.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save graph %d: %w", rec.ID, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.graphs.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete graph %d: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, studyID string) ([]store.Record, error) {
	filter := bson.M{}
	if studyID != "" {
		filter["study_id"] = studyID
	}
	cur, err := s.graphs.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}

	var out []store.Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode graphs: %w", err)
	}
	return out, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ store.Store = (*Store)(nil)
