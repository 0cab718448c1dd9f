// Package store persists graph records.
//
// A record holds the committed DOT text of one workflow graph together with
// its title and owning study. The engine never keeps parsed graphs between
// operations: every operation loads a record, parses it, and saves the
// replacement text.
//
// This package defines the [Store] interface with implementations for
// different backends:
//   - [MemoryStore]: in-memory storage for tests and one-shot runs
//   - [FileStore]: one JSON file per record, for the CLI
//   - store/badger: embedded BadgerDB database
//   - store/redis: Redis, for deployments sharing one store
//   - store/mongo: MongoDB collection
//
// # Usage
//
//	// Development
//	s := store.NewMemoryStore()
//
//	// CLI
//	s, err := store.NewFileStore("") // Uses $XDG_DATA_HOME/sciactivity/graphs/
//
//	// Production
//	s, err := redis.NewStore(ctx, redis.Config{Addr: "localhost:6379"})
//
//	rec := &store.Record{Title: "Plan", StudyID: "rs-1", Data: dot.Default}
//	if err := s.Save(ctx, rec); err != nil {
//	    return err
//	}
//	// rec.ID is now assigned
//
// All implementations are safe for concurrent use.
package store

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("graph not found")

// Record is one persisted graph.
type Record struct {
	ID        int64     `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	StudyID   string    `json:"study_id" bson:"study_id"`
	Data      string    `json:"data" bson:"data"` // DOT text
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Store persists graph records.
type Store interface {
	// Load returns the record with the given id, or ErrNotFound.
	Load(ctx context.Context, id int64) (*Record, error)

	// Save inserts or replaces rec. A zero rec.ID is replaced with a newly
	// assigned positive id before the record is written. UpdatedAt is set
	// to the time of the write.
	Save(ctx context.Context, rec *Record) error

	// Delete removes the record with the given id, or returns ErrNotFound.
	Delete(ctx context.Context, id int64) error

	// List returns the records of a study ordered by id. An empty studyID
	// lists every record.
	List(ctx context.Context, studyID string) ([]Record, error)

	// Close releases the backend's resources.
	Close() error
}

// Matches reports whether rec belongs to studyID. An empty studyID matches
// every record.
func (r *Record) Matches(studyID string) bool {
	return studyID == "" || r.StudyID == studyID
}

// SortByID orders records by ascending id.
func SortByID(recs []Record) {
	slices.SortFunc(recs, func(a, b Record) int { return cmp.Compare(a.ID, b.ID) })
}
