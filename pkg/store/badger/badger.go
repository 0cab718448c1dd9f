// Package badger stores graph records in an embedded BadgerDB database.
//
// Keys are laid out as:
//
//	graph/<id, 16 hex digits>  JSON-encoded store.Record
//	seq/graph                  highest id assigned, 8 bytes big-endian
//
// Fixed-width ids keep prefix iteration in id order.
package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/store"
)

const (
	recordPrefix = "graph/"
	sequenceKey  = "seq/graph"
)

// Config configures the database.
type Config struct {
	// Path is the database directory. Required unless InMemory is set.
	Path string

	// InMemory keeps all data in memory; nothing is written to disk.
	InMemory bool

	// Logger receives BadgerDB's internal messages. Nil disables them.
	Logger *log.Logger
}

// badgerLogger adapts a charm logger to badger.Logger.
type badgerLogger struct {
	logger *log.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{})   { l.logger.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.logger.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{})    { l.logger.Debugf(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{})   { l.logger.Debugf(format, args...) }

// Store is a BadgerDB-backed store.Store.
type Store struct {
	db *badger.DB

	// mu serializes saves so concurrent counter updates do not conflict.
	mu sync.Mutex
}

// Open opens or creates the database described by cfg.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

func recordKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%016x", recordPrefix, id))
}

func (s *Store) Load(ctx context.Context, id int64) (*store.Record, error) {
	var rec store.Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load graph %d: %w", id, err)
	}
	return &rec, nil
}

// Save writes rec, assigning the next id when rec.ID is zero. The id
// counter and the record are written in one transaction, and an explicit
// id above the counter raises it.
func (s *Store) Save(ctx context.Context, rec *store.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := rec.ID
	updated := time.Now().UTC()
	err := s.db.Update(func(txn *badger.Txn) error {
		last, err := lastID(txn)
		if err != nil {
			return err
		}
		if id == 0 {
			id = last + 1
		}
		if id > last {
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], uint64(id))
			if err := txn.Set([]byte(sequenceKey), buf[:]); err != nil {
				return err
			}
		}

		out := *rec
		out.ID = id
		out.UpdatedAt = updated
		data, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("marshal graph: %w", err)
		}
		return txn.Set(recordKey(id), data)
	})
	if err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	rec.ID = id
	rec.UpdatedAt = updated
	return nil
}

func lastID(txn *badger.Txn) (int64, error) {
	item, err := txn.Get([]byte(sequenceKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var last int64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("corrupt id counter: %d bytes", len(val))
		}
		last = int64(binary.BigEndian.Uint64(val))
		return nil
	})
	return last, err
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := recordKey(id)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return store.ErrNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

func (s *Store) List(ctx context.Context, studyID string) ([]store.Record, error) {
	var out []store.Record
	prefix := []byte(recordPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec store.Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			if rec.Matches(studyID) {
				out = append(out, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ store.Store = (*Store)(nil)
