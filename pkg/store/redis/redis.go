// Package redis stores graph records in Redis.
//
// Keys are laid out as:
//
//	<prefix>graph:<id>         JSON-encoded store.Record
//	<prefix>graph:seq          highest id assigned; INCR for new ids
//	<prefix>study:<study>      set of record ids owned by a study
//	<prefix>graphs             set of all record ids
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/store"
)

// Config configures the Redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int

	// KeyPrefix is prepended to every key, so several deployments can
	// share one database.
	KeyPrefix string
}

// advanceSeq raises the counter at KEYS[1] to ARGV[1] if it is lower.
const advanceSeq = `
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
if tonumber(ARGV[1]) > cur then
	redis.call('SET', KEYS[1], ARGV[1])
end
return 0
`

// Store is a Redis-backed store.Store.
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore connects to Redis and verifies the connection with PING.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}
	return &Store{client: client, prefix: cfg.KeyPrefix}, nil
}

func (s *Store) recordKey(id int64) string {
	return s.prefix + "graph:" + strconv.FormatInt(id, 10)
}

func (s *Store) seqKey() string               { return s.prefix + "graph:seq" }
func (s *Store) allKey() string               { return s.prefix + "graphs" }
func (s *Store) studyKey(study string) string { return s.prefix + "study:" + study }

func (s *Store) Load(ctx context.Context, id int64) (*store.Record, error) {
	data, err := s.client.Get(ctx, s.recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load graph %d: %w", id, err)
	}

	var rec store.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode graph %d: %w", id, err)
	}
	return &rec, nil
}

func (s *Store) Save(ctx context.Context, rec *store.Record) error {
	var prevStudy string
	if rec.ID == 0 {
		id, err := s.client.Incr(ctx, s.seqKey()).Result()
		if err != nil {
			return fmt.Errorf("next graph id: %w", err)
		}
		rec.ID = id
	} else if prev, err := s.Load(ctx, rec.ID); err == nil {
		prevStudy = prev.StudyID
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	rec.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal graph: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recordKey(rec.ID), data, 0)
		pipe.SAdd(ctx, s.allKey(), rec.ID)
		if prevStudy != "" && prevStudy != rec.StudyID {
			pipe.SRem(ctx, s.studyKey(prevStudy), rec.ID)
		}
		pipe.SAdd(ctx, s.studyKey(rec.StudyID), rec.ID)
		pipe.Eval(ctx, advanceSeq, []string{s.seqKey()}, rec.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save graph %d: %w", rec.ID, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	rec, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.recordKey(id))
		pipe.SRem(ctx, s.allKey(), id)
		pipe.SRem(ctx, s.studyKey(rec.StudyID), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete graph %d: %w", id, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, studyID string) ([]store.Record, error) {
	key := s.allKey()
	if studyID != "" {
		key = s.studyKey(studyID)
	}
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}

	out := make([]store.Record, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		rec, err := s.Load(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	store.SortByID(out)
	return out, nil
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

var _ store.Store = (*Store)(nil)
