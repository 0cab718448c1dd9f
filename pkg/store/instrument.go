package store

import (
	"context"
	"time"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/observability"
)

// Instrumented reports every call on a Store to the registered
// [observability.StoreHooks], tagged with the backend name.
type Instrumented struct {
	Store
	backend string
}

// Instrument wraps s so its calls reach the store hooks.
func Instrument(s Store, backend string) *Instrumented {
	return &Instrumented{Store: s, backend: backend}
}

// Backend returns the name the store was instrumented with.
func (s *Instrumented) Backend() string { return s.backend }

func (s *Instrumented) Load(ctx context.Context, id int64) (*Record, error) {
	start := time.Now()
	rec, err := s.Store.Load(ctx, id)
	observability.Store().OnLoad(ctx, s.backend, id, time.Since(start), err)
	return rec, err
}

func (s *Instrumented) Save(ctx context.Context, rec *Record) error {
	start := time.Now()
	err := s.Store.Save(ctx, rec)
	observability.Store().OnSave(ctx, s.backend, rec.ID, len(rec.Data), time.Since(start), err)
	return err
}

func (s *Instrumented) Delete(ctx context.Context, id int64) error {
	err := s.Store.Delete(ctx, id)
	observability.Store().OnDelete(ctx, s.backend, id, err)
	return err
}
