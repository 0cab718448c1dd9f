package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/observability"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/store"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return store.NewMemoryStore()
	})
}

func TestFileStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := store.NewFileStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileStore: %v", err)
		}
		return s
	})
}

func TestInstrumentedStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return store.Instrument(store.NewMemoryStore(), "memory")
	})
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	rec := &store.Record{Title: "Plan", StudyID: "rs-1", Data: "x"}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rec.Data = "changed"
	got, _ := s.Load(ctx, rec.ID)
	if got.Data != "x" {
		t.Errorf("stored record aliased caller: Data = %q", got.Data)
	}
}

func TestFileStoreIgnoresForeignFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for _, name := range []string{"notes.txt", "abc.json", "0.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	s, err := store.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	rec := &store.Record{Title: "Plan", StudyID: "rs-1"}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.ID != 1 {
		t.Errorf("ID = %d, want 1", rec.ID)
	}
	recs, err := s.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("len(List()) = %d, want 1", len(recs))
	}
	if s.Path() != dir {
		t.Errorf("Path() = %s, want %s", s.Path(), dir)
	}
}

func TestFileStoreSequenceSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := store.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	var last *store.Record
	for _, title := range []string{"Plan", "Method", "Results"} {
		last = &store.Record{Title: title, StudyID: "rs-1"}
		if err := s.Save(ctx, last); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	if err := s.Delete(ctx, last.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	reopened, err := store.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	rec := &store.Record{Title: "Review", StudyID: "rs-1"}
	if err := reopened.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.ID != last.ID+1 {
		t.Errorf("ID = %d, want %d", rec.ID, last.ID+1)
	}
}

func TestFileStoreWithoutSequenceFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "7.json"), []byte(`{"id":7,"title":"Old","study_id":"rs-1"}`), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := store.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	rec := &store.Record{Title: "Plan", StudyID: "rs-1"}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.ID != 8 {
		t.Errorf("ID = %d, want 8", rec.ID)
	}
	if _, err := os.Stat(filepath.Join(dir, "seq")); err != nil {
		t.Errorf("seq file not written: %v", err)
	}
}

func TestFileStoreDefaultDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	s, err := store.NewFileStore("")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if want := filepath.Join(dir, "sciactivity", "graphs"); s.Path() != want {
		t.Errorf("Path() = %s, want %s", s.Path(), want)
	}
}

type recordingHooks struct {
	observability.NoopStoreHooks
	loads, saves, deletes int
	backend               string
}

func (h *recordingHooks) OnLoad(_ context.Context, backend string, _ int64, _ time.Duration, _ error) {
	h.loads++
	h.backend = backend
}

func (h *recordingHooks) OnSave(context.Context, string, int64, int, time.Duration, error) {
	h.saves++
}

func (h *recordingHooks) OnDelete(context.Context, string, int64, error) {
	h.deletes++
}

func TestInstrumentCallsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetStoreHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	s := store.Instrument(store.NewMemoryStore(), "memory")
	rec := &store.Record{Title: "Plan", StudyID: "rs-1"}
	_ = s.Save(ctx, rec)
	_, _ = s.Load(ctx, rec.ID)
	_ = s.Delete(ctx, rec.ID)
	_, _ = s.Load(ctx, rec.ID)

	if hooks.saves != 1 || hooks.loads != 2 || hooks.deletes != 1 {
		t.Errorf("hooks = %d saves, %d loads, %d deletes", hooks.saves, hooks.loads, hooks.deletes)
	}
	if hooks.backend != "memory" {
		t.Errorf("backend = %q", hooks.backend)
	}
	if s.Backend() != "memory" {
		t.Errorf("Backend() = %q", s.Backend())
	}
}
