// Package storetest provides a conformance suite for [store.Store]
// implementations.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/store"
)

// Run exercises the Store contract against the store returned by open.
// Each subtest gets a fresh store; open must return an empty one.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("save assigns ids", func(t *testing.T) {
		s := open(t)
		a := &store.Record{Title: "Plan", StudyID: "rs-1", Data: "digraph{A;B;A->B;}"}
		b := &store.Record{Title: "Method", StudyID: "rs-1", Data: "digraph{A;B;A->B;}"}
		if err := s.Save(ctx, a); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if err := s.Save(ctx, b); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if a.ID <= 0 || b.ID <= 0 || a.ID == b.ID {
			t.Errorf("ids = %d, %d; want distinct positive", a.ID, b.ID)
		}
		if a.UpdatedAt.IsZero() {
			t.Error("UpdatedAt not set")
		}
	})

	t.Run("load returns saved record", func(t *testing.T) {
		s := open(t)
		rec := &store.Record{Title: "Plan", StudyID: "rs-1", Data: "digraph{A;B;A->B;}"}
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
		got, err := s.Load(ctx, rec.ID)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got.ID != rec.ID || got.Title != rec.Title || got.StudyID != rec.StudyID || got.Data != rec.Data {
			t.Errorf("Load() = %+v, want %+v", got, rec)
		}
	})

	t.Run("save replaces", func(t *testing.T) {
		s := open(t)
		rec := &store.Record{Title: "Plan", StudyID: "rs-1", Data: "digraph{A;B;A->B;}"}
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
		id := rec.ID
		rec.Data = "digraph{A;1;B;A->1;1->B;}"
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if rec.ID != id {
			t.Errorf("id changed from %d to %d", id, rec.ID)
		}
		got, err := s.Load(ctx, id)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got.Data != rec.Data {
			t.Errorf("Data = %q, want %q", got.Data, rec.Data)
		}
	})

	t.Run("missing record", func(t *testing.T) {
		s := open(t)
		if _, err := s.Load(ctx, 404); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Load() = %v, want %v", err, store.ErrNotFound)
		}
		if err := s.Delete(ctx, 404); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Delete() = %v, want %v", err, store.ErrNotFound)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := open(t)
		rec := &store.Record{Title: "Plan", StudyID: "rs-1", Data: "digraph{A;B;A->B;}"}
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if err := s.Delete(ctx, rec.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Load(ctx, rec.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Load() after Delete = %v", err)
		}
		recs, err := s.List(ctx, "rs-1")
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("List() = %v, want empty", recs)
		}
	})

	t.Run("deleted ids are not reused", func(t *testing.T) {
		s := open(t)
		a := &store.Record{Title: "Plan", StudyID: "rs-1"}
		b := &store.Record{Title: "Method", StudyID: "rs-1"}
		for _, r := range []*store.Record{a, b} {
			if err := s.Save(ctx, r); err != nil {
				t.Fatalf("Save: %v", err)
			}
		}
		if err := s.Delete(ctx, b.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}

		c := &store.Record{Title: "Results", StudyID: "rs-1"}
		if err := s.Save(ctx, c); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if c.ID <= b.ID {
			t.Errorf("id after deleting %d = %d, want greater", b.ID, c.ID)
		}
	})

	t.Run("explicit id advances sequence", func(t *testing.T) {
		s := open(t)
		imported := &store.Record{ID: 100, Title: "Imported", StudyID: "rs-1"}
		if err := s.Save(ctx, imported); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if imported.ID != 100 {
			t.Errorf("explicit id changed to %d", imported.ID)
		}

		next := &store.Record{Title: "Plan", StudyID: "rs-1"}
		if err := s.Save(ctx, next); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if next.ID <= 100 {
			t.Errorf("id after explicit 100 = %d, want greater", next.ID)
		}
		got, err := s.Load(ctx, 100)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got.Title != "Imported" {
			t.Errorf("record 100 overwritten: Title = %q", got.Title)
		}
	})

	t.Run("list by study", func(t *testing.T) {
		s := open(t)
		for _, r := range []store.Record{
			{Title: "a", StudyID: "rs-1"},
			{Title: "b", StudyID: "rs-2"},
			{Title: "c", StudyID: "rs-1"},
		} {
			if err := s.Save(ctx, &r); err != nil {
				t.Fatalf("Save: %v", err)
			}
		}

		recs, err := s.List(ctx, "rs-1")
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(recs) != 2 || recs[0].Title != "a" || recs[1].Title != "c" {
			t.Errorf("List(rs-1) = %+v, want a, c", recs)
		}

		all, err := s.List(ctx, "")
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("len(List()) = %d, want 3", len(all))
		}
		for i := 1; i < len(all); i++ {
			if all[i-1].ID >= all[i].ID {
				t.Errorf("List() not ordered by id: %d before %d", all[i-1].ID, all[i].ID)
			}
		}
	})
}
