package jsonldb

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/maruel/ksid"
)

type record struct {
	ID   ksid.ID `json:"id"`
	Name string  `json:"name"`
}

func (r *record) Clone() *record {
	c := *r
	return &c
}

func (r *record) GetID() ksid.ID {
	return r.ID
}

func (r *record) Validate() error {
	if r.ID.IsZero() {
		return errors.New("id is required")
	}
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func newTestTable(t *testing.T) (*Table[*record], string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.jsonl")
	table, err := NewTable[*record](path)
	if err != nil {
		t.Fatal(err)
	}
	return table, path
}

func TestTable(t *testing.T) {
	t.Run("AppendAndGet", func(t *testing.T) {
		table, _ := newTestTable(t)
		r := &record{ID: ksid.NewID(), Name: "a"}
		if err := table.Append(r); err != nil {
			t.Fatal(err)
		}
		got := table.Get(r.ID)
		if got == nil || got.Name != "a" {
			t.Errorf("Get() = %+v", got)
		}
		// Returned rows are clones; mutating one must not leak.
		got.Name = "mutated"
		if table.Get(r.ID).Name != "a" {
			t.Error("mutation of a returned row leaked into the table")
		}
	})

	t.Run("AppendValidates", func(t *testing.T) {
		table, _ := newTestTable(t)
		if err := table.Append(&record{ID: ksid.NewID()}); err == nil {
			t.Error("Append() accepted an invalid row")
		}
		if table.Len() != 0 {
			t.Errorf("Len() = %d after rejected append", table.Len())
		}
	})

	t.Run("AppendRejectsDuplicateID", func(t *testing.T) {
		table, _ := newTestTable(t)
		r := &record{ID: ksid.NewID(), Name: "a"}
		if err := table.Append(r); err != nil {
			t.Fatal(err)
		}
		if err := table.Append(r); !errors.Is(err, ErrDuplicateID) {
			t.Errorf("Append() = %v, want duplicate ID", err)
		}
	})

	t.Run("UpdateRewrites", func(t *testing.T) {
		table, _ := newTestTable(t)
		r := &record{ID: ksid.NewID(), Name: "a"}
		if err := table.Append(r); err != nil {
			t.Fatal(err)
		}
		r.Name = "b"
		updated, err := table.Update(r)
		if err != nil {
			t.Fatal(err)
		}
		if updated.Name != "b" || table.Get(r.ID).Name != "b" {
			t.Error("update not applied")
		}
	})

	t.Run("UpdateUnknownID", func(t *testing.T) {
		table, _ := newTestTable(t)
		_, err := table.Update(&record{ID: ksid.NewID(), Name: "ghost"})
		if !errors.Is(err, ErrRowNotFound) {
			t.Errorf("Update() = %v, want row not found", err)
		}
	})

	t.Run("Modify", func(t *testing.T) {
		table, _ := newTestTable(t)
		r := &record{ID: ksid.NewID(), Name: "a"}
		if err := table.Append(r); err != nil {
			t.Fatal(err)
		}
		got, err := table.Modify(r.ID, func(row *record) error {
			row.Name = "modified"
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != "modified" {
			t.Errorf("Modify() = %+v", got)
		}
	})

	t.Run("ModifyRejectsIDChange", func(t *testing.T) {
		table, _ := newTestTable(t)
		r := &record{ID: ksid.NewID(), Name: "a"}
		if err := table.Append(r); err != nil {
			t.Fatal(err)
		}
		_, err := table.Modify(r.ID, func(row *record) error {
			row.ID = ksid.NewID()
			return nil
		})
		if err == nil {
			t.Error("Modify() accepted an ID change")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		table, _ := newTestTable(t)
		a := &record{ID: ksid.NewID(), Name: "a"}
		b := &record{ID: ksid.NewID(), Name: "b"}
		if err := table.AppendMany([]*record{a, b}); err != nil {
			t.Fatal(err)
		}
		deleted, err := table.Delete(a.ID)
		if err != nil {
			t.Fatal(err)
		}
		if deleted.Name != "a" {
			t.Errorf("Delete() = %+v", deleted)
		}
		if table.Get(a.ID) != nil {
			t.Error("deleted row still readable")
		}
		if table.Get(b.ID) == nil {
			t.Error("surviving row lost after delete")
		}
		if _, err := table.Delete(a.ID); !errors.Is(err, ErrRowNotFound) {
			t.Errorf("second Delete() = %v, want row not found", err)
		}
	})

	t.Run("PersistsAcrossReopen", func(t *testing.T) {
		table, path := newTestTable(t)
		a := &record{ID: ksid.NewID(), Name: "a"}
		b := &record{ID: ksid.NewID(), Name: "b"}
		if err := table.AppendMany([]*record{a, b}); err != nil {
			t.Fatal(err)
		}
		if _, err := table.Modify(a.ID, func(row *record) error {
			row.Name = "a2"
			return nil
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := table.Delete(b.ID); err != nil {
			t.Fatal(err)
		}

		reopened, err := NewTable[*record](path)
		if err != nil {
			t.Fatal(err)
		}
		if reopened.Len() != 1 {
			t.Fatalf("reopened Len() = %d, want 1", reopened.Len())
		}
		if got := reopened.Get(a.ID); got == nil || got.Name != "a2" {
			t.Errorf("reopened Get() = %+v", got)
		}
	})

	t.Run("IterIsOrderedAndResumable", func(t *testing.T) {
		table, _ := newTestTable(t)
		var ids []ksid.ID
		for i := 0; i < 5; i++ {
			r := &record{ID: ksid.NewID(), Name: "row"}
			if err := table.Append(r); err != nil {
				t.Fatal(err)
			}
			ids = append(ids, r.ID)
		}
		var got []ksid.ID
		for r := range table.Iter(ids[1]) {
			got = append(got, r.ID)
		}
		if len(got) != 3 {
			t.Fatalf("Iter() yielded %d rows, want 3", len(got))
		}
		for i, id := range got {
			if id != ids[i+2] {
				t.Errorf("Iter()[%d] = %s, want %s", i, id, ids[i+2])
			}
		}
	})

	t.Run("UpdateManyIsAllOrNothing", func(t *testing.T) {
		table, _ := newTestTable(t)
		a := &record{ID: ksid.NewID(), Name: "a"}
		if err := table.Append(a); err != nil {
			t.Fatal(err)
		}
		a.Name = "a2"
		ghost := &record{ID: ksid.NewID(), Name: "ghost"}
		if _, err := table.UpdateMany([]*record{a, ghost}); !errors.Is(err, ErrRowNotFound) {
			t.Fatalf("UpdateMany() = %v, want row not found", err)
		}
		if table.Get(a.ID).Name != "a" {
			t.Error("failed batch applied a partial update")
		}
	})
}
