package catalog

import (
	"errors"
	"testing"

	"github.com/maruel/ksid"
)

func TestCollectionService(t *testing.T) {
	ctx := t.Context()

	t.Run("CreateAndGet", func(t *testing.T) {
		f := newFixture(t)
		col, _, _ := f.booksCollection(t, ctx)
		got, err := f.collections.Get(col.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != "Books" || got.OwnerID != f.owner.ID {
			t.Errorf("Get() = %+v", got)
		}
		if n := len(f.schema.FieldsFor(col.ID)); n != 2 {
			t.Errorf("FieldsFor() returned %d fields, want 2", n)
		}
	})

	t.Run("DuplicateNamePerOwner", func(t *testing.T) {
		f := newFixture(t)
		f.booksCollection(t, ctx)
		if _, err := f.collections.Create(ctx, f.owner, "books", "", "", nil); !errors.Is(err, ErrConflict) {
			t.Errorf("Create() = %v, want conflict", err)
		}
		// A different owner can reuse the name.
		if _, err := f.collections.Create(ctx, f.stranger, "Books", "", "", nil); err != nil {
			t.Errorf("Create() by other owner = %v", err)
		}
	})

	t.Run("IterByOwner", func(t *testing.T) {
		f := newFixture(t)
		f.booksCollection(t, ctx)
		if _, err := f.collections.Create(ctx, f.stranger, "Coins", "coins", "", nil); err != nil {
			t.Fatal(err)
		}
		count := 0
		for col := range f.collections.IterByOwner(f.owner.ID) {
			if col.OwnerID != f.owner.ID {
				t.Errorf("foreign collection in owner iteration: %+v", col)
			}
			count++
		}
		if count != 1 {
			t.Errorf("owner has %d collections, want 1", count)
		}
	})

	t.Run("UpdateMetadataAndSchema", func(t *testing.T) {
		f := newFixture(t)
		col, pages, _ := f.booksCollection(t, ctx)
		updated, err := f.collections.Update(ctx, f.owner, col.ID, "Library", "books", "renamed", &SchemaChange{
			Updates: []FieldUpdate{{ID: pages, Name: "page count", Type: FieldNumber}},
			Creates: []FieldCreate{{Name: "rating", Type: FieldNumber}},
		})
		if err != nil {
			t.Fatal(err)
		}
		if updated.Name != "Library" {
			t.Errorf("Name = %q", updated.Name)
		}
		fields := f.schema.FieldsFor(col.ID)
		if len(fields) != 3 {
			t.Fatalf("FieldsFor() returned %d fields, want 3", len(fields))
		}
		if fields[0].Name != "page count" {
			t.Errorf("renamed field = %q", fields[0].Name)
		}
	})

	t.Run("SchemaChangeRejectsForeignField", func(t *testing.T) {
		f := newFixture(t)
		col, _, _ := f.booksCollection(t, ctx)
		other, err := f.collections.Create(ctx, f.owner, "Coins", "", "", []FieldCreate{{Name: "year", Type: FieldNumber}})
		if err != nil {
			t.Fatal(err)
		}
		year := f.schema.FieldsFor(other.ID)[0].ID
		_, err = f.schema.ApplyChange(f.owner, col.ID, SchemaChange{
			Updates: []FieldUpdate{{ID: year, Name: "stolen", Type: FieldNumber}},
		})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("ApplyChange() = %v, want not found", err)
		}
	})

	t.Run("ReTypingKeepsOldValueRows", func(t *testing.T) {
		f := newFixture(t)
		col, pages, author := f.booksCollection(t, ctx)
		view, err := f.items.Create(ctx, f.owner, col.ID, "Typed", nil, &FieldValues{
			Number: map[ksid.ID]float64{pages: 42},
			Text:   map[ksid.ID]string{author: "E"},
		})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.schema.ApplyChange(f.owner, col.ID, SchemaChange{
			Updates: []FieldUpdate{{ID: pages, Name: "pages", Type: FieldText}},
		}); err != nil {
			t.Fatal(err)
		}
		// The old number row stays in its store; it is just no longer
		// what the schema asks for.
		got, err := f.items.Get(view.Item.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Values.Number[pages] != 42 {
			t.Errorf("re-typing migrated the value rows: %+v", got.Values)
		}
		if err := validateValues(f.schema.FieldsFor(col.ID), got.Values); !errors.Is(err, ErrSchemaMismatch) {
			t.Errorf("stored payload still validates after re-typing: %v", err)
		}
	})

	t.Run("AuthorizationMatrix", func(t *testing.T) {
		f := newFixture(t)
		col, _, _ := f.booksCollection(t, ctx)
		if _, err := f.collections.Update(ctx, f.stranger, col.ID, "X", "", "", nil); !errors.Is(err, ErrNotAuthorized) {
			t.Errorf("stranger Update() = %v, want not authorized", err)
		}
		if err := f.collections.Delete(ctx, f.stranger, col.ID); !errors.Is(err, ErrNotAuthorized) {
			t.Errorf("stranger Delete() = %v, want not authorized", err)
		}
		if err := f.collections.Delete(ctx, f.admin, col.ID); err != nil {
			t.Errorf("admin Delete() = %v", err)
		}
	})

	t.Run("DeleteCascades", func(t *testing.T) {
		f := newFixture(t)
		col, pages, author := f.booksCollection(t, ctx)
		view, err := f.items.Create(ctx, f.owner, col.ID, "Snow Crash", nil, &FieldValues{
			Number: map[ksid.ID]float64{pages: 440},
			Text:   map[ksid.ID]string{author: "Stephenson"},
		})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.comments.Create(ctx, f.stranger, view.Item.ID, "classic"); err != nil {
			t.Fatal(err)
		}
		if err := f.collections.Delete(ctx, f.owner, col.ID); err != nil {
			t.Fatal(err)
		}
		if f.db.items.Len() != 0 || f.db.fields.Len() != 0 || f.db.comments.Len() != 0 {
			t.Error("cascade left rows behind")
		}
		if f.db.values.number.table.Len() != 0 || f.db.values.text.table.Len() != 0 {
			t.Error("cascade left typed values behind")
		}
		for index, query := range map[string]string{
			IndexCollections: "books",
			IndexItems:       "snow",
			IndexComments:    "classic",
		} {
			hits, err := f.engine.Query(ctx, index, query)
			if err != nil {
				t.Fatal(err)
			}
			if len(hits) != 0 {
				t.Errorf("cascade left documents in %s: %v", index, hits)
			}
		}
	})
}
