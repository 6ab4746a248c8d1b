package catalog

import (
	"errors"
	"testing"

	"github.com/maruel/ksid"
)

func TestCommentService(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	col, pages, author := f.booksCollection(t, ctx)
	view, err := f.items.Create(ctx, f.owner, col.ID, "Commented", nil, &FieldValues{
		Number: map[ksid.ID]float64{pages: 7},
		Text:   map[ksid.ID]string{author: "W"},
	})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("AnyUserMayComment", func(t *testing.T) {
		c, err := f.comments.Create(ctx, f.stranger, view.Item.ID, "not my collection, still commenting")
		if err != nil {
			t.Fatal(err)
		}
		if c.AuthorID != f.stranger.ID {
			t.Errorf("AuthorID = %s, want %s", c.AuthorID, f.stranger.ID)
		}
	})

	t.Run("AnonymousMayNot", func(t *testing.T) {
		if _, err := f.comments.Create(ctx, nil, view.Item.ID, "drive-by"); !errors.Is(err, ErrNotAuthorized) {
			t.Errorf("Create() = %v, want not authorized", err)
		}
	})

	t.Run("UnknownItem", func(t *testing.T) {
		if _, err := f.comments.Create(ctx, f.owner, ksid.NewID(), "into the void"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Create() = %v, want not found", err)
		}
	})

	t.Run("DeleteIsAuthorOrAdmin", func(t *testing.T) {
		c, err := f.comments.Create(ctx, f.stranger, view.Item.ID, "temporary")
		if err != nil {
			t.Fatal(err)
		}
		// The collection owner is not the comment author.
		if err := f.comments.Delete(ctx, f.owner, c.ID); !errors.Is(err, ErrNotAuthorized) {
			t.Errorf("owner Delete() = %v, want not authorized", err)
		}
		if err := f.comments.Delete(ctx, f.stranger, c.ID); err != nil {
			t.Errorf("author Delete() = %v", err)
		}
		c2, err := f.comments.Create(ctx, f.stranger, view.Item.ID, "moderated away")
		if err != nil {
			t.Fatal(err)
		}
		if err := f.comments.Delete(ctx, f.admin, c2.ID); err != nil {
			t.Errorf("admin Delete() = %v", err)
		}
	})

	t.Run("IterByItemIsOldestFirst", func(t *testing.T) {
		first, err := f.comments.Create(ctx, f.owner, view.Item.ID, "first")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.comments.Create(ctx, f.owner, view.Item.ID, "second"); err != nil {
			t.Fatal(err)
		}
		var got []*Comment
		for c := range f.comments.IterByItem(view.Item.ID) {
			got = append(got, c)
		}
		if len(got) < 2 {
			t.Fatalf("IterByItem() returned %d comments", len(got))
		}
		if got[0].ID > got[1].ID || got[0].ID > first.ID {
			t.Errorf("comments not in ID order: %v", got)
		}
	})
}
