package catalog

import (
	"testing"

	"github.com/maruel/ksid"
)

func TestSearchService(t *testing.T) {
	ctx := t.Context()

	t.Run("DirectItemHit", func(t *testing.T) {
		f := newFixture(t)
		col, pages, author := f.booksCollection(t, ctx)
		view, err := f.items.Create(ctx, f.owner, col.ID, "Anathem", nil, &FieldValues{
			Number: map[ksid.ID]float64{pages: 937},
			Text:   map[ksid.ID]string{author: "Stephenson"},
		})
		if err != nil {
			t.Fatal(err)
		}
		got, err := f.search.Query(ctx, "anathem")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].ID != view.Item.ID {
			t.Fatalf("Query() = %v, want the item", got)
		}
		if got[0].Name != "Anathem" || got[0].CollectionID != col.ID {
			t.Errorf("summary = %+v", got[0])
		}
	})

	t.Run("TextFieldContentMatches", func(t *testing.T) {
		f := newFixture(t)
		col, pages, author := f.booksCollection(t, ctx)
		view, err := f.items.Create(ctx, f.owner, col.ID, "Untitled", nil, &FieldValues{
			Number: map[ksid.ID]float64{pages: 1},
			Text:   map[ksid.ID]string{author: "Borges"},
		})
		if err != nil {
			t.Fatal(err)
		}
		got, err := f.search.Query(ctx, "borges")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].ID != view.Item.ID {
			t.Errorf("Query() = %v, want hit on text field content", got)
		}
	})

	t.Run("CollectionHitYieldsOldestItem", func(t *testing.T) {
		f := newFixture(t)
		col, pages, author := f.booksCollection(t, ctx)
		payload := func(n float64) *FieldValues {
			return &FieldValues{
				Number: map[ksid.ID]float64{pages: n},
				Text:   map[ksid.ID]string{author: "Z"},
			}
		}
		first, err := f.items.Create(ctx, f.owner, col.ID, "Alpha", nil, payload(1))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.items.Create(ctx, f.owner, col.ID, "Beta", nil, payload(2)); err != nil {
			t.Fatal(err)
		}
		// "library" only appears in the collection description.
		got, err := f.search.Query(ctx, "library")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].ID != first.Item.ID {
			t.Errorf("Query() = %v, want one representative (the oldest item)", got)
		}
	})

	t.Run("CommentHitYieldsItem", func(t *testing.T) {
		f := newFixture(t)
		col, pages, author := f.booksCollection(t, ctx)
		view, err := f.items.Create(ctx, f.owner, col.ID, "Quiet", nil, &FieldValues{
			Number: map[ksid.ID]float64{pages: 3},
			Text:   map[ksid.ID]string{author: "Y"},
		})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.comments.Create(ctx, f.stranger, view.Item.ID, "absolutely riveting"); err != nil {
			t.Fatal(err)
		}
		got, err := f.search.Query(ctx, "riveting")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].ID != view.Item.ID {
			t.Errorf("Query() = %v, want comment-derived item", got)
		}
	})

	t.Run("DeduplicatesAcrossIndexes", func(t *testing.T) {
		// One item reachable through all three paths (its own name, its
		// collection, a comment) must appear exactly once.
		f := newFixture(t)
		col, err := f.collections.Create(ctx, f.owner, "Vintage", "vintage things", "", []FieldCreate{
			{Name: "era", Type: FieldText},
		})
		if err != nil {
			t.Fatal(err)
		}
		era := f.schema.FieldsFor(col.ID)[0].ID
		view, err := f.items.Create(ctx, f.owner, col.ID, "Vintage radio", nil, &FieldValues{
			Text: map[ksid.ID]string{era: "1950s"},
		})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.comments.Create(ctx, f.stranger, view.Item.ID, "great vintage find"); err != nil {
			t.Fatal(err)
		}
		got, err := f.search.Query(ctx, "vintage")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 {
			t.Fatalf("Query() returned %d results, want 1: %v", len(got), got)
		}
		if got[0].ID != view.Item.ID {
			t.Errorf("Query() = %v, want the item once", got)
		}
	})

	t.Run("NoMatches", func(t *testing.T) {
		f := newFixture(t)
		f.booksCollection(t, ctx)
		got, err := f.search.Query(ctx, "zzzz")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Errorf("Query() = %v, want empty", got)
		}
	})
}

func TestTagService(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	col, pages, author := f.booksCollection(t, ctx)
	payload := func(n float64) *FieldValues {
		return &FieldValues{
			Number: map[ksid.ID]float64{pages: n},
			Text:   map[ksid.ID]string{author: "T"},
		}
	}
	for i, tags := range [][]string{
		{"scifi", "space"},
		{"scifi", "cyberpunk"},
		{"history"},
	} {
		if _, err := f.items.Create(ctx, f.owner, col.ID, "Book"+string(rune('A'+i)), tags, payload(float64(i))); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("AllIsSortedAndDistinct", func(t *testing.T) {
		got := f.tags.All()
		want := []string{"cyberpunk", "history", "scifi", "space"}
		if len(got) != len(want) {
			t.Fatalf("All() = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("All()[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("StartingWith", func(t *testing.T) {
		got := f.tags.StartingWith("s")
		want := []string{"scifi", "space"}
		if len(got) != len(want) {
			t.Fatalf("StartingWith(s) = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("StartingWith(s)[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("StartingWithIsCaseInsensitive", func(t *testing.T) {
		if got := f.tags.StartingWith("SCI"); len(got) != 1 || got[0] != "scifi" {
			t.Errorf("StartingWith(SCI) = %v, want [scifi]", got)
		}
	})

	t.Run("StartingWithLimit", func(t *testing.T) {
		for i := range 15 {
			name := "prefix" + string(rune('a'+i))
			if _, err := f.items.Create(ctx, f.owner, col.ID, "Tagged "+name, []string{name}, payload(float64(100+i))); err != nil {
				t.Fatal(err)
			}
		}
		if got := f.tags.StartingWith("prefix"); len(got) != tagSuggestionLimit {
			t.Errorf("StartingWith(prefix) returned %d tags, want %d", len(got), tagSuggestionLimit)
		}
	})
}
