package search

import (
	"testing"

	"github.com/maruel/ksid"
)

func TestIndex(t *testing.T) {
	t.Run("UpsertReplacesByID", func(t *testing.T) {
		x := NewIndex()
		id := ksid.NewID()
		x.Upsert(Document{ID: id, Text: "war and peace"})
		x.Upsert(Document{ID: id, Text: "crime and punishment"})
		if got := x.Len(); got != 1 {
			t.Fatalf("Len() = %d, want 1", got)
		}
		if hits := x.Query("war"); len(hits) != 0 {
			t.Errorf("old tokens still match after replace: %v", hits)
		}
		hits := x.Query("punishment")
		if len(hits) != 1 || hits[0].ID != id {
			t.Errorf("Query(punishment) = %v, want single hit for %s", hits, id)
		}
	})

	t.Run("UpsertIsIdempotent", func(t *testing.T) {
		x := NewIndex()
		doc := Document{ID: ksid.NewID(), Text: "the hobbit"}
		x.Upsert(doc)
		x.Upsert(doc)
		if got := x.Len(); got != 1 {
			t.Fatalf("Len() = %d, want 1", got)
		}
		if hits := x.Query("hobbit"); len(hits) != 1 {
			t.Errorf("Query(hobbit) returned %d hits, want 1", len(hits))
		}
	})

	t.Run("DeleteUnknownIsNoop", func(t *testing.T) {
		x := NewIndex()
		x.Upsert(Document{ID: ksid.NewID(), Text: "dune"})
		x.Delete(ksid.NewID())
		if got := x.Len(); got != 1 {
			t.Errorf("Len() = %d, want 1", got)
		}
	})

	t.Run("DeleteRemovesTokens", func(t *testing.T) {
		x := NewIndex()
		id := ksid.NewID()
		x.Upsert(Document{ID: id, Text: "neuromancer"})
		x.Delete(id)
		if hits := x.Query("neuromancer"); len(hits) != 0 {
			t.Errorf("deleted document still matches: %v", hits)
		}
	})

	t.Run("AllTokensMustMatch", func(t *testing.T) {
		x := NewIndex()
		x.Upsert(Document{ID: ksid.NewID(), Text: "red dwarf"})
		x.Upsert(Document{ID: ksid.NewID(), Text: "red mars"})
		hits := x.Query("red dwarf")
		if len(hits) != 1 {
			t.Fatalf("Query(red dwarf) returned %d hits, want 1", len(hits))
		}
	})

	t.Run("LastTokenPrefixMatches", func(t *testing.T) {
		x := NewIndex()
		id := ksid.NewID()
		x.Upsert(Document{ID: id, Text: "foundation"})
		hits := x.Query("foun")
		if len(hits) != 1 || hits[0].ID != id {
			t.Errorf("Query(foun) = %v, want prefix hit", hits)
		}
	})

	t.Run("ExactBeatsPrefix", func(t *testing.T) {
		x := NewIndex()
		exact := ksid.NewID()
		prefixed := ksid.NewID()
		x.Upsert(Document{ID: exact, Text: "ring"})
		x.Upsert(Document{ID: prefixed, Text: "ringworld"})
		hits := x.Query("ring")
		if len(hits) != 2 {
			t.Fatalf("Query(ring) returned %d hits, want 2", len(hits))
		}
		if hits[0].ID != exact {
			t.Errorf("exact match not ranked first: %v", hits)
		}
	})

	t.Run("RefIsCarried", func(t *testing.T) {
		x := NewIndex()
		id, ref := ksid.NewID(), ksid.NewID()
		x.Upsert(Document{ID: id, Ref: ref, Text: "great book"})
		hits := x.Query("great")
		if len(hits) != 1 || hits[0].Ref != ref {
			t.Errorf("Query(great) = %v, want Ref %s", hits, ref)
		}
	})

	t.Run("EmptyQuery", func(t *testing.T) {
		x := NewIndex()
		x.Upsert(Document{ID: ksid.NewID(), Text: "anything"})
		if hits := x.Query("  \t "); hits != nil {
			t.Errorf("Query(blank) = %v, want nil", hits)
		}
	})

	t.Run("TokenizeCaseAndPunctuation", func(t *testing.T) {
		got := Tokenize("Hello, World! 42nd")
		want := []string{"hello", "world", "42nd"}
		if len(got) != len(want) {
			t.Fatalf("Tokenize = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Tokenize[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})
}

func TestEngine(t *testing.T) {
	ctx := t.Context()
	e := NewEngine("collections", "items", "comments")

	t.Run("UnknownIndex", func(t *testing.T) {
		if err := e.Upsert(ctx, "nope", Document{ID: ksid.NewID(), Text: "x"}); err == nil {
			t.Error("Upsert on unknown index did not fail")
		}
		if _, err := e.Query(ctx, "nope", "x"); err == nil {
			t.Error("Query on unknown index did not fail")
		}
		if _, err := e.MultiQuery(ctx, "x", "items", "nope"); err == nil {
			t.Error("MultiQuery with unknown index did not fail")
		}
	})

	t.Run("IndexesAreIsolated", func(t *testing.T) {
		id := ksid.NewID()
		if err := e.Upsert(ctx, "items", Document{ID: id, Text: "solaris"}); err != nil {
			t.Fatal(err)
		}
		hits, err := e.Query(ctx, "collections", "solaris")
		if err != nil {
			t.Fatal(err)
		}
		if len(hits) != 0 {
			t.Errorf("document leaked across indexes: %v", hits)
		}
	})

	t.Run("MultiQuery", func(t *testing.T) {
		colID, itemID, commentID := ksid.NewID(), ksid.NewID(), ksid.NewID()
		for _, tc := range []struct {
			index string
			doc   Document
		}{
			{"collections", Document{ID: colID, Text: "vintage cars"}},
			{"items", Document{ID: itemID, Text: "vintage poster"}},
			{"comments", Document{ID: commentID, Ref: itemID, Text: "lovely vintage find"}},
		} {
			if err := e.Upsert(ctx, tc.index, tc.doc); err != nil {
				t.Fatal(err)
			}
		}
		got, err := e.MultiQuery(ctx, "vintage", "collections", "items", "comments")
		if err != nil {
			t.Fatal(err)
		}
		for _, name := range []string{"collections", "items", "comments"} {
			if len(got[name]) != 1 {
				t.Errorf("MultiQuery[%s] = %v, want 1 hit", name, got[name])
			}
		}
	})
}
