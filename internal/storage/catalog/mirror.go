// Mirrors canonical writes into the full-text engine, best-effort.

package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/maruel/ksid"

	"github.com/maxpn01/collectioner/internal/search"
)

// Search index names. One index per entity kind.
const (
	IndexCollections = "collections"
	IndexItems       = "items"
	IndexComments    = "comments"
)

// SearchIndex is the write side of the full-text engine.
type SearchIndex interface {
	Upsert(ctx context.Context, index string, doc search.Document) error
	Delete(ctx context.Context, index string, id ksid.ID) error
}

// Mirror pushes denormalized documents into the search engine after
// canonical writes. Index documents are projections, never the source of
// truth, so every failure here is logged and absorbed; a mirror failure
// must not fail or roll back the canonical write. This is the only place
// in the package where errors are intentionally swallowed.
type Mirror struct {
	index SearchIndex
}

// NewMirror creates a mirror over the given search index.
func NewMirror(index SearchIndex) *Mirror {
	return &Mirror{index: index}
}

// Rebuild re-projects every collection, item and comment into the engine.
// The engine is in-memory, so this runs once at startup.
func (m *Mirror) Rebuild(ctx context.Context, db *Database) {
	for c := range db.collections.Iter(0) {
		m.CollectionUpserted(ctx, c)
	}
	for item := range db.items.Iter(0) {
		m.ItemUpserted(ctx, item, db.values.readAll(item.ID))
	}
	for c := range db.comments.Iter(0) {
		m.CommentUpserted(ctx, c)
	}
}

// CollectionUpserted projects a collection into the collections index.
func (m *Mirror) CollectionUpserted(ctx context.Context, c *Collection) {
	text := strings.TrimSpace(c.Name + " " + c.Topic + " " + c.Description)
	err := m.index.Upsert(ctx, IndexCollections, search.Document{ID: c.ID, Text: text})
	if err != nil {
		slog.ErrorContext(ctx, "failed to mirror collection", "id", c.ID, "error", err)
	}
}

// CollectionDeleted removes a collection from the collections index.
func (m *Mirror) CollectionDeleted(ctx context.Context, id ksid.ID) {
	if err := m.index.Delete(ctx, IndexCollections, id); err != nil {
		slog.ErrorContext(ctx, "failed to unmirror collection", "id", id, "error", err)
	}
}

// ItemUpserted projects an item into the items index. Text fields are
// folded into the document so their content is searchable.
func (m *Mirror) ItemUpserted(ctx context.Context, item *Item, values *FieldValues) {
	parts := append([]string{item.Name}, item.Tags...)
	if values != nil {
		for _, v := range values.Text {
			parts = append(parts, v)
		}
		for _, v := range values.Multiline {
			parts = append(parts, v)
		}
	}
	doc := search.Document{ID: item.ID, Ref: item.CollectionID, Text: strings.Join(parts, " ")}
	if err := m.index.Upsert(ctx, IndexItems, doc); err != nil {
		slog.ErrorContext(ctx, "failed to mirror item", "id", item.ID, "error", err)
	}
}

// ItemDeleted removes an item from the items index.
func (m *Mirror) ItemDeleted(ctx context.Context, id ksid.ID) {
	if err := m.index.Delete(ctx, IndexItems, id); err != nil {
		slog.ErrorContext(ctx, "failed to unmirror item", "id", id, "error", err)
	}
}

// CommentUpserted projects a comment into the comments index. Ref carries
// the item the comment is on so search can resolve comment hits to items.
func (m *Mirror) CommentUpserted(ctx context.Context, c *Comment) {
	doc := search.Document{ID: c.ID, Ref: c.ItemID, Text: c.Text}
	if err := m.index.Upsert(ctx, IndexComments, doc); err != nil {
		slog.ErrorContext(ctx, "failed to mirror comment", "id", c.ID, "error", err)
	}
}

// CommentDeleted removes a comment from the comments index.
func (m *Mirror) CommentDeleted(ctx context.Context, id ksid.ID) {
	if err := m.index.Delete(ctx, IndexComments, id); err != nil {
		slog.ErrorContext(ctx, "failed to unmirror comment", "id", id, "error", err)
	}
}
