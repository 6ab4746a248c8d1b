package catalog

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/maruel/ksid"

	"github.com/maxpn01/collectioner/internal/storage/identity"
)

// ItemView is an item together with its full typed value payload.
type ItemView struct {
	Item   *Item
	Values *FieldValues
}

// ItemService manages items and their typed values. Writes span the item
// table and up to five value tables; a partial failure is compensated so a
// half-written item never survives.
type ItemService struct {
	db     *Database
	schema *SchemaService
	mirror *Mirror
}

// NewItemService creates an item service.
func NewItemService(db *Database, schema *SchemaService, mirror *Mirror) *ItemService {
	return &ItemService{db: db, schema: schema, mirror: mirror}
}

// Create adds an item to a collection. The value payload must match the
// collection schema exactly (see validateValues). Only the collection owner
// or an admin may add items.
func (s *ItemService) Create(ctx context.Context, requester *identity.User, collectionID ksid.ID, name string, tags []string, values *FieldValues) (*ItemView, error) {
	collection := s.db.collections.Get(collectionID)
	if collection == nil {
		return nil, fmt.Errorf("collection %s: %w", collectionID, ErrNotFound)
	}
	if err := authorize(requester, collection.OwnerID); err != nil {
		return nil, err
	}
	if values == nil {
		values = &FieldValues{}
	}
	if err := validateValues(s.schema.FieldsFor(collectionID), values); err != nil {
		return nil, err
	}

	now := time.Now()
	item := &Item{
		ID:           ksid.NewID(),
		CollectionID: collectionID,
		Name:         name,
		Tags:         slices.Clone(tags),
		Created:      now,
		Modified:     now,
	}
	if err := s.db.items.Append(item); err != nil {
		return nil, err
	}
	written, err := s.db.values.writeAll(item.ID, values)
	if err != nil {
		// Compensate: undo the value rows already written and the item
		// row, then surface the original failure.
		if cerr := s.db.values.compensate(written); cerr != nil {
			return nil, fmt.Errorf("failed to write values (compensation also failed: %v): %w", cerr, err)
		}
		if _, derr := s.db.items.Delete(item.ID); derr != nil {
			return nil, fmt.Errorf("failed to write values (compensation also failed: %v): %w", derr, err)
		}
		return nil, fmt.Errorf("failed to write values: %w", err)
	}
	s.mirror.ItemUpserted(ctx, item, values)
	return &ItemView{Item: item.Clone(), Values: values}, nil
}

// Get retrieves an item with its full value payload.
func (s *ItemService) Get(id ksid.ID) (*ItemView, error) {
	item := s.db.items.Get(id)
	if item == nil {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return &ItemView{Item: item, Values: s.db.values.readAll(id)}, nil
}

// IterByCollection iterates over a collection's items, oldest first.
func (s *ItemService) IterByCollection(collectionID ksid.ID) iter.Seq[*Item] {
	return s.db.itemsByCol.Iter(collectionID)
}

// Update replaces an item's name, tags and whole value payload. The payload
// is validated against the collection's current schema; all previous value
// rows are replaced. A failure partway through the replace is compensated
// by rewriting the prior payload and item row, so the item never survives
// with a partial value set. Concurrent updates are last-writer-wins. Only
// the collection owner or an admin may update.
func (s *ItemService) Update(ctx context.Context, requester *identity.User, id ksid.ID, name string, tags []string, values *FieldValues) (*ItemView, error) {
	existing := s.db.items.Get(id)
	if existing == nil {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	collection := s.db.collections.Get(existing.CollectionID)
	if collection == nil {
		return nil, fmt.Errorf("collection %s: %w", existing.CollectionID, ErrNotFound)
	}
	if err := authorize(requester, collection.OwnerID); err != nil {
		return nil, err
	}
	if values == nil {
		values = &FieldValues{}
	}
	if err := validateValues(s.schema.FieldsFor(existing.CollectionID), values); err != nil {
		return nil, err
	}

	prior := s.db.values.readAll(id)
	item, err := s.db.items.Modify(id, func(i *Item) error {
		i.Name = name
		i.Tags = slices.Clone(tags)
		i.Modified = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.db.values.deleteAllForItem(id); err != nil {
		return nil, s.compensateReplace(id, existing, prior, nil, err)
	}
	written, err := s.db.values.writeAll(id, values)
	if err != nil {
		return nil, s.compensateReplace(id, existing, prior, written, err)
	}
	s.mirror.ItemUpserted(ctx, item, values)
	return &ItemView{Item: item, Values: values}, nil
}

// compensateReplace undoes a failed whole-payload replace: rows written by
// the new payload are removed, the prior payload is put back and the item
// row is restored to its pre-update state. The original failure surfaces
// either way.
func (s *ItemService) compensateReplace(id ksid.ID, prevItem *Item, prior *FieldValues, written []writtenRow, cause error) error {
	if cerr := s.db.values.compensate(written); cerr != nil {
		return fmt.Errorf("failed to replace values (compensation also failed: %v): %w", cerr, cause)
	}
	if _, rerr := s.db.values.writeAll(id, prior); rerr != nil {
		return fmt.Errorf("failed to replace values (compensation also failed: %v): %w", rerr, cause)
	}
	if _, uerr := s.db.items.Update(prevItem); uerr != nil {
		return fmt.Errorf("failed to replace values (compensation also failed: %v): %w", uerr, cause)
	}
	return fmt.Errorf("failed to replace values: %w", cause)
}

// Delete removes an item, its typed values across all five stores, its
// comments and its search documents. Only the collection owner or an admin
// may delete.
func (s *ItemService) Delete(ctx context.Context, requester *identity.User, id ksid.ID) error {
	existing := s.db.items.Get(id)
	if existing == nil {
		return fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	collection := s.db.collections.Get(existing.CollectionID)
	if collection == nil {
		return fmt.Errorf("collection %s: %w", existing.CollectionID, ErrNotFound)
	}
	if err := authorize(requester, collection.OwnerID); err != nil {
		return err
	}
	return deleteItemCascade(ctx, s.db, s.mirror, existing)
}

// deleteItemCascade removes one item and everything hanging off it: typed
// value rows, comments, and mirrored search documents. Shared with the
// collection delete cascade.
func deleteItemCascade(ctx context.Context, db *Database, mirror *Mirror, item *Item) error {
	if err := db.values.deleteAllForItem(item.ID); err != nil {
		return err
	}
	var commentIDs []ksid.ID
	for c := range db.commentsByIt.Iter(item.ID) {
		commentIDs = append(commentIDs, c.ID)
	}
	for _, cid := range commentIDs {
		if _, err := db.comments.Delete(cid); err != nil {
			return err
		}
		mirror.CommentDeleted(ctx, cid)
	}
	if _, err := db.items.Delete(item.ID); err != nil {
		return err
	}
	mirror.ItemDeleted(ctx, item.ID)
	return nil
}
