package catalog

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/maruel/ksid"

	"github.com/maxpn01/collectioner/internal/storage/identity"
)

// CollectionService manages collections and their lifecycle.
type CollectionService struct {
	db     *Database
	schema *SchemaService
	mirror *Mirror
}

// NewCollectionService creates a collection service.
func NewCollectionService(db *Database, schema *SchemaService, mirror *Mirror) *CollectionService {
	return &CollectionService{db: db, schema: schema, mirror: mirror}
}

// Create creates a collection owned by the requester, with an optional
// initial schema. An owner cannot have two collections with the same name.
func (s *CollectionService) Create(ctx context.Context, requester *identity.User, name, topic, description string, fields []FieldCreate) (*Collection, error) {
	if requester == nil {
		return nil, ErrNotAuthorized
	}
	for existing := range s.db.byOwner.Iter(requester.ID) {
		if strings.EqualFold(existing.Name, name) {
			return nil, fmt.Errorf("collection %q: %w", name, ErrConflict)
		}
	}
	now := time.Now()
	collection := &Collection{
		ID:          ksid.NewID(),
		OwnerID:     requester.ID,
		Name:        name,
		Topic:       topic,
		Description: description,
		Created:     now,
		Modified:    now,
	}
	if err := s.db.collections.Append(collection); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := s.schema.applyChange(collection.ID, SchemaChange{Creates: fields}); err != nil {
			// Compensate so a half-created collection never survives.
			_, _ = s.db.collections.Delete(collection.ID)
			return nil, err
		}
	}
	s.mirror.CollectionUpserted(ctx, collection)
	return collection.Clone(), nil
}

// Get retrieves a collection by ID.
func (s *CollectionService) Get(id ksid.ID) (*Collection, error) {
	collection := s.db.collections.Get(id)
	if collection == nil {
		return nil, fmt.Errorf("collection %s: %w", id, ErrNotFound)
	}
	return collection, nil
}

// Iter iterates over collections with ID greater than startID.
func (s *CollectionService) Iter(startID ksid.ID) iter.Seq[*Collection] {
	return s.db.collections.Iter(startID)
}

// IterByOwner iterates over one user's collections, in ID order.
func (s *CollectionService) IterByOwner(ownerID ksid.ID) iter.Seq[*Collection] {
	return s.db.byOwner.Iter(ownerID)
}

// Update changes a collection's metadata and, when change is non-nil,
// replaces its whole schema in the same request. Only the owner or an admin
// may update.
func (s *CollectionService) Update(ctx context.Context, requester *identity.User, id ksid.ID, name, topic, description string, change *SchemaChange) (*Collection, error) {
	existing := s.db.collections.Get(id)
	if existing == nil {
		return nil, fmt.Errorf("collection %s: %w", id, ErrNotFound)
	}
	if err := authorize(requester, existing.OwnerID); err != nil {
		return nil, err
	}
	if change != nil {
		if err := s.schema.applyChange(id, *change); err != nil {
			return nil, err
		}
	}
	collection, err := s.db.collections.Modify(id, func(c *Collection) error {
		c.Name = name
		c.Topic = topic
		c.Description = description
		c.Modified = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.mirror.CollectionUpserted(ctx, collection)
	return collection, nil
}

// Delete removes a collection and cascades: every item with its typed
// values and comments, every field definition, and the mirrored search
// documents. Only the owner or an admin may delete.
func (s *CollectionService) Delete(ctx context.Context, requester *identity.User, id ksid.ID) error {
	existing := s.db.collections.Get(id)
	if existing == nil {
		return fmt.Errorf("collection %s: %w", id, ErrNotFound)
	}
	if err := authorize(requester, existing.OwnerID); err != nil {
		return err
	}

	var items []*Item
	for item := range s.db.itemsByCol.Iter(id) {
		items = append(items, item)
	}
	for _, item := range items {
		if err := deleteItemCascade(ctx, s.db, s.mirror, item); err != nil {
			return fmt.Errorf("failed to delete item %s: %w", item.ID, err)
		}
	}
	if err := s.schema.deleteAllForCollection(id); err != nil {
		return fmt.Errorf("failed to delete fields: %w", err)
	}
	if _, err := s.db.collections.Delete(id); err != nil {
		return err
	}
	s.mirror.CollectionDeleted(ctx, id)
	return nil
}
