// Package catalog implements user-owned collections of typed items.
//
// Each collection carries an owner-defined schema of field definitions.
// Item values live in five parallel typed stores (one per field type) and
// must match the schema exactly on every write. Mutations are mirrored
// best-effort into a full-text engine; the canonical JSONL tables stay the
// system of record.
package catalog

import (
	"errors"
	"slices"
	"time"

	"github.com/maruel/ksid"
)

// FieldType enumerates the supported field value types.
type FieldType string

// Supported field types.
const (
	FieldNumber    FieldType = "number"
	FieldText      FieldType = "text"
	FieldMultiline FieldType = "multiline_text"
	FieldCheckbox  FieldType = "checkbox"
	FieldDate      FieldType = "date"
)

// FieldTypes lists every supported type, in display order.
var FieldTypes = [...]FieldType{FieldNumber, FieldText, FieldMultiline, FieldCheckbox, FieldDate}

// Valid reports whether t is a supported field type.
func (t FieldType) Valid() bool {
	return slices.Contains(FieldTypes[:], t)
}

// Collection is a user-owned set of items sharing one schema.
type Collection struct {
	ID          ksid.ID   `json:"id" jsonschema:"description=Unique collection identifier"`
	OwnerID     ksid.ID   `json:"owner_id" jsonschema:"description=User who owns the collection"`
	Name        string    `json:"name" jsonschema:"description=Collection display name"`
	Topic       string    `json:"topic,omitempty" jsonschema:"description=Collection topic (books/coins/etc)"`
	Description string    `json:"description,omitempty" jsonschema:"description=Free-form description"`
	Created     time.Time `json:"created" jsonschema:"description=Creation timestamp"`
	Modified    time.Time `json:"modified" jsonschema:"description=Last modification timestamp"`
}

// Clone returns a deep copy of the collection.
func (c *Collection) Clone() *Collection {
	cp := *c
	return &cp
}

// GetID returns the collection's ID.
func (c *Collection) GetID() ksid.ID {
	return c.ID
}

// Validate checks that the collection is well-formed.
func (c *Collection) Validate() error {
	if c.ID.IsZero() {
		return errIDRequired
	}
	if c.OwnerID.IsZero() {
		return errOwnerRequired
	}
	if c.Name == "" {
		return errNameRequired
	}
	return nil
}

// FieldDefinition is one schema entry of a collection.
type FieldDefinition struct {
	ID           ksid.ID   `json:"id" jsonschema:"description=Unique field identifier"`
	CollectionID ksid.ID   `json:"collection_id" jsonschema:"description=Collection this field belongs to"`
	Name         string    `json:"name" jsonschema:"description=Field display name"`
	Type         FieldType `json:"type" jsonschema:"description=Field value type"`
	Created      time.Time `json:"created" jsonschema:"description=Creation timestamp"`
}

// Clone returns a deep copy of the field definition.
func (f *FieldDefinition) Clone() *FieldDefinition {
	cp := *f
	return &cp
}

// GetID returns the field definition's ID.
func (f *FieldDefinition) GetID() ksid.ID {
	return f.ID
}

// Validate checks that the field definition is well-formed.
func (f *FieldDefinition) Validate() error {
	if f.ID.IsZero() {
		return errIDRequired
	}
	if f.CollectionID.IsZero() {
		return errCollectionRequired
	}
	if f.Name == "" {
		return errNameRequired
	}
	if !f.Type.Valid() {
		return errBadFieldType
	}
	return nil
}

// Item is a single entry of a collection.
type Item struct {
	ID           ksid.ID   `json:"id" jsonschema:"description=Unique item identifier"`
	CollectionID ksid.ID   `json:"collection_id" jsonschema:"description=Collection this item belongs to"`
	Name         string    `json:"name" jsonschema:"description=Item display name"`
	Tags         []string  `json:"tags,omitempty" jsonschema:"description=Free-form tags"`
	Created      time.Time `json:"created" jsonschema:"description=Creation timestamp"`
	Modified     time.Time `json:"modified" jsonschema:"description=Last modification timestamp"`
}

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	cp := *i
	cp.Tags = slices.Clone(i.Tags)
	return &cp
}

// GetID returns the item's ID.
func (i *Item) GetID() ksid.ID {
	return i.ID
}

// Validate checks that the item is well-formed.
func (i *Item) Validate() error {
	if i.ID.IsZero() {
		return errIDRequired
	}
	if i.CollectionID.IsZero() {
		return errCollectionRequired
	}
	if i.Name == "" {
		return errNameRequired
	}
	return nil
}

// Comment is a user comment on an item.
type Comment struct {
	ID       ksid.ID   `json:"id" jsonschema:"description=Unique comment identifier"`
	ItemID   ksid.ID   `json:"item_id" jsonschema:"description=Item the comment is on"`
	AuthorID ksid.ID   `json:"author_id" jsonschema:"description=User who wrote the comment"`
	Text     string    `json:"text" jsonschema:"description=Comment body"`
	Created  time.Time `json:"created" jsonschema:"description=Creation timestamp"`
}

// Clone returns a deep copy of the comment.
func (c *Comment) Clone() *Comment {
	cp := *c
	return &cp
}

// GetID returns the comment's ID.
func (c *Comment) GetID() ksid.ID {
	return c.ID
}

// Validate checks that the comment is well-formed.
func (c *Comment) Validate() error {
	if c.ID.IsZero() {
		return errIDRequired
	}
	if c.ItemID.IsZero() {
		return errItemRequired
	}
	if c.AuthorID.IsZero() {
		return errAuthorRequired
	}
	if c.Text == "" {
		return errTextRequired
	}
	return nil
}

var (
	errIDRequired         = errors.New("id is required")
	errOwnerRequired      = errors.New("owner_id is required")
	errNameRequired       = errors.New("name is required")
	errCollectionRequired = errors.New("collection_id is required")
	errItemRequired       = errors.New("item_id is required")
	errFieldRequired      = errors.New("field_id is required")
	errAuthorRequired     = errors.New("author_id is required")
	errTextRequired       = errors.New("text is required")
	errBadFieldType       = errors.New("unsupported field type")
)
