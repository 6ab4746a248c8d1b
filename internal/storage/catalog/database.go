package catalog

import (
	"path/filepath"

	"github.com/maruel/ksid"

	"github.com/maxpn01/collectioner/internal/jsonldb"
)

// Database bundles the catalog tables and their secondary indexes. Services
// share one Database so cascades can reach every table without service
// cycles.
type Database struct {
	collections  *jsonldb.Table[*Collection]
	byOwner      *jsonldb.Index[ksid.ID, *Collection]
	fields       *jsonldb.Table[*FieldDefinition]
	fieldsByCol  *jsonldb.Index[ksid.ID, *FieldDefinition]
	items        *jsonldb.Table[*Item]
	itemsByCol   *jsonldb.Index[ksid.ID, *Item]
	comments     *jsonldb.Table[*Comment]
	commentsByIt *jsonldb.Index[ksid.ID, *Comment]
	values       *FieldStores
}

// NewDatabase opens all catalog tables under dir.
func NewDatabase(dir string) (*Database, error) {
	collections, err := jsonldb.NewTable[*Collection](filepath.Join(dir, "collections.jsonl"))
	if err != nil {
		return nil, err
	}
	fields, err := jsonldb.NewTable[*FieldDefinition](filepath.Join(dir, "fields.jsonl"))
	if err != nil {
		return nil, err
	}
	items, err := jsonldb.NewTable[*Item](filepath.Join(dir, "items.jsonl"))
	if err != nil {
		return nil, err
	}
	comments, err := jsonldb.NewTable[*Comment](filepath.Join(dir, "comments.jsonl"))
	if err != nil {
		return nil, err
	}
	values, err := NewFieldStores(dir)
	if err != nil {
		return nil, err
	}
	db := &Database{
		collections: collections,
		fields:      fields,
		items:       items,
		comments:    comments,
		values:      values,
	}
	db.byOwner = jsonldb.NewIndex(collections, func(c *Collection) ksid.ID { return c.OwnerID })
	db.fieldsByCol = jsonldb.NewIndex(fields, func(f *FieldDefinition) ksid.ID { return f.CollectionID })
	db.itemsByCol = jsonldb.NewIndex(items, func(i *Item) ksid.ID { return i.CollectionID })
	db.commentsByIt = jsonldb.NewIndex(comments, func(c *Comment) ksid.ID { return c.ItemID })
	return db, nil
}
