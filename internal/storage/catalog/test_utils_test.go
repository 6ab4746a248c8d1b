package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maruel/ksid"

	"github.com/maxpn01/collectioner/internal/search"
	"github.com/maxpn01/collectioner/internal/storage/identity"
)

// fixture wires a full catalog stack on a temp dir with a real in-process
// search engine.
type fixture struct {
	dir         string
	db          *Database
	engine      *search.Engine
	collections *CollectionService
	schema      *SchemaService
	items       *ItemService
	comments    *CommentService
	tags        *TagService
	search      *SearchService

	owner    *identity.User
	admin    *identity.User
	stranger *identity.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	engine := search.NewEngine(IndexCollections, IndexItems, IndexComments)
	return newFixtureWith(t, engine, engine)
}

func newFixtureWith(t *testing.T, index SearchIndex, engine *search.Engine) *fixture {
	t.Helper()
	dir := t.TempDir()
	db, err := NewDatabase(dir)
	if err != nil {
		t.Fatal(err)
	}
	mirror := NewMirror(index)
	schema := NewSchemaService(db)
	f := &fixture{
		dir:         dir,
		db:          db,
		engine:      engine,
		schema:      schema,
		collections: NewCollectionService(db, schema, mirror),
		items:       NewItemService(db, schema, mirror),
		comments:    NewCommentService(db, mirror),
		tags:        NewTagService(db),
		owner:       testUser("owner@example.com", false),
		admin:       testUser("admin@example.com", true),
		stranger:    testUser("stranger@example.com", false),
	}
	if engine != nil {
		f.search = NewSearchService(db, engine)
	}
	return f
}

func testUser(email string, admin bool) *identity.User {
	now := time.Now()
	return &identity.User{ID: ksid.NewID(), Email: email, Name: email, IsAdmin: admin, Created: now, Modified: now}
}

// booksCollection creates the canonical test collection with a Number
// "pages" field and a Text "author" field, returning the collection and the
// two field IDs.
func (f *fixture) booksCollection(t *testing.T, ctx context.Context) (*Collection, ksid.ID, ksid.ID) {
	t.Helper()
	col, err := f.collections.Create(ctx, f.owner, "Books", "books", "my library", []FieldCreate{
		{Name: "pages", Type: FieldNumber},
		{Name: "author", Type: FieldText},
	})
	if err != nil {
		t.Fatal(err)
	}
	var pages, author ksid.ID
	for _, field := range f.schema.FieldsFor(col.ID) {
		switch field.Name {
		case "pages":
			pages = field.ID
		case "author":
			author = field.ID
		}
	}
	if pages.IsZero() || author.IsZero() {
		t.Fatal("schema fields not created")
	}
	return col, pages, author
}

// failingIndex always errors, for mirror absorption tests.
type failingIndex struct{}

func (failingIndex) Upsert(context.Context, string, search.Document) error {
	return errors.New("index unavailable")
}

func (failingIndex) Delete(context.Context, string, ksid.ID) error {
	return errors.New("index unavailable")
}
