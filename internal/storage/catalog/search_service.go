// Fans one query out over the three search indexes and reconciles the hits
// into a single deduplicated item list.

package catalog

import (
	"context"
	"time"

	"github.com/maruel/ksid"

	"github.com/maxpn01/collectioner/internal/search"
)

// SearchEngine is the read side of the full-text engine.
type SearchEngine interface {
	MultiQuery(ctx context.Context, query string, indexes ...string) (map[string][]search.Hit, error)
}

// ItemSummary is one search result.
type ItemSummary struct {
	ID           ksid.ID   `json:"id"`
	CollectionID ksid.ID   `json:"collection_id"`
	Name         string    `json:"name"`
	Created      time.Time `json:"created"`
}

// SearchService resolves full-text queries into items.
type SearchService struct {
	db     *Database
	engine SearchEngine
}

// NewSearchService creates a search service.
func NewSearchService(db *Database, engine SearchEngine) *SearchService {
	return &SearchService{db: db, engine: engine}
}

// Query runs one query against all three indexes concurrently and merges
// the hits into one item list:
//
//  1. direct item hits, in score order;
//  2. one representative item (the oldest) per matched collection;
//  3. items whose comments matched.
//
// An item reachable through several paths appears once, at its first
// position. Hits whose canonical record is gone (a stale index entry) are
// skipped silently.
func (s *SearchService) Query(ctx context.Context, query string) ([]ItemSummary, error) {
	hits, err := s.engine.MultiQuery(ctx, query, IndexItems, IndexCollections, IndexComments)
	if err != nil {
		return nil, err
	}

	seen := map[ksid.ID]struct{}{}
	out := []ItemSummary{}
	add := func(item *Item) {
		if item == nil {
			return
		}
		if _, ok := seen[item.ID]; ok {
			return
		}
		seen[item.ID] = struct{}{}
		out = append(out, ItemSummary{
			ID:           item.ID,
			CollectionID: item.CollectionID,
			Name:         item.Name,
			Created:      item.Created,
		})
	}

	for _, hit := range hits[IndexItems] {
		add(s.db.items.Get(hit.ID))
	}
	for _, hit := range hits[IndexCollections] {
		// Oldest item, exploiting time-ordered IDs.
		for item := range s.db.itemsByCol.Iter(hit.ID) {
			add(item)
			break
		}
	}
	for _, hit := range hits[IndexComments] {
		add(s.db.items.Get(hit.Ref))
	}
	return out, nil
}
