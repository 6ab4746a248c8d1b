// Tag views over the item table.

package catalog

import (
	"sort"
	"strings"
)

// tagSuggestionLimit caps prefix suggestions for autocomplete.
const tagSuggestionLimit = 10

// TagService exposes read-only tag views across all items.
type TagService struct {
	db *Database
}

// NewTagService creates a tag service.
func NewTagService(db *Database) *TagService {
	return &TagService{db: db}
}

// All returns every distinct tag in use, sorted.
func (s *TagService) All() []string {
	seen := map[string]struct{}{}
	for item := range s.db.items.Iter(0) {
		for _, tag := range item.Tags {
			seen[tag] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// StartingWith returns up to tagSuggestionLimit distinct tags with the
// given prefix, sorted. Matching is case-insensitive.
func (s *TagService) StartingWith(prefix string) []string {
	lower := strings.ToLower(prefix)
	var out []string
	for _, tag := range s.All() {
		if strings.HasPrefix(strings.ToLower(tag), lower) {
			out = append(out, tag)
			if len(out) == tagSuggestionLimit {
				break
			}
		}
	}
	return out
}
