// Package search implements an in-process full-text engine with named
// indexes.
//
// Documents are denormalized projections of canonical records, never the
// source of truth. Upsert has add-or-replace-by-id semantics, so replacing
// a document is the same operation as adding it and is idempotent. The
// engine can run one query against several named indexes at once.
package search

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/maruel/ksid"
)

// Document is a denormalized projection stored in one index.
type Document struct {
	// ID identifies the document within its index.
	ID ksid.ID
	// Ref optionally points at the canonical record the document is
	// about when that differs from ID (e.g. the item a comment is on).
	Ref ksid.ID
	// Text is the searchable content.
	Text string
}

// Hit is a single query match.
type Hit struct {
	ID    ksid.ID
	Ref   ksid.ID
	Score float64
}

// Index is a single inverted-token index with upsert-by-id semantics.
type Index struct {
	mu     sync.RWMutex
	docs   map[ksid.ID]Document
	tokens map[string]map[ksid.ID]struct{}
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		docs:   make(map[ksid.ID]Document),
		tokens: make(map[string]map[ksid.ID]struct{}),
	}
}

// Upsert adds the document, replacing any existing document with the same
// ID wholesale. There is no partial patch.
func (x *Index) Upsert(doc Document) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if old, ok := x.docs[doc.ID]; ok {
		x.removeTokens(old)
	}
	x.docs[doc.ID] = doc
	for _, tok := range Tokenize(doc.Text) {
		if x.tokens[tok] == nil {
			x.tokens[tok] = make(map[ksid.ID]struct{})
		}
		x.tokens[tok][doc.ID] = struct{}{}
	}
}

// Delete removes the document with the given ID. Unknown IDs are a no-op.
func (x *Index) Delete(id ksid.ID) {
	x.mu.Lock()
	defer x.mu.Unlock()
	doc, ok := x.docs[id]
	if !ok {
		return
	}
	x.removeTokens(doc)
	delete(x.docs, id)
}

// Len returns the number of documents in the index.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.docs)
}

func (x *Index) removeTokens(doc Document) {
	for _, tok := range Tokenize(doc.Text) {
		delete(x.tokens[tok], doc.ID)
		if len(x.tokens[tok]) == 0 {
			delete(x.tokens, tok)
		}
	}
}

// Query returns documents matching all query tokens. The last query token
// matches as a prefix so incremental typing finds results. Hits are ordered
// by score (descending), then ID (ascending) for a stable order.
func (x *Index) Query(query string) []Hit {
	qtoks := Tokenize(query)
	if len(qtoks) == 0 {
		return nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	scores := make(map[ksid.ID]float64)
	for i, qt := range qtoks {
		matched := make(map[ksid.ID]float64)
		if i == len(qtoks)-1 {
			// Prefix match on the final token.
			for tok, ids := range x.tokens {
				if !strings.HasPrefix(tok, qt) {
					continue
				}
				weight := 0.5
				if tok == qt {
					weight = 1.0
				}
				for id := range ids {
					if weight > matched[id] {
						matched[id] = weight
					}
				}
			}
		} else {
			for id := range x.tokens[qt] {
				matched[id] = 1.0
			}
		}
		if len(matched) == 0 {
			return nil // Every token must match somewhere.
		}
		if i == 0 {
			scores = matched
			continue
		}
		for id := range scores {
			w, ok := matched[id]
			if !ok {
				delete(scores, id)
				continue
			}
			scores[id] += w
		}
		if len(scores) == 0 {
			return nil
		}
	}

	hits := make([]Hit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, Hit{ID: id, Ref: x.docs[id].Ref, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	return hits
}

// Tokenize lowercases the text and splits it on any non-letter,
// non-digit rune.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
