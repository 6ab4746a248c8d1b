package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/maruel/ksid"
)

// Engine holds a fixed set of named indexes created up front.
type Engine struct {
	indexes map[string]*Index
}

// NewEngine creates an engine with one empty index per name.
func NewEngine(names ...string) *Engine {
	e := &Engine{indexes: make(map[string]*Index, len(names))}
	for _, name := range names {
		e.indexes[name] = NewIndex()
	}
	return e
}

// Upsert adds or replaces a document in the named index.
func (e *Engine) Upsert(ctx context.Context, index string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	x, ok := e.indexes[index]
	if !ok {
		return fmt.Errorf("unknown search index %q", index)
	}
	x.Upsert(doc)
	return nil
}

// Delete removes a document from the named index.
func (e *Engine) Delete(ctx context.Context, index string, id ksid.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	x, ok := e.indexes[index]
	if !ok {
		return fmt.Errorf("unknown search index %q", index)
	}
	x.Delete(id)
	return nil
}

// Query runs a query against one named index.
func (e *Engine) Query(ctx context.Context, index, query string) ([]Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	x, ok := e.indexes[index]
	if !ok {
		return nil, fmt.Errorf("unknown search index %q", index)
	}
	return x.Query(query), nil
}

// MultiQuery runs the same query against several indexes concurrently and
// returns hits keyed by index name. A missing index fails the whole call.
func (e *Engine) MultiQuery(ctx context.Context, query string, indexes ...string) (map[string][]Hit, error) {
	for _, name := range indexes {
		if _, ok := e.indexes[name]; !ok {
			return nil, fmt.Errorf("unknown search index %q", name)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	results := make([]([]Hit), len(indexes))
	for i, name := range indexes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = e.indexes[name].Query(query)
		}()
	}
	wg.Wait()

	out := make(map[string][]Hit, len(indexes))
	for i, name := range indexes {
		out[name] = results[i]
	}
	return out, nil
}
