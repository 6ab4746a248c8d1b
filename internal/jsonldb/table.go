// Package jsonldb provides thread-safe JSONL file storage for typed rows.
//
// It offers Table[T] for generic type-safe row storage. All data types
// stored in Table[T] must implement the Row interface (Clone, GetID,
// Validate). Creates append to the file; updates and deletes rewrite it.
// Secondary indexes stay synchronized through the TableObserver interface.
package jsonldb

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sync"

	"github.com/maruel/ksid"
)

// Row is implemented by types that can be stored in a Table.
type Row[T any] interface {
	// Clone returns a deep copy of the row.
	Clone() T
	// GetID returns the row's unique identifier.
	GetID() ksid.ID
	// Validate checks that the row is well-formed before it is persisted.
	Validate() error
}

// TableObserver receives notifications about table mutations.
//
// Observers are called while the table lock is held; they must not call
// back into the table.
type TableObserver[T any] interface {
	OnAppend(row T)
	OnUpdate(prev, curr T)
	OnDelete(row T)
}

// ErrRowNotFound is returned when a row with the requested ID does not exist.
var ErrRowNotFound = errors.New("row not found")

// ErrDuplicateID is returned when appending a row whose ID is already present.
var ErrDuplicateID = errors.New("duplicate row ID")

// Table handles storage and in-memory caching for a single table in JSONL
// format. Rows are kept in insertion order, which matches ID order because
// ksid IDs are time-sortable.
type Table[T Row[T]] struct {
	path string

	mu        sync.RWMutex
	rows      []T
	byID      map[ksid.ID]int
	observers []TableObserver[T]
}

// NewTable creates a new Table and loads all data from the file.
func NewTable[T Row[T]](path string) (*Table[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	t := &Table[T]{path: path, byID: map[ksid.ID]int{}}
	if err := t.load(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table[T]) load() error {
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open table file %s: %w", t.path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var row T
		if err := json.Unmarshal(line, &row); err != nil {
			return fmt.Errorf("failed to unmarshal row in %s: %w", t.path, err)
		}
		// A repeated ID means the file contains a stale line from an
		// interrupted rewrite; the last occurrence wins.
		if i, ok := t.byID[row.GetID()]; ok {
			t.rows[i] = row
			continue
		}
		t.byID[row.GetID()] = len(t.rows)
		t.rows = append(t.rows, row)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read table file %s: %w", t.path, err)
	}
	return nil
}

// AddObserver registers an observer for table mutations.
func (t *Table[T]) AddObserver(o TableObserver[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, o)
	for _, row := range t.rows {
		o.OnAppend(row)
	}
}

// Len returns the number of rows.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Get returns a clone of the row with the given ID, or the zero value if
// not found.
func (t *Table[T]) Get(id ksid.ID) T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i, ok := t.byID[id]; ok {
		return t.rows[i].Clone()
	}
	var zero T
	return zero
}

// Append adds a new row to the table and persists it.
func (t *Table[T]) Append(row T) error {
	return t.AppendMany([]T{row})
}

// AppendMany adds rows to the table in a single file append.
func (t *Table[T]) AppendMany(rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return err
		}
		if _, ok := t.byID[row.GetID()]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateID, row.GetID())
		}
	}

	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G302: table files are not secrets
	if err != nil {
		return fmt.Errorf("failed to open table file for append: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	w := bufio.NewWriter(f)
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to marshal row: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}

	for _, row := range rows {
		stored := row.Clone()
		t.byID[stored.GetID()] = len(t.rows)
		t.rows = append(t.rows, stored)
		for _, o := range t.observers {
			o.OnAppend(stored)
		}
	}
	return nil
}

// Update replaces the row with the same ID and persists the table.
func (t *Table[T]) Update(row T) (T, error) {
	rows, err := t.UpdateMany([]T{row})
	if err != nil {
		var zero T
		return zero, err
	}
	return rows[0], nil
}

// UpdateMany replaces multiple rows in a single file rewrite.
func (t *Table[T]) UpdateMany(rows []T) ([]T, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return nil, err
		}
		if _, ok := t.byID[row.GetID()]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrRowNotFound, row.GetID())
		}
	}

	prev := make([]T, len(rows))
	curr := make([]T, len(rows))
	for i, row := range rows {
		j := t.byID[row.GetID()]
		prev[i] = t.rows[j]
		curr[i] = row.Clone()
		t.rows[j] = curr[i]
	}
	if err := t.persist(); err != nil {
		// Restore in-memory state so cache and disk stay consistent.
		for i := range rows {
			t.rows[t.byID[prev[i].GetID()]] = prev[i]
		}
		return nil, err
	}
	for i := range rows {
		for _, o := range t.observers {
			o.OnUpdate(prev[i], curr[i])
		}
	}
	out := make([]T, len(curr))
	for i, row := range curr {
		out[i] = row.Clone()
	}
	return out, nil
}

// Modify atomically applies fn to the row with the given ID and persists
// the result. Returns a clone of the modified row.
func (t *Table[T]) Modify(id ksid.ID, fn func(row T) error) (T, error) {
	var zero T
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.byID[id]
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrRowNotFound, id)
	}
	prev := t.rows[i]
	curr := prev.Clone()
	if err := fn(curr); err != nil {
		return zero, err
	}
	if curr.GetID() != id {
		return zero, errors.New("modify must not change the row ID")
	}
	if err := curr.Validate(); err != nil {
		return zero, err
	}
	t.rows[i] = curr
	if err := t.persist(); err != nil {
		t.rows[i] = prev
		return zero, err
	}
	for _, o := range t.observers {
		o.OnUpdate(prev, curr)
	}
	return curr.Clone(), nil
}

// Delete removes the row with the given ID and persists the table.
// Returns a clone of the deleted row.
func (t *Table[T]) Delete(id ksid.ID) (T, error) {
	var zero T
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.byID[id]
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrRowNotFound, id)
	}
	row := t.rows[i]
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	delete(t.byID, id)
	for j := i; j < len(t.rows); j++ {
		t.byID[t.rows[j].GetID()] = j
	}
	if err := t.persist(); err != nil {
		// Reinsert at the original position on failure.
		t.rows = append(t.rows[:i], append([]T{row}, t.rows[i:]...)...)
		for j := i; j < len(t.rows); j++ {
			t.byID[t.rows[j].GetID()] = j
		}
		return zero, err
	}
	for _, o := range t.observers {
		o.OnDelete(row)
	}
	return row.Clone(), nil
}

// Iter iterates over clones of rows with ID greater than startID, in ID
// order. Pass 0 to iterate from the beginning.
func (t *Table[T]) Iter(startID ksid.ID) iter.Seq[T] {
	return func(yield func(T) bool) {
		t.mu.RLock()
		defer t.mu.RUnlock()
		for _, row := range t.rows {
			if row.GetID() <= startID {
				continue
			}
			if !yield(row.Clone()) {
				return
			}
		}
	}
}

// persist rewrites the whole table file. Caller must hold the write lock.
func (t *Table[T]) persist() error {
	tmp := t.path + ".tmp"
	f, err := os.Create(tmp) //nolint:gosec // G304: path is derived from the table path
	if err != nil {
		return fmt.Errorf("failed to create table file: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, row := range t.rows {
		data, err := json.Marshal(row)
		if err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to marshal row: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write row: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close table file: %w", err)
	}
	if err := os.Rename(tmp, t.path); err != nil {
		return fmt.Errorf("failed to replace table file: %w", err)
	}
	return nil
}
