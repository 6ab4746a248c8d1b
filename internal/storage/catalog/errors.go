package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotAuthorized is returned when the requester is neither the owner
	// nor an admin.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrConflict is returned when a write collides with existing state.
	ErrConflict = errors.New("conflict")
	// ErrSchemaMismatch is returned when item values do not match the
	// collection schema exactly. Wrapped by [SchemaMismatchError].
	ErrSchemaMismatch = errors.New("values do not match collection schema")
)

// SchemaMismatchError aggregates every way a value payload diverges from the
// collection schema, so a single failed write reports all problems at once.
type SchemaMismatchError struct {
	Problems []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSchemaMismatch, strings.Join(e.Problems, "; "))
}

func (e *SchemaMismatchError) Unwrap() error {
	return ErrSchemaMismatch
}
