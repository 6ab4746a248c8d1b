package catalog

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/maruel/ksid"
)

func TestValidateValues(t *testing.T) {
	pages := ksid.NewID()
	author := ksid.NewID()
	notes := ksid.NewID()
	read := ksid.NewID()
	bought := ksid.NewID()
	schema := []*FieldDefinition{
		{ID: pages, Name: "pages", Type: FieldNumber},
		{ID: author, Name: "author", Type: FieldText},
		{ID: notes, Name: "notes", Type: FieldMultiline},
		{ID: read, Name: "read", Type: FieldCheckbox},
		{ID: bought, Name: "bought", Type: FieldDate},
	}
	complete := func() *FieldValues {
		return &FieldValues{
			Number:    map[ksid.ID]float64{pages: 374},
			Text:      map[ksid.ID]string{author: "X"},
			Multiline: map[ksid.ID]string{notes: "long notes"},
			Checkbox:  map[ksid.ID]bool{read: true},
			Date:      map[ksid.ID]time.Time{bought: time.Now()},
		}
	}

	t.Run("CompletePayloadPasses", func(t *testing.T) {
		if err := validateValues(schema, complete()); err != nil {
			t.Errorf("validateValues() = %v, want nil", err)
		}
	})

	t.Run("EmptySchemaEmptyPayload", func(t *testing.T) {
		if err := validateValues(nil, &FieldValues{}); err != nil {
			t.Errorf("validateValues() = %v, want nil", err)
		}
	})

	t.Run("MissingField", func(t *testing.T) {
		v := complete()
		delete(v.Number, pages)
		err := validateValues(schema, v)
		if !errors.Is(err, ErrSchemaMismatch) {
			t.Fatalf("validateValues() = %v, want schema mismatch", err)
		}
		if !strings.Contains(err.Error(), "pages") {
			t.Errorf("error does not name the missing field: %v", err)
		}
	})

	t.Run("UnknownField", func(t *testing.T) {
		v := complete()
		v.Text[ksid.NewID()] = "extra"
		if err := validateValues(schema, v); !errors.Is(err, ErrSchemaMismatch) {
			t.Errorf("validateValues() = %v, want schema mismatch", err)
		}
	})

	t.Run("CrossTypePlacement", func(t *testing.T) {
		// The right field ID in the wrong typed map is both a missing
		// number and an unknown text entry.
		v := complete()
		delete(v.Number, pages)
		v.Text[pages] = "374"
		err := validateValues(schema, v)
		if !errors.Is(err, ErrSchemaMismatch) {
			t.Fatalf("validateValues() = %v, want schema mismatch", err)
		}
		var mismatch *SchemaMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("error is not a SchemaMismatchError: %v", err)
		}
		if len(mismatch.Problems) != 2 {
			t.Errorf("Problems = %v, want 2 entries", mismatch.Problems)
		}
	})

	t.Run("AggregatesAllProblems", func(t *testing.T) {
		v := &FieldValues{Text: map[ksid.ID]string{ksid.NewID(): "stray"}}
		err := validateValues(schema, v)
		var mismatch *SchemaMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("validateValues() = %v, want SchemaMismatchError", err)
		}
		// Five missing fields plus one unknown, reported together.
		if len(mismatch.Problems) != 6 {
			t.Errorf("Problems = %v, want 6 entries", mismatch.Problems)
		}
	})
}
