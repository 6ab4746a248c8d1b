// Typed field value storage: five parallel homogeneous stores, one per
// field type, all keyed by (item, field).

package catalog

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/maruel/ksid"

	"github.com/maxpn01/collectioner/internal/jsonldb"
)

// FieldValue is one typed value row. A row binds exactly one (item, field)
// pair to a value of the store's type.
type FieldValue[T any] struct {
	ID      ksid.ID `json:"id"`
	ItemID  ksid.ID `json:"item_id"`
	FieldID ksid.ID `json:"field_id"`
	Value   T       `json:"value"`
}

// Clone returns a deep copy of the value row.
func (v *FieldValue[T]) Clone() *FieldValue[T] {
	cp := *v
	return &cp
}

// GetID returns the row's ID.
func (v *FieldValue[T]) GetID() ksid.ID {
	return v.ID
}

// Validate checks that the value row is well-formed.
func (v *FieldValue[T]) Validate() error {
	if v.ID.IsZero() {
		return errIDRequired
	}
	if v.ItemID.IsZero() {
		return errItemRequired
	}
	if v.FieldID.IsZero() {
		return errFieldRequired
	}
	return nil
}

// valueKey is the composite lookup key of a value row.
type valueKey struct {
	ItemID  ksid.ID
	FieldID ksid.ID
}

// fieldStore is one homogeneous typed store. All five stores share this
// implementation; only the value type differs.
type fieldStore[T comparable] struct {
	table  *jsonldb.Table[*FieldValue[T]]
	byKey  *jsonldb.UniqueIndex[valueKey, *FieldValue[T]]
	byItem *jsonldb.Index[ksid.ID, *FieldValue[T]]
}

func newFieldStore[T comparable](path string) (*fieldStore[T], error) {
	table, err := jsonldb.NewTable[*FieldValue[T]](path)
	if err != nil {
		return nil, err
	}
	byKey := jsonldb.NewUniqueIndex(table, func(v *FieldValue[T]) valueKey {
		return valueKey{ItemID: v.ItemID, FieldID: v.FieldID}
	})
	byItem := jsonldb.NewIndex(table, func(v *FieldValue[T]) ksid.ID { return v.ItemID })
	return &fieldStore[T]{table: table, byKey: byKey, byItem: byItem}, nil
}

// put writes the value for (itemID, fieldID), replacing any existing row.
// Returns the row so a failed batch can compensate.
func (s *fieldStore[T]) put(itemID, fieldID ksid.ID, value T) (*FieldValue[T], error) {
	if existing := s.byKey.Get(valueKey{ItemID: itemID, FieldID: fieldID}); existing != nil {
		if existing.Value == value {
			return existing, nil
		}
		return s.table.Modify(existing.ID, func(row *FieldValue[T]) error {
			row.Value = value
			return nil
		})
	}
	row := &FieldValue[T]{ID: ksid.NewID(), ItemID: itemID, FieldID: fieldID, Value: value}
	if err := s.table.Append(row); err != nil {
		return nil, err
	}
	return row, nil
}

// forItem returns all values of this store for one item, keyed by field ID.
func (s *fieldStore[T]) forItem(itemID ksid.ID) map[ksid.ID]T {
	out := map[ksid.ID]T{}
	for row := range s.byItem.Iter(itemID) {
		out[row.FieldID] = row.Value
	}
	return out
}

// deleteRow removes a single value row by its row ID.
func (s *fieldStore[T]) deleteRow(id ksid.ID) error {
	_, err := s.table.Delete(id)
	return err
}

// deleteForItem removes every value row of this store for one item.
func (s *fieldStore[T]) deleteForItem(itemID ksid.ID) error {
	var ids []ksid.ID
	for row := range s.byItem.Iter(itemID) {
		ids = append(ids, row.ID)
	}
	for _, id := range ids {
		if _, err := s.table.Delete(id); err != nil {
			return err
		}
	}
	return nil
}

// FieldStores bundles the five typed stores.
type FieldStores struct {
	number    *fieldStore[float64]
	text      *fieldStore[string]
	multiline *fieldStore[string]
	checkbox  *fieldStore[bool]
	date      *fieldStore[time.Time]
}

// NewFieldStores opens the five typed value tables under dir.
func NewFieldStores(dir string) (*FieldStores, error) {
	number, err := newFieldStore[float64](filepath.Join(dir, "values_number.jsonl"))
	if err != nil {
		return nil, err
	}
	text, err := newFieldStore[string](filepath.Join(dir, "values_text.jsonl"))
	if err != nil {
		return nil, err
	}
	multiline, err := newFieldStore[string](filepath.Join(dir, "values_multiline.jsonl"))
	if err != nil {
		return nil, err
	}
	checkbox, err := newFieldStore[bool](filepath.Join(dir, "values_checkbox.jsonl"))
	if err != nil {
		return nil, err
	}
	date, err := newFieldStore[time.Time](filepath.Join(dir, "values_date.jsonl"))
	if err != nil {
		return nil, err
	}
	return &FieldStores{number: number, text: text, multiline: multiline, checkbox: checkbox, date: date}, nil
}

// FieldValues is the full typed value payload of one item, keyed by field ID
// within each type.
type FieldValues struct {
	Number    map[ksid.ID]float64   `json:"number,omitempty"`
	Text      map[ksid.ID]string    `json:"text,omitempty"`
	Multiline map[ksid.ID]string    `json:"multiline_text,omitempty"`
	Checkbox  map[ksid.ID]bool      `json:"checkbox,omitempty"`
	Date      map[ksid.ID]time.Time `json:"date,omitempty"`
}

// fieldIDs returns the payload's field IDs for one type.
func (v *FieldValues) fieldIDs(t FieldType) map[ksid.ID]struct{} {
	ids := map[ksid.ID]struct{}{}
	switch t {
	case FieldNumber:
		for id := range v.Number {
			ids[id] = struct{}{}
		}
	case FieldText:
		for id := range v.Text {
			ids[id] = struct{}{}
		}
	case FieldMultiline:
		for id := range v.Multiline {
			ids[id] = struct{}{}
		}
	case FieldCheckbox:
		for id := range v.Checkbox {
			ids[id] = struct{}{}
		}
	case FieldDate:
		for id := range v.Date {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// writtenRow records one persisted value row so a failed batch write can be
// compensated.
type writtenRow struct {
	typ FieldType
	id  ksid.ID
}

// writeAll persists the whole payload for an item and returns every row
// written, in write order.
func (s *FieldStores) writeAll(itemID ksid.ID, values *FieldValues) ([]writtenRow, error) {
	var written []writtenRow
	for fieldID, v := range values.Number {
		row, err := s.number.put(itemID, fieldID, v)
		if err != nil {
			return written, err
		}
		written = append(written, writtenRow{FieldNumber, row.ID})
	}
	for fieldID, v := range values.Text {
		row, err := s.text.put(itemID, fieldID, v)
		if err != nil {
			return written, err
		}
		written = append(written, writtenRow{FieldText, row.ID})
	}
	for fieldID, v := range values.Multiline {
		row, err := s.multiline.put(itemID, fieldID, v)
		if err != nil {
			return written, err
		}
		written = append(written, writtenRow{FieldMultiline, row.ID})
	}
	for fieldID, v := range values.Checkbox {
		row, err := s.checkbox.put(itemID, fieldID, v)
		if err != nil {
			return written, err
		}
		written = append(written, writtenRow{FieldCheckbox, row.ID})
	}
	for fieldID, v := range values.Date {
		row, err := s.date.put(itemID, fieldID, v)
		if err != nil {
			return written, err
		}
		written = append(written, writtenRow{FieldDate, row.ID})
	}
	return written, nil
}

// compensate deletes rows written by a failed batch, newest first.
func (s *FieldStores) compensate(written []writtenRow) error {
	var firstErr error
	for i := len(written) - 1; i >= 0; i-- {
		var err error
		switch written[i].typ {
		case FieldNumber:
			err = s.number.deleteRow(written[i].id)
		case FieldText:
			err = s.text.deleteRow(written[i].id)
		case FieldMultiline:
			err = s.multiline.deleteRow(written[i].id)
		case FieldCheckbox:
			err = s.checkbox.deleteRow(written[i].id)
		case FieldDate:
			err = s.date.deleteRow(written[i].id)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// readAll returns the full typed payload for an item.
func (s *FieldStores) readAll(itemID ksid.ID) *FieldValues {
	return &FieldValues{
		Number:    s.number.forItem(itemID),
		Text:      s.text.forItem(itemID),
		Multiline: s.multiline.forItem(itemID),
		Checkbox:  s.checkbox.forItem(itemID),
		Date:      s.date.forItem(itemID),
	}
}

// deleteAllForItem removes every value row of every type for one item.
func (s *FieldStores) deleteAllForItem(itemID ksid.ID) error {
	if err := s.number.deleteForItem(itemID); err != nil {
		return fmt.Errorf("failed to delete number values: %w", err)
	}
	if err := s.text.deleteForItem(itemID); err != nil {
		return fmt.Errorf("failed to delete text values: %w", err)
	}
	if err := s.multiline.deleteForItem(itemID); err != nil {
		return fmt.Errorf("failed to delete multiline values: %w", err)
	}
	if err := s.checkbox.deleteForItem(itemID); err != nil {
		return fmt.Errorf("failed to delete checkbox values: %w", err)
	}
	if err := s.date.deleteForItem(itemID); err != nil {
		return fmt.Errorf("failed to delete date values: %w", err)
	}
	return nil
}
