package catalog

import (
	"fmt"
	"slices"

	"github.com/maruel/ksid"
)

// validateValues checks a value payload against a collection schema.
//
// For each of the five types independently, the payload's field-id set must
// equal the schema's field-id set of that type exactly: no missing fields,
// no unknown fields, no cross-type placement. All problems are collected
// into one [SchemaMismatchError] so the caller sees every divergence at
// once.
func validateValues(schema []*FieldDefinition, values *FieldValues) error {
	declared := map[FieldType]map[ksid.ID]struct{}{}
	names := map[ksid.ID]string{}
	for _, f := range schema {
		if declared[f.Type] == nil {
			declared[f.Type] = map[ksid.ID]struct{}{}
		}
		declared[f.Type][f.ID] = struct{}{}
		names[f.ID] = f.Name
	}

	var problems []string
	for _, t := range FieldTypes {
		provided := values.fieldIDs(t)
		for id := range declared[t] {
			if _, ok := provided[id]; !ok {
				problems = append(problems, fmt.Sprintf("missing %s value for field %q (%s)", t, names[id], id))
			}
		}
		for id := range provided {
			if _, ok := declared[t][id]; !ok {
				problems = append(problems, fmt.Sprintf("unknown %s field %s", t, id))
			}
		}
	}
	if len(problems) == 0 {
		return nil
	}
	slices.Sort(problems)
	return &SchemaMismatchError{Problems: problems}
}
