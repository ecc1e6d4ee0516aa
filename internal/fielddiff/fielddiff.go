// Package fielddiff computes which fields of a partial update actually
// change relative to stored state. Update handlers apply only the returned
// subset and acknowledge it back to the caller.
package fielddiff

import (
	"github.com/rokotuskortti/vaccination-erecord/internal/dates"
)

// Kind selects the equality rule for a field.
type Kind int

const (
	Text Kind = iota
	Int
	Bool
	Date
)

// Field is one updatable column of an entity. Each entity declares its
// fixed allowed-field set once; anything outside it is ignored.
type Field struct {
	Name string
	Kind Kind
}

// Values maps field names to their values. Date-kind fields carry
// dates.Date; nullable scalars carry nil when unset.
type Values map[string]any

// Changed returns the subset of fields present in both next and current
// whose values differ. Date fields compare on the normalized calendar
// date, so two textual spellings of the same date are never a change, and
// an invalid date equals "no date". A field absent from next is left
// untouched. Pure function; neither input is mutated.
func Changed(fields []Field, next, current Values) Values {
	result := Values{}
	for _, f := range fields {
		nv, inNext := next[f.Name]
		cv, inCurrent := current[f.Name]
		if !inNext || !inCurrent {
			continue
		}
		if !equal(f.Kind, nv, cv) {
			result[f.Name] = nv
		}
	}
	return result
}

// Flags builds the FieldName→true acknowledgement map for a changed set.
func Flags(changed Values) map[string]bool {
	flags := make(map[string]bool, len(changed))
	for name := range changed {
		flags[name] = true
	}
	return flags
}

func equal(kind Kind, a, b any) bool {
	if kind == Date {
		return dates.Equal(asDate(a), asDate(b))
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}

func asDate(v any) dates.Date {
	if v == nil {
		return dates.Invalid
	}
	if d, ok := v.(dates.Date); ok {
		return d
	}
	return dates.Invalid
}
