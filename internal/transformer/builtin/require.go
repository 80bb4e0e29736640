package builtin

import (
	"fmt"

	"nullguard/internal/config"
	"nullguard/pkg/records"
)

// Require asserts that every record carries a key for each of Fields. The
// value may be anything, null included; only a missing key fails. Put it
// before a guarantee step when unknown field names should be an error rather
// than a silent no-op.
type Require struct {
	Fields []string
}

// MissingFieldError reports a record without one of the required keys.
type MissingFieldError struct {
	Field string
	Index int
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("record %d: required field %q is missing", e.Index, e.Field)
}

func (Require) Kind() string { return config.KindRequire }

// Apply returns a new slice holding the same records, or the first
// *MissingFieldError in record order, then field order.
func (r Require) Apply(in []records.Record) ([]records.Record, error) {
	for i, rec := range in {
		for _, f := range r.Fields {
			if _, ok := rec[f]; !ok {
				return nil, &MissingFieldError{Field: f, Index: i}
			}
		}
	}
	out := make([]records.Record, len(in))
	copy(out, in)
	return out, nil
}
