// Package records defines the dynamic record shape shared by the guarantee
// transformer and the step chain.
//
// A Record distinguishes three states per field:
//
//   - present: the key exists and holds a non-nil value;
//   - null:    the key exists and holds nil;
//   - absent:  the key exists and holds Undefined (or, for reads, the key is
//     missing altogether).
//
// Only an explicit nil counts as null. A typed nil such as (*string)(nil) is
// a non-nil interface value and so counts as present; store a plain nil for
// null. A missing key is never null, so field names that are not part of a
// record's shape never match a null check.
package records

import (
	"encoding/json"
	"maps"
)

// Record is a single row keyed by field name.
type Record map[string]any

// undefined is the type of the Undefined marker.
type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined marks a field that carries no value at all. It is distinct from
// nil, which marks an intentional NULL.
var Undefined any = undefined{}

// IsNull reports whether v is the null marker. A typed nil pointer, map or
// slice is not.
func IsNull(v any) bool { return v == nil }

// IsUndefined reports whether v is the Undefined marker.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// Clone returns a shallow copy of r. Values are shared, the map is not.
// A nil record clones to nil.
func (r Record) Clone() Record { return maps.Clone(r) }

// IsNull reports whether field is present in r and holds nil.
func (r Record) IsNull(field string) bool {
	v, ok := r[field]
	return ok && v == nil
}

// MarshalJSON encodes r as a JSON object. Undefined fields are omitted,
// null fields are written as null.
func (r Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	out := make(map[string]any, len(r))
	for k, v := range r {
		if IsUndefined(v) {
			continue
		}
		out[k] = v
	}
	return json.Marshal(out)
}
