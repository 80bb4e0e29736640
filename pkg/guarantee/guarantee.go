// Package guarantee narrows the nullability of record fields.
//
// Apply works on dynamic records: fields listed as non-nullable are checked
// and fail the whole call if any record holds null there; fields listed as
// null-to-undefined have null rewritten to records.Undefined. Every other
// field is copied through untouched.
//
// The typed side of the package (NonNull, NullToUndefined, Map, Narrow)
// carries the same contract over to Go types, where the narrowing shows up in
// the result type: a non-nullable field loses its Null wrapper and a
// null-to-undefined field becomes a nullable.Optional.
//
// Nothing here mutates its input. Calls share no state apart from the
// read-mostly plan cache used by Narrow.
package guarantee

import "nullguard/pkg/records"

// Config names the fields to narrow. Either list may be empty; duplicates are
// harmless and names that are not part of the record shape never match. A
// field listed in both is checked as non-nullable first, so a null there
// fails instead of being rewritten.
type Config struct {
	NonNullable     []string `json:"non_nullable" yaml:"non_nullable" mapstructure:"non_nullable"`
	NullToUndefined []string `json:"null_to_undefined" yaml:"null_to_undefined" mapstructure:"null_to_undefined"`
}

// IsZero reports whether c names no fields at all.
func (c Config) IsZero() bool {
	return len(c.NonNullable) == 0 && len(c.NullToUndefined) == 0
}

// Overlap returns the fields listed in both NonNullable and NullToUndefined,
// in NullToUndefined order, without duplicates.
func (c Config) Overlap() []string {
	if len(c.NonNullable) == 0 || len(c.NullToUndefined) == 0 {
		return nil
	}
	nn := make(map[string]struct{}, len(c.NonNullable))
	for _, f := range c.NonNullable {
		nn[f] = struct{}{}
	}
	var out []string
	seen := make(map[string]struct{})
	for _, f := range c.NullToUndefined {
		if _, ok := nn[f]; !ok {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Apply returns a new slice holding a transformed shallow copy of every
// record in in, at the same index.
//
// Records are processed in order and, within a record, NonNullable fields in
// list order. The first null found in a NonNullable field aborts the call
// with a *NonNullableError and no records are returned.
func Apply(in []records.Record, cfg Config) ([]records.Record, error) {
	out := make([]records.Record, len(in))
	for i, rec := range in {
		r, err := applyOne(rec, cfg)
		if err != nil {
			return nil, withIndex(err, i)
		}
		out[i] = r
	}
	return out, nil
}

// ApplyOne transforms a single record. Errors carry Index -1.
func ApplyOne(rec records.Record, cfg Config) (records.Record, error) {
	return applyOne(rec, cfg)
}

func applyOne(rec records.Record, cfg Config) (records.Record, error) {
	r := rec.Clone()
	for _, f := range cfg.NonNullable {
		if r.IsNull(f) {
			return nil, &NonNullableError{Field: f, Index: -1}
		}
	}
	for _, f := range cfg.NullToUndefined {
		if r.IsNull(f) {
			r[f] = records.Undefined
		}
	}
	return r, nil
}
