package guarantee

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNonNullable matches every *NonNullableError via errors.Is.
var ErrNonNullable = errors.New("non-nullable field is null")

// NonNullableError reports a field declared non-nullable that held null.
type NonNullableError struct {
	// Field is the offending field name (the Go field name for Narrow).
	Field string
	// Index is the position of the offending record, or -1 when the check
	// ran on a single value outside of a sequence.
	Index int
}

func (e *NonNullableError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("field %q is null but was declared non-nullable", e.Field)
	}
	return fmt.Sprintf("record %d: field %q is null but was declared non-nullable", e.Index, e.Field)
}

// Is lets errors.Is(err, ErrNonNullable) succeed.
func (e *NonNullableError) Is(target error) bool { return target == ErrNonNullable }

// withIndex returns err with the record index set on a *NonNullableError
// that does not have one yet. The error err holds is never modified: the
// index goes on a copy, and a wrapped one is re-wrapped around that copy.
// Other errors pass through.
func withIndex(err error, i int) error {
	var nn *NonNullableError
	if !errors.As(err, &nn) || nn.Index >= 0 {
		return err
	}
	c := *nn
	c.Index = i
	if err == error(nn) {
		return &c
	}
	return &indexedError{nn: &c, err: err}
}

// indexedError carries the index for a *NonNullableError found inside err.
type indexedError struct {
	nn  *NonNullableError
	err error
}

func (e *indexedError) Error() string {
	return fmt.Sprintf("record %d: %v", e.nn.Index, e.err)
}

// Unwrap lists the indexed copy first so errors.As finds it before the
// original.
func (e *indexedError) Unwrap() []error { return []error{e.nn, e.err} }

// PlanError reports an (In, Out) struct pair that Narrow cannot map.
type PlanError struct {
	In, Out reflect.Type
	// Field is empty when the problem is with the types themselves.
	Field  string
	Reason string
}

func (e *PlanError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("guarantee: cannot narrow %v to %v: %s", e.In, e.Out, e.Reason)
	}
	return fmt.Sprintf("guarantee: cannot narrow %v to %v: field %s: %s", e.In, e.Out, e.Field, e.Reason)
}
