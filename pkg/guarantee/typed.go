package guarantee

import "nullguard/pkg/nullable"

// NonNull narrows v to its value type. A null v yields a *NonNullableError
// naming field, with Index -1; Map fills the index in.
func NonNull[T any](field string, v nullable.Null[T]) (T, error) {
	if !v.Valid {
		var zero T
		return zero, &NonNullableError{Field: field, Index: -1}
	}
	return v.V, nil
}

// NonNullPtr is NonNull for pointer-typed nullable fields.
func NonNullPtr[T any](field string, p *T) (T, error) {
	return NonNull(field, nullable.FromPtr(p))
}

// NullToUndefined swaps null for absent. It cannot fail.
func NullToUndefined[T any](v nullable.Null[T]) nullable.Optional[T] {
	if !v.Valid {
		return nullable.None[T]()
	}
	return nullable.Some(v.V)
}

// NullPtrToUndefined is NullToUndefined for pointer-typed nullable fields.
func NullPtrToUndefined[T any](p *T) nullable.Optional[T] {
	return NullToUndefined(nullable.FromPtr(p))
}

// Map applies fn to every element of in, in order, and collects the results.
// It stops at the first error and returns no results; a *NonNullableError
// without an index gets the element's position.
//
// Map is the hand-written form of Narrow: fn builds the narrowed value with
// NonNull and NullToUndefined, and the compiler checks the result type.
func Map[In, Out any](in []In, fn func(In) (Out, error)) ([]Out, error) {
	out := make([]Out, len(in))
	for i := range in {
		v, err := fn(in[i])
		if err != nil {
			return nil, withIndex(err, i)
		}
		out[i] = v
	}
	return out, nil
}
