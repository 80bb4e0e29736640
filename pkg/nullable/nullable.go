// Package nullable provides the typed counterparts of the record markers:
// Null[T] is "T or null" and Optional[T] is "T or absent".
//
// The two types never overlap: a Null may hold null but never be absent, an
// Optional may be absent but never hold null. Narrowing a Null into either T
// or Optional[T] is what the guarantee package does.
package nullable

import (
	"bytes"
	"encoding/json"
	"reflect"
)

var jsonNull = []byte("null")

// Null holds a T that may be null. The zero value is null.
type Null[T any] struct {
	V     T
	Valid bool
}

// From returns a non-null Null holding v.
func From[T any](v T) Null[T] { return Null[T]{V: v, Valid: true} }

// Nil returns a null Null[T].
func Nil[T any]() Null[T] { return Null[T]{} }

// FromPtr returns a null value for a nil pointer and the pointee otherwise.
func FromPtr[T any](p *T) Null[T] {
	if p == nil {
		return Null[T]{}
	}
	return From(*p)
}

// IsNull reports whether n is null.
func (n Null[T]) IsNull() bool { return !n.Valid }

// Get returns the value and whether it is non-null.
func (n Null[T]) Get() (T, bool) { return n.V, n.Valid }

// Ptr returns a pointer to a copy of the value, or nil when null.
func (n Null[T]) Ptr() *T {
	if !n.Valid {
		return nil
	}
	v := n.V
	return &v
}

// MarshalJSON writes null for a null value.
func (n Null[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return jsonNull, nil
	}
	return json.Marshal(n.V)
}

// UnmarshalJSON decodes JSON null as a null value.
func (n *Null[T]) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), jsonNull) {
		*n = Null[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = From(v)
	return nil
}

// Optional holds a T that may be absent. The zero value is absent.
type Optional[T any] struct {
	V   T
	Set bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] { return Optional[T]{V: v, Set: true} }

// None returns an absent Optional[T].
func None[T any]() Optional[T] { return Optional[T]{} }

// IsZero reports whether o is absent. It makes `json:",omitzero"` drop absent
// fields, which is how an absent value is meant to serialise.
func (o Optional[T]) IsZero() bool { return !o.Set }

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) { return o.V, o.Set }

// OrElse returns the value, or def when absent.
func (o Optional[T]) OrElse(def T) T {
	if !o.Set {
		return def
	}
	return o.V
}

// MarshalJSON writes the value. An absent value outside an omitzero field
// has no JSON form of its own and is written as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return jsonNull, nil
	}
	return json.Marshal(o.V)
}

// UnmarshalJSON decodes JSON null as absent.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), jsonNull) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// Kind classifies a Go type for narrowing.
type Kind int

const (
	// Plain is any type that is neither Null nor Optional.
	Plain Kind = iota
	// NullKind is a Null[T].
	NullKind
	// OptionalKind is an Optional[T].
	OptionalKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case OptionalKind:
		return "optional"
	default:
		return "plain"
	}
}

// wrapper is implemented by Null and Optional, and by any struct that embeds
// one of them, since the methods are promoted. selfType tells the two apart.
type wrapper interface {
	nullableKind() Kind
	elemType() reflect.Type
	selfType() reflect.Type
}

func (Null[T]) nullableKind() Kind         { return NullKind }
func (Null[T]) elemType() reflect.Type     { return reflect.TypeFor[T]() }
func (Null[T]) selfType() reflect.Type     { return reflect.TypeFor[Null[T]]() }
func (Optional[T]) nullableKind() Kind     { return OptionalKind }
func (Optional[T]) elemType() reflect.Type { return reflect.TypeFor[T]() }
func (Optional[T]) selfType() reflect.Type { return reflect.TypeFor[Optional[T]]() }

var wrapperType = reflect.TypeFor[wrapper]()

// Inspect reports whether t is a Null or Optional instantiation and, if so,
// its element type. For any other type it returns (Plain, nil).
func Inspect(t reflect.Type) (Kind, reflect.Type) {
	if t == nil || t.Kind() != reflect.Struct || !t.Implements(wrapperType) {
		return Plain, nil
	}
	w := reflect.Zero(t).Interface().(wrapper)
	if w.selfType() != t {
		return Plain, nil
	}
	return w.nullableKind(), w.elemType()
}
