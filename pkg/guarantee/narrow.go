package guarantee

import (
	"fmt"
	"reflect"
	"sync"

	"nullguard/pkg/nullable"
)

// Narrow converts every In to an Out, letting the field types of Out declare
// the narrowing. For each exported field of Out, the exported field of In with
// the same name must be:
//
//   - of the same type: copied unchanged, nullability included;
//   - a nullable.Null[T] or *T when Out has T: non-nullable, a null fails
//     the call with a *NonNullableError naming the field;
//   - a nullable.Null[T] or *T when Out has nullable.Optional[T]:
//     null-to-undefined, a null becomes an absent Optional.
//
// In and Out must have the same set of exported field names. Any mismatch is
// reported as a *PlanError before the first element is looked at, including
// for an empty input. Elements are processed in order and fields in Out's
// declaration order; the first violation aborts and no results are returned.
func Narrow[In, Out any](in []In) ([]Out, error) {
	p, err := planFor(reflect.TypeFor[In](), reflect.TypeFor[Out]())
	if err != nil {
		return nil, err
	}
	out := make([]Out, len(in))
	for i := range in {
		src := reflect.ValueOf(&in[i]).Elem()
		dst := reflect.ValueOf(&out[i]).Elem()
		if err := p.apply(src, dst); err != nil {
			return nil, withIndex(err, i)
		}
	}
	return out, nil
}

type fieldOp int

const (
	opCopy fieldOp = iota
	opNonNull
	opToOptional
)

type srcShape int

const (
	srcPlain srcShape = iota
	srcNull
	srcPtr
)

// Field positions inside nullable.Null and nullable.Optional.
const (
	wrapValue = 0
	wrapFlag  = 1
)

type fieldPlan struct {
	name    string
	in, out int
	op      fieldOp
	shape   srcShape
}

type plan struct {
	fields []fieldPlan
}

type planKey struct{ in, out reflect.Type }

type planEntry struct {
	p   *plan
	err error
}

// plans caches one entry per (In, Out) pair, failures included.
var plans sync.Map

func planFor(in, out reflect.Type) (*plan, error) {
	key := planKey{in, out}
	if v, ok := plans.Load(key); ok {
		e := v.(planEntry)
		return e.p, e.err
	}
	p, err := buildPlan(in, out)
	v, _ := plans.LoadOrStore(key, planEntry{p: p, err: err})
	e := v.(planEntry)
	return e.p, e.err
}

func buildPlan(in, out reflect.Type) (*plan, error) {
	if in.Kind() != reflect.Struct || out.Kind() != reflect.Struct {
		return nil, &PlanError{In: in, Out: out, Reason: "both types must be structs"}
	}

	inFields := make(map[string]reflect.StructField, in.NumField())
	for i := 0; i < in.NumField(); i++ {
		if f := in.Field(i); f.IsExported() {
			inFields[f.Name] = f
		}
	}

	p := &plan{}
	seen := make(map[string]struct{}, len(inFields))
	for i := 0; i < out.NumField(); i++ {
		of := out.Field(i)
		if !of.IsExported() {
			continue
		}
		inf, ok := inFields[of.Name]
		if !ok {
			return nil, &PlanError{In: in, Out: out, Field: of.Name, Reason: "no such field in input"}
		}
		seen[of.Name] = struct{}{}

		fp, err := planField(inf, of)
		if err != nil {
			return nil, &PlanError{In: in, Out: out, Field: of.Name, Reason: err.Error()}
		}
		p.fields = append(p.fields, fp)
	}

	for name := range inFields {
		if _, ok := seen[name]; !ok {
			return nil, &PlanError{In: in, Out: out, Field: name, Reason: "missing from output"}
		}
	}
	return p, nil
}

func planField(inf, of reflect.StructField) (fieldPlan, error) {
	fp := fieldPlan{name: of.Name, in: inf.Index[0], out: of.Index[0]}
	if inf.Type == of.Type {
		fp.op = opCopy
		return fp, nil
	}

	var elem reflect.Type
	if k, e := nullable.Inspect(inf.Type); k == nullable.NullKind {
		fp.shape, elem = srcNull, e
	} else if inf.Type.Kind() == reflect.Pointer {
		fp.shape, elem = srcPtr, inf.Type.Elem()
	} else {
		return fp, fmt.Errorf("%v is not nullable and differs from %v", inf.Type, of.Type)
	}

	if k, e := nullable.Inspect(of.Type); k == nullable.OptionalKind && e == elem {
		fp.op = opToOptional
		return fp, nil
	}
	if of.Type == elem {
		fp.op = opNonNull
		return fp, nil
	}
	return fp, fmt.Errorf("%v narrows to %v or nullable.Optional[%v], not %v", inf.Type, elem, elem, of.Type)
}

func (p *plan) apply(src, dst reflect.Value) error {
	for _, f := range p.fields {
		sv := src.Field(f.in)
		if f.op == opCopy {
			dst.Field(f.out).Set(sv)
			continue
		}

		var val reflect.Value
		valid := false
		switch f.shape {
		case srcNull:
			valid = sv.Field(wrapFlag).Bool()
			val = sv.Field(wrapValue)
		case srcPtr:
			valid = !sv.IsNil()
			if valid {
				val = sv.Elem()
			}
		}

		switch f.op {
		case opNonNull:
			if !valid {
				return &NonNullableError{Field: f.name, Index: -1}
			}
			dst.Field(f.out).Set(val)
		case opToOptional:
			if valid {
				o := dst.Field(f.out)
				o.Field(wrapValue).Set(val)
				o.Field(wrapFlag).SetBool(true)
			}
		}
	}
	return nil
}
