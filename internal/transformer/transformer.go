// Package transformer defines the step interface records flow through and
// the ordered Chain that runs them.
//
// Steps never mutate the slice or records they are handed; each returns a new
// slice. A failing step aborts the chain and no partial result is returned.
package transformer

import (
	"fmt"

	"nullguard/pkg/records"
)

// Transformer is a single step.
type Transformer interface {
	Apply([]records.Record) ([]records.Record, error)
}

// Func adapts a function to Transformer.
type Func func([]records.Record) ([]records.Record, error)

func (f Func) Apply(in []records.Record) ([]records.Record, error) { return f(in) }

// Named lets a step report a kind for errors and metrics.
type Named interface {
	Kind() string
}

// KindOf returns t's kind, or "step" when it does not report one.
func KindOf(t Transformer) string {
	if n, ok := t.(Named); ok {
		return n.Kind()
	}
	return "step"
}

// StepError wraps the error of the step at Index.
type StepError struct {
	Index int
	Kind  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs each step on the previous step's output. An empty chain returns
// a copy of the input slice.
func (c Chain) Apply(in []records.Record) ([]records.Record, error) {
	if len(c) == 0 {
		out := make([]records.Record, len(in))
		copy(out, in)
		return out, nil
	}
	out := in
	for i, t := range c {
		next, err := t.Apply(out)
		if err != nil {
			return nil, &StepError{Index: i, Kind: KindOf(t), Err: err}
		}
		out = next
	}
	return out, nil
}
