package transformer

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nullguard/pkg/records"
)

/*
addFieldTransformer returns fresh copies of every record with key set to val.
*/
type addFieldTransformer struct {
	key string
	val any
}

func (t addFieldTransformer) Apply(in []records.Record) ([]records.Record, error) {
	out := make([]records.Record, len(in))
	for i, r := range in {
		cp := r.Clone()
		if cp == nil {
			cp = records.Record{}
		}
		cp[t.key] = t.val
		out[i] = cp
	}
	return out, nil
}

func (addFieldTransformer) Kind() string { return "add" }

/*
failTransformer fails every call and counts them.
*/
type failTransformer struct {
	calls *int
	err   error
}

func (t failTransformer) Apply([]records.Record) ([]records.Record, error) {
	*t.calls++
	return nil, t.err
}

func makeRecs(n int) []records.Record {
	recs := make([]records.Record, n)
	for i := 0; i < n; i++ {
		recs[i] = records.Record{"id": i}
	}
	return recs
}

/*
TestChainApply_CompositionOrder verifies each step receives the previous
step's output and the steps run in declared order.
*/
func TestChainApply_CompositionOrder(t *testing.T) {
	in := []records.Record{{"id": 1}}
	c := Chain{
		addFieldTransformer{key: "a", val: "first"},
		addFieldTransformer{key: "a", val: "second"},
		addFieldTransformer{key: "c", val: "third"},
	}
	out, err := c.Apply(in)
	require.NoError(t, err)

	assert.Equal(t, records.Record{"id": 1, "a": "second", "c": "third"}, out[0])
	assert.Equal(t, records.Record{"id": 1}, in[0], "input must not be mutated")
}

/*
TestChainApply_StopsAtFirstError checks fail-fast: later steps never run, no
partial output is returned and the error names the failing step.
*/
func TestChainApply_StopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	var failCalls, laterCalls int
	later := Func(func(in []records.Record) ([]records.Record, error) {
		laterCalls++
		return in, nil
	})
	c := Chain{
		addFieldTransformer{key: "a", val: 1},
		failTransformer{calls: &failCalls, err: boom},
		later,
	}

	out, err := c.Apply(makeRecs(2))
	assert.Nil(t, out)
	assert.Equal(t, 1, failCalls)
	assert.Equal(t, 0, laterCalls)

	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Index)
	assert.Equal(t, "step", se.Kind)
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "step 1 (step): boom")
}

func TestChainApply_EmptyChainCopiesSlice(t *testing.T) {
	in := makeRecs(3)

	for _, c := range []Chain{nil, {}} {
		out, err := c.Apply(in)
		require.NoError(t, err)
		assert.Equal(t, in, out)
		out[0] = records.Record{"id": "replaced"}
		assert.Equal(t, 0, in[0]["id"])
	}
}

func TestChainApply_NilInput(t *testing.T) {
	out, err := Chain{addFieldTransformer{key: "a", val: 1}}.Apply(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "add", KindOf(addFieldTransformer{}))
	assert.Equal(t, "step", KindOf(Func(nil)))
}

/*
BenchmarkChain_AddField measures a two-step copy-on-write chain over a
medium batch.
*/
func BenchmarkChain_AddField(b *testing.B) {
	const recs = 20000
	in := make([]records.Record, recs)
	for i := 0; i < recs; i++ {
		in[i] = records.Record{"id": i, "name": "user_" + strconv.Itoa(i%1000)}
	}
	c := Chain{
		addFieldTransformer{"a", "x"},
		addFieldTransformer{"b", "y"},
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = c.Apply(in)
	}
}
