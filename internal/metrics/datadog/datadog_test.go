package datadog

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nullguard/internal/metrics"
)

type sample struct {
	kind  string
	name  string
	value float64
	tags  []string
}

type fakeClient struct {
	samples []sample
	closed  int
	err     error
}

func (f *fakeClient) Count(name string, value int64, tags []string, rate float64) error {
	f.samples = append(f.samples, sample{"count", name, float64(value), tags})
	return f.err
}

func (f *fakeClient) Histogram(name string, value float64, tags []string, rate float64) error {
	f.samples = append(f.samples, sample{"histogram", name, value, tags})
	return f.err
}

func (f *fakeClient) Close() error {
	f.closed++
	return f.err
}

func TestNewBackend(t *testing.T) {
	_, err := NewBackend(Config{})
	assert.Error(t, err)

	// UDP client creation does not dial a listener.
	b, err := NewBackend(Config{Addr: "127.0.0.1:8125", Namespace: "nullguard.", GlobalTags: []string{"env:test"}})
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.NoError(t, b.Flush())
}

func TestRecorderThroughBackend(t *testing.T) {
	fc := &fakeClient{}
	r := metrics.NewRecorder(&Backend{client: fc}, "vehicles")

	r.RecordRows(metrics.KindRejected, 2)
	r.RecordStep("guarantee", errors.New("boom"), 250*time.Millisecond)

	require.Len(t, fc.samples, 3)
	assert.Equal(t, sample{"count", metrics.RecordsTotal, 2, []string{"job:vehicles", "kind:rejected"}}, fc.samples[0])
	assert.Equal(t, sample{"count", metrics.StepTotal, 1, []string{"job:vehicles", "status:failure", "step:guarantee"}}, fc.samples[1])
	assert.Equal(t, "histogram", fc.samples[2].kind)
	assert.InDelta(t, 0.25, fc.samples[2].value, 1e-9)

	require.NoError(t, r.Flush())
	assert.Equal(t, 1, fc.closed)
}

func TestNilClient(t *testing.T) {
	b := &Backend{}
	assert.NotPanics(t, func() {
		b.IncCounter("x", 1, nil)
		b.ObserveHistogram("x", 1, nil)
	})
	assert.NoError(t, b.Flush())
}

func TestLabelsToTags(t *testing.T) {
	assert.Nil(t, labelsToTags(nil))
	assert.Equal(t, []string{"a:1", "b:2"}, labelsToTags(metrics.Labels{"b": "2", "a": "1"}))
}
