// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from nullguard pipelines.
//
// The package is intentionally minimal:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - A Recorder binds a Backend to a job name. A nil Recorder, or one built
//     with a nil Backend, records nothing, so instrumented code never has to
//     check whether metrics are configured.
//   - Concrete metric systems (Prometheus, Datadog) live in subpackages so the
//     rest of the module depends only on this interface.
package metrics

import "time"

// Metric names emitted by Recorder.
const (
	StepTotal           = "nullguard_step_total"
	StepDurationSeconds = "nullguard_step_duration_seconds"
	RecordsTotal        = "nullguard_records_total"
)

// Record kinds used with RecordsTotal.
const (
	KindProcessed = "processed" // records that entered a step
	KindRewritten = "rewritten" // null fields rewritten to undefined
	KindRejected  = "rejected"  // steps aborted by a non-nullable violation
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used when no backend is configured.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

// Nop returns a Backend that discards everything.
func Nop() Backend { return nopBackend{} }

// Recorder records pipeline metrics for one job.
type Recorder struct {
	backend Backend
	job     string
}

// NewRecorder binds b to job. A nil b records nothing.
func NewRecorder(b Backend, job string) *Recorder {
	if b == nil {
		b = nopBackend{}
	}
	return &Recorder{backend: b, job: job}
}

func (r *Recorder) b() Backend {
	if r == nil || r.backend == nil {
		return nopBackend{}
	}
	return r.backend
}

// Job returns the job label, or "" for a nil Recorder.
func (r *Recorder) Job() string {
	if r == nil {
		return ""
	}
	return r.job
}

// Flush delegates to the backend.
func (r *Recorder) Flush() error {
	return r.b().Flush()
}

// RecordStep measures latency and success/failure of one step run.
func (r *Recorder) RecordStep(step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    r.Job(),
		"step":   step,
		"status": status,
	}

	r.b().IncCounter(StepTotal, 1, lbls)
	r.b().ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRows increments the record counter for kind. Non-positive deltas
// are ignored.
func (r *Recorder) RecordRows(kind string, delta int64) {
	if delta <= 0 {
		return
	}
	r.b().IncCounter(RecordsTotal, float64(delta), Labels{
		"job":  r.Job(),
		"kind": kind,
	})
}
