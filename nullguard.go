// Package nullguard narrows the nullability of record fields.
//
// For a one-off call use Apply (dynamic records) or the typed helpers in
// pkg/guarantee. For a configured, logged and measured run, build a Pipeline
// from a JSON or YAML document:
//
//	p, err := nullguard.New([]byte(`
//	job: vehicles
//	transform:
//	  - kind: guarantee
//	    options: { non_nullable: [pcv], null_to_undefined: [date_to] }
//	`))
//	if err != nil { ... }
//	defer p.Close()
//	out, err := p.Run(recs)
package nullguard

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nullguard/internal/config"
	"nullguard/internal/logging"
	"nullguard/internal/metrics"
	"nullguard/internal/metrics/datadog"
	"nullguard/internal/metrics/prompush"
	"nullguard/internal/transformer"
	"nullguard/internal/transformer/builtin"
	"nullguard/pkg/guarantee"
	"nullguard/pkg/records"
)

// Apply is guarantee.Apply with the two field lists passed directly.
func Apply(recs []records.Record, nonNullable, nullToUndefined []string) ([]records.Record, error) {
	return guarantee.Apply(recs, guarantee.Config{
		NonNullable:     nonNullable,
		NullToUndefined: nullToUndefined,
	})
}

// Pipeline runs a configured chain of steps over batches of records. It is
// safe for concurrent use; runs share nothing but the logger and metrics.
type Pipeline struct {
	job     string
	chain   transformer.Chain
	log     *zap.Logger
	metrics *metrics.Recorder
}

// Option customises New.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	backend metrics.Backend
}

// WithLogger makes the pipeline log through l instead of building a logger
// from the config's log section.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// withBackend overrides the configured metrics backend.
func withBackend(b metrics.Backend) Option {
	return func(o *options) { o.backend = b }
}

// New parses, lints and wires a pipeline. Lint errors fail New; warnings are
// logged.
func New(data []byte, opts ...Option) (*Pipeline, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := config.Parse(data)
	if err != nil {
		return nil, err
	}

	issues := config.ValidatePipeline(cfg)
	if config.HasErrors(issues) {
		var errs []error
		for _, iss := range issues {
			if iss.Severity == config.SeverityError {
				errs = append(errs, iss)
			}
		}
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, errors.Join(errs...))
	}

	log := o.logger
	if log == nil {
		if log, err = logging.New(cfg.Log); err != nil {
			return nil, err
		}
	}
	job := cfg.JobName()
	log = log.With(zap.String("job", job))
	for _, iss := range issues {
		log.Warn("config warning", zap.String("path", iss.Path), zap.String("message", iss.Message))
	}

	backend := o.backend
	if backend == nil {
		if backend, err = newBackend(job, cfg.Metrics); err != nil {
			return nil, err
		}
	}
	rec := metrics.NewRecorder(backend, job)

	chain, err := builtin.Build(cfg.Transform, builtin.Deps{Logger: log, Metrics: rec})
	if err != nil {
		return nil, err
	}

	log.Info("pipeline ready", zap.Int("steps", len(chain)), zap.String("metrics", cfg.Metrics.Kind))
	return &Pipeline{job: job, chain: chain, log: log, metrics: rec}, nil
}

func newBackend(job string, m config.Metrics) (metrics.Backend, error) {
	switch m.Kind {
	case "prometheus":
		b, err := prompush.NewBackend(job, m.GatewayURL)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{Addr: m.Addr, Namespace: m.Namespace, GlobalTags: m.Tags})
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return metrics.Nop(), nil
	}
}

// Job returns the job name used for logs and metrics.
func (p *Pipeline) Job() string { return p.job }

// Run applies every step to recs and returns the final records. Without any
// steps it returns fresh shallow copies. On failure nothing is returned and
// the error identifies the step (see transformer.StepError) and wraps the
// step's own error, e.g. a *guarantee.NonNullableError.
func (p *Pipeline) Run(recs []records.Record) ([]records.Record, error) {
	start := time.Now()

	var (
		out []records.Record
		err error
	)
	if len(p.chain) == 0 {
		out, err = guarantee.Apply(recs, guarantee.Config{})
	} else {
		out, err = p.chain.Apply(recs)
	}

	p.metrics.RecordStep("pipeline", err, time.Since(start))
	if err != nil {
		p.log.Error("pipeline run failed", zap.Int("records", len(recs)), zap.Error(err))
		return nil, err
	}
	p.log.Debug("pipeline run done", zap.Int("records", len(out)), zap.Duration("took", time.Since(start)))
	return out, nil
}

// Close flushes metrics (pushing to the Pushgateway or closing the DogStatsD
// client) and syncs the logger. The pipeline must not be used afterwards.
func (p *Pipeline) Close() error {
	err := p.metrics.Flush()
	// stderr sync errors are platform noise
	_ = p.log.Sync()
	if err != nil {
		return fmt.Errorf("nullguard: flush metrics: %w", err)
	}
	return nil
}
