package builtin

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nullguard/internal/config"
	"nullguard/internal/logging"
	"nullguard/internal/metrics"
	"nullguard/internal/transformer"
	"nullguard/pkg/guarantee"
	"nullguard/pkg/records"
)

// ErrUnknownKind is returned by Build for a step kind it does not know.
var ErrUnknownKind = errors.New("builtin: unknown transform kind")

// Deps are shared by every step Build creates.
type Deps struct {
	Logger  *zap.Logger
	Metrics *metrics.Recorder
}

// Build turns the configured steps into a Chain. Every step is timed and
// its outcome counted through deps.Metrics.
func Build(ts []config.Transform, deps Deps) (transformer.Chain, error) {
	log := logging.OrNop(deps.Logger)
	chain := make(transformer.Chain, 0, len(ts))

	for i, t := range ts {
		var step transformer.Transformer
		switch t.Kind {
		case config.KindGuarantee:
			var gc guarantee.Config
			if err := t.Options.Decode(&gc); err != nil {
				return nil, fmt.Errorf("builtin: transform[%d]: %w", i, err)
			}
			step = Guarantee{
				Config:  gc,
				Logger:  log.With(zap.Int("step", i), zap.String("kind", t.Kind)),
				Metrics: deps.Metrics,
			}
		case config.KindRequire:
			var ro config.RequireOptions
			if err := t.Options.Decode(&ro); err != nil {
				return nil, fmt.Errorf("builtin: transform[%d]: %w", i, err)
			}
			step = Require{Fields: ro.Fields}
		default:
			return nil, fmt.Errorf("%w %q at transform[%d]", ErrUnknownKind, t.Kind, i)
		}
		chain = append(chain, instrumented{next: step, metrics: deps.Metrics})
	}

	log.Debug("transform chain built", zap.Int("steps", len(chain)))
	return chain, nil
}

// instrumented records step duration and status around next.
type instrumented struct {
	next    transformer.Transformer
	metrics *metrics.Recorder
}

func (s instrumented) Kind() string { return transformer.KindOf(s.next) }

func (s instrumented) Apply(in []records.Record) ([]records.Record, error) {
	start := time.Now()
	out, err := s.next.Apply(in)
	s.metrics.RecordStep(s.Kind(), err, time.Since(start))
	return out, err
}
