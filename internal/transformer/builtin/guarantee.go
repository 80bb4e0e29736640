// Package builtin contains the steps a pipeline config can name.
package builtin

import (
	"errors"

	"go.uber.org/zap"

	"nullguard/internal/config"
	"nullguard/internal/logging"
	"nullguard/internal/metrics"
	"nullguard/pkg/guarantee"
	"nullguard/pkg/records"
)

// Guarantee runs guarantee.Apply as a chain step, logging violations and
// counting processed, rewritten and rejected records.
type Guarantee struct {
	Config  guarantee.Config
	Logger  *zap.Logger
	Metrics *metrics.Recorder
}

func (Guarantee) Kind() string { return config.KindGuarantee }

// Apply returns the guaranteed copy of in, or the *guarantee.NonNullableError
// of the first violation.
func (g Guarantee) Apply(in []records.Record) ([]records.Record, error) {
	log := logging.OrNop(g.Logger)
	g.Metrics.RecordRows(metrics.KindProcessed, int64(len(in)))

	out, err := guarantee.Apply(in, g.Config)
	if err != nil {
		var nn *guarantee.NonNullableError
		if errors.As(err, &nn) {
			g.Metrics.RecordRows(metrics.KindRejected, 1)
			log.Warn("non-nullable field is null",
				zap.String("field", nn.Field),
				zap.Int("record", nn.Index),
				zap.Int("records", len(in)))
		}
		return nil, err
	}

	rewritten := countNulls(in, g.Config.NullToUndefined)
	g.Metrics.RecordRows(metrics.KindRewritten, int64(rewritten))
	log.Debug("guarantee applied",
		zap.Int("records", len(out)),
		zap.Int("rewritten", rewritten),
		zap.Strings("non_nullable", g.Config.NonNullable),
		zap.Strings("null_to_undefined", g.Config.NullToUndefined))
	return out, nil
}

// countNulls counts null values across in for the distinct names in fields.
func countNulls(in []records.Record, fields []string) int {
	if len(fields) == 0 {
		return 0
	}
	uniq := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		uniq[f] = struct{}{}
	}
	n := 0
	for _, r := range in {
		for f := range uniq {
			if r.IsNull(f) {
				n++
			}
		}
	}
	return n
}
