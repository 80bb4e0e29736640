package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nullguard/pkg/guarantee"
)

const jsonPipeline = `{
  "job": "vehicles",
  "log": {"level": "debug"},
  "metrics": {"kind": "datadog", "addr": "127.0.0.1:8125", "tags": ["env:test"]},
  "transform": [
    {"kind": "require", "options": {"fields": ["pcv"]}},
    {"kind": "guarantee", "options": {"non_nullable": ["pcv", "date_from"], "null_to_undefined": ["date_to"]}},
    {"kind": "guarantee"}
  ]
}`

const yamlPipeline = `
job: vehicles
log:
  level: debug
metrics:
  kind: datadog
  addr: 127.0.0.1:8125
  tags: [env:test]
transform:
  - kind: require
    options: { fields: [pcv] }
  - kind: guarantee
    options:
      non_nullable: [pcv, date_from]
      null_to_undefined: [date_to]
  - kind: guarantee
`

/*
TestParse_JSONAndYAMLAgree decodes the same pipeline from both formats and
checks the guarantee options survive into a guarantee.Config.
*/
func TestParse_JSONAndYAMLAgree(t *testing.T) {
	for name, src := range map[string]string{"json": jsonPipeline, "yaml": yamlPipeline} {
		t.Run(name, func(t *testing.T) {
			p, err := Parse([]byte(src))
			require.NoError(t, err)

			assert.Equal(t, "vehicles", p.Job)
			assert.Equal(t, "debug", p.Log.Level)
			assert.Equal(t, "datadog", p.Metrics.Kind)
			assert.Equal(t, []string{"env:test"}, p.Metrics.Tags)
			require.Len(t, p.Transform, 3)

			var ro RequireOptions
			require.NoError(t, p.Transform[0].Options.Decode(&ro))
			assert.Equal(t, []string{"pcv"}, ro.Fields)

			var gc guarantee.Config
			require.NoError(t, p.Transform[1].Options.Decode(&gc))
			assert.Equal(t, guarantee.Config{
				NonNullable:     []string{"pcv", "date_from"},
				NullToUndefined: []string{"date_to"},
			}, gc)

			var empty guarantee.Config
			require.NoError(t, p.Transform[2].Options.Decode(&empty))
			assert.True(t, empty.IsZero())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"json_unknown_key": `{"jobb": "x"}`,
		"json_syntax":      `{"job": }`,
		"yaml_unknown_key": "jobb: x\n",
		"yaml_wrong_type":  "transform: notalist\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}

func TestParse_Empty(t *testing.T) {
	p, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Pipeline{}, p)
	assert.Equal(t, DefaultJob, p.JobName())

	p.Job = "x"
	assert.Equal(t, "x", p.JobName())
}

func TestOptions_Decode(t *testing.T) {
	var gc guarantee.Config
	err := Options{"non_nullable": []any{"a"}, "typo": []any{"b"}}.Decode(&gc)
	assert.Error(t, err, "unused keys are rejected")

	err = Options{"non_nullable": "a"}.Decode(&gc)
	assert.Error(t, err, "a scalar is not a list")

	gc = guarantee.Config{}
	require.NoError(t, Options(nil).Decode(&gc))
	assert.True(t, gc.IsZero())
}

func TestOptions_UnmarshalJSONNull(t *testing.T) {
	p, err := ParseJSON([]byte(`{"transform": [{"kind": "guarantee", "options": null}]}`))
	require.NoError(t, err)
	require.Len(t, p.Transform, 1)
	assert.NotNil(t, p.Transform[0].Options)
	assert.Empty(t, p.Transform[0].Options)
}
