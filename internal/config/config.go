// Package config defines the serialisable configuration model for a nullguard
// pipeline: which guarantee steps run, in what order, and how the run is
// logged and measured.
//
// Design goals:
//
//  1. Stability: changes to this package should be additive.
//  2. Clarity: Go field names mirror the JSON/YAML keys one to one.
//  3. No I/O: callers hand in bytes; reading files or the environment is left
//     to whoever embeds the pipeline.
//
// Example (YAML):
//
//	job: vehicles
//	log: { level: debug }
//	metrics: { kind: prometheus, gateway_url: http://pushgateway:9091 }
//	transform:
//	  - kind: require
//	    options: { fields: [pcv] }
//	  - kind: guarantee
//	    options:
//	      non_nullable: [pcv, date_from]
//	      null_to_undefined: [date_to]
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every decoding failure returned by Parse.
var ErrInvalid = errors.New("config: invalid pipeline")

// DefaultJob labels metrics and logs when Pipeline.Job is empty.
const DefaultJob = "nullguard"

// Pipeline is the top-level configuration object.
type Pipeline struct {
	// Job names the pipeline for metrics labels and log fields.
	Job string `json:"job" yaml:"job"`

	Log     Log     `json:"log" yaml:"log"`
	Metrics Metrics `json:"metrics" yaml:"metrics"`

	// Transform lists the ordered steps applied to each batch of records.
	Transform []Transform `json:"transform" yaml:"transform"`
}

// JobName returns Job, or DefaultJob when it is empty.
func (p Pipeline) JobName() string {
	if p.Job == "" {
		return DefaultJob
	}
	return p.Job
}

// Log configures the zap logger.
type Log struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string `json:"level" yaml:"level"`
	// Development switches to zap's development (console) config.
	Development bool `json:"development" yaml:"development"`
}

// Metrics selects a metrics backend.
type Metrics struct {
	// Kind is "", "none", "prometheus" or "datadog".
	Kind string `json:"kind" yaml:"kind"`

	// GatewayURL is the Pushgateway base URL for the prometheus kind.
	GatewayURL string `json:"gateway_url" yaml:"gateway_url"`

	// Addr is the DogStatsD address for the datadog kind.
	Addr string `json:"addr" yaml:"addr"`
	// Namespace prefixes Datadog metric names, e.g. "nullguard.".
	Namespace string `json:"namespace" yaml:"namespace"`
	// Tags are applied to every Datadog metric, e.g. "env:prod".
	Tags []string `json:"tags" yaml:"tags"`
}

// Transform is a single step. Kind selects the implementation, Options is
// interpreted by it.
type Transform struct {
	Kind    string  `json:"kind" yaml:"kind"`
	Options Options `json:"options" yaml:"options"`
}

// Parse decodes a pipeline from JSON (when the first non-space byte is '{')
// or YAML. Unknown top-level keys are rejected in JSON and YAML alike.
func Parse(data []byte) (Pipeline, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return ParseJSON(trimmed)
	}
	return ParseYAML(data)
}

// ParseJSON decodes a JSON pipeline.
func ParseJSON(data []byte) (Pipeline, error) {
	var p Pipeline
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Pipeline{}, fmt.Errorf("%w: json: %v", ErrInvalid, err)
	}
	return p, nil
}

// ParseYAML decodes a YAML pipeline. An empty document is the zero Pipeline.
func ParseYAML(data []byte) (Pipeline, error) {
	var p Pipeline
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Pipeline{}, fmt.Errorf("%w: yaml: %v", ErrInvalid, err)
	}
	return p, nil
}

// Options is a free-form bag for step-specific settings. Each step kind
// defines its own struct and reads the bag with Decode.
type Options map[string]any

// Decode maps o onto out (a pointer to a struct with mapstructure tags).
// Keys that match no field are an error, as are values of the wrong type.
func (o Options) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      out,
		TagName:     "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("config: options decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(o)); err != nil {
		return fmt.Errorf("config: decode options: %w", err)
	}
	return nil
}

// UnmarshalJSON makes a missing or null "options" decode to an empty,
// non-nil map.
func (o *Options) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	var tmp map[string]any
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}

// UnmarshalYAML is the YAML counterpart of UnmarshalJSON.
func (o *Options) UnmarshalYAML(n *yaml.Node) error {
	var tmp map[string]any
	if err := n.Decode(&tmp); err != nil {
		return err
	}
	if tmp == nil {
		tmp = map[string]any{}
	}
	*o = Options(tmp)
	return nil
}
