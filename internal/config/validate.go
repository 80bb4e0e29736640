// Package config provides configuration models and helpers for nullguard
// pipelines.
//
// This file adds a lightweight linter for Pipeline values. It performs static
// checks over a decoded Pipeline and returns a list of issues (errors and
// warnings) that callers can surface or fail on.
package config

import (
	"fmt"
	"strings"

	"nullguard/pkg/guarantee"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates something worth surfacing that does not block
	// execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single lint finding.
//
// Path is a dotted path into the config (e.g. "metrics.kind",
// "transform[1].options"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be returned as one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Step kinds understood by the builtin registry.
const (
	KindGuarantee = "guarantee"
	KindRequire   = "require"
)

// RequireOptions is the options shape of a require step.
type RequireOptions struct {
	Fields []string `mapstructure:"fields"`
}

// ValidatePipeline lints p without mutating it.
//
// Example:
//
//	p, err := config.Parse(data)
//	if err != nil { ... }
//	for _, iss := range config.ValidatePipeline(p) {
//	    fmt.Println(iss)
//	}
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  fmt.Sprintf("job is empty; metrics and logs will use %q", DefaultJob),
		})
	}
	issues = append(issues, validateLog(p.Log)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	issues = append(issues, validateTransforms(p.Transform)...)

	return issues
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

func validateLog(l Log) []Issue {
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "error":
		return nil
	}
	return []Issue{{
		Severity: SeverityError,
		Path:     "log.level",
		Message:  fmt.Sprintf("unknown log level %q; use debug, info, warn or error", l.Level),
	}}
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Kind {
	case "", "none":
	case "prometheus":
		if strings.TrimSpace(m.GatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.gateway_url",
				Message:  "prometheus metrics require a Pushgateway URL",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.Addr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.addr",
				Message:  "datadog metrics require a DogStatsD address",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.kind",
			Message:  fmt.Sprintf("unknown metrics kind %q", m.Kind),
		})
	}

	return issues
}

// validateTransforms validates the step chain.
func validateTransforms(ts []Transform) []Issue {
	var issues []Issue

	if len(ts) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "transform",
			Message:  "no transforms configured; records are copied through unchanged",
		})
		return issues
	}

	for i, t := range ts {
		path := fmt.Sprintf("transform[%d]", i)
		if strings.TrimSpace(t.Kind) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".kind",
				Message:  "transform kind must not be empty",
			})
			continue
		}

		switch t.Kind {
		case KindGuarantee:
			issues = append(issues, validateGuarantee(path+".options", t.Options)...)
		case KindRequire:
			var ro RequireOptions
			if err := t.Options.Decode(&ro); err != nil {
				issues = append(issues, Issue{Severity: SeverityError, Path: path + ".options", Message: err.Error()})
			} else if len(ro.Fields) == 0 {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     path + ".options.fields",
					Message:  "require step lists no fields; it will not check anything",
				})
			}
		default:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".kind",
				Message:  fmt.Sprintf("unknown transform kind %q", t.Kind),
			})
		}
	}

	return issues
}

func validateGuarantee(path string, o Options) []Issue {
	var gc guarantee.Config
	if err := o.Decode(&gc); err != nil {
		return []Issue{{Severity: SeverityError, Path: path, Message: err.Error()}}
	}

	var issues []Issue
	if gc.IsZero() {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     path,
			Message:  "guarantee step names no fields; it only copies records",
		})
	}
	for _, f := range gc.Overlap() {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     path,
			Message:  fmt.Sprintf("field %q is both non_nullable and null_to_undefined; a null there fails the step", f),
		})
	}
	for _, f := range append(append([]string(nil), gc.NonNullable...), gc.NullToUndefined...) {
		if strings.TrimSpace(f) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "field names must not be empty",
			})
			break
		}
	}
	return issues
}
