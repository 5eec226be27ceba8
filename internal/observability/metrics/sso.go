// Package metrics emits the service's standard metric shapes.
package metrics

import (
	"time"

	obserrors "github.com/target/mmk-sso/internal/observability/errors"
	"github.com/target/mmk-sso/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// CallbackMetric captures the terminal state of one callback.
type CallbackMetric struct {
	Provider string
	// State is the last state reached ("rendered" on success).
	State    string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitCallback emits the sso.callback counter and timing.
func EmitCallback(sink statsd.Sink, in CallbackMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"provider": in.Provider,
		"state":    in.State,
		"result":   in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("sso.callback", 1, tags)

	if in.Duration > 0 {
		sink.Timing("sso.callback.duration", in.Duration, CloneTags(tags))
	}
}

// InitiationMetric captures one authorization redirect.
type InitiationMetric struct {
	Provider string
	Result   string
	Err      error
}

// EmitInitiation emits the sso.begin counter.
func EmitInitiation(sink statsd.Sink, in InitiationMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"provider": in.Provider,
		"result":   in.Result,
	}
	if in.Err != nil {
		tags["error_class"] = obserrors.Classify(in.Err)
	}
	sink.Count("sso.begin", 1, tags)
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
