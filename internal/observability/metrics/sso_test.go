package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/target/mmk-sso/internal/errors"
)

type recordedMetric struct {
	kind string
	name string
	tags map[string]string
}

type recordingSink struct {
	mu      sync.Mutex
	metrics []recordedMetric
}

func (r *recordingSink) Count(name string, _ int64, tags map[string]string) {
	r.add("count", name, tags)
}

func (r *recordingSink) Timing(name string, _ time.Duration, tags map[string]string) {
	r.add("timing", name, tags)
}

func (r *recordingSink) add(kind, name string, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = append(r.metrics, recordedMetric{kind: kind, name: name, tags: tags})
}

func TestEmitCallbackSuccess(t *testing.T) {
	sink := &recordingSink{}
	EmitCallback(sink, CallbackMetric{
		Provider: "cognito",
		State:    "rendered",
		Result:   ResultSuccess,
		Duration: 20 * time.Millisecond,
	})

	require.Len(t, sink.metrics, 2)
	assert.Equal(t, "sso.callback", sink.metrics[0].name)
	assert.Equal(t, map[string]string{"provider": "cognito", "state": "rendered", "result": "success"}, sink.metrics[0].tags)
	assert.Equal(t, "timing", sink.metrics[1].kind)
}

func TestEmitCallbackErrorClass(t *testing.T) {
	sink := &recordingSink{}
	EmitCallback(sink, CallbackMetric{
		Provider: "azuread",
		State:    "received",
		Result:   ResultError,
		Err:      apperrors.Protocol("invalid state"),
	})
	require.Len(t, sink.metrics, 1)
	assert.Equal(t, "protocol", sink.metrics[0].tags["error_class"])
}

func TestEmitNilSink(t *testing.T) {
	assert.NotPanics(t, func() {
		EmitCallback(nil, CallbackMetric{})
		EmitInitiation(nil, InitiationMetric{})
	})
}

func TestEmitInitiation(t *testing.T) {
	sink := &recordingSink{}
	EmitInitiation(sink, InitiationMetric{Provider: "okta", Result: ResultError, Err: errors.New("x")})
	require.Len(t, sink.metrics, 1)
	assert.Equal(t, "sso.begin", sink.metrics[0].name)
	assert.Equal(t, "errors_errorstring", sink.metrics[0].tags["error_class"])
}
