package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/mmk-sso/internal/observability/notify"
)

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient(Config{URL: "  "})
	require.Error(t, err)
}

func TestSendUserEventSignsBody(t *testing.T) {
	var (
		gotBody  []byte
		gotSig   string
		gotEvent string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSig = r.Header.Get(SignatureHeader)
		gotEvent = r.Header.Get(EventHeader)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := NewClient(Config{URL: srv.URL, Secret: "s3cret"})
	require.NoError(t, err)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	err = c.SendUserEvent(context.Background(), notify.UserEvent{
		Event:      notify.EventUserProvisioned,
		Provider:   "azuread",
		UserID:     "u-1",
		Email:      "a@example.com",
		OccurredAt: at,
	})
	require.NoError(t, err)

	assert.Equal(t, notify.EventUserProvisioned, gotEvent)
	assert.Equal(t, Sign([]byte("s3cret"), gotBody), gotSig)

	var decoded notify.UserEvent
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, "u-1", decoded.UserID)
	assert.Equal(t, "azuread", decoded.Provider)
	assert.True(t, at.Equal(decoded.OccurredAt))
}

func TestSendUserEventNoSecretNoSignature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(SignatureHeader))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)
	require.NoError(t, c.SendUserEvent(context.Background(), notify.UserEvent{Event: notify.EventUserSignedIn}))
}

func TestSendUserEventGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(Config{URL: srv.URL, RetryLimit: 2})
	require.NoError(t, err)
	c.poster.BackoffStep = time.Millisecond

	err = c.SendUserEvent(context.Background(), notify.UserEvent{Event: notify.EventUserProvisioned})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "down")
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendUserEventStopsOnCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewClient(Config{URL: srv.URL, RetryLimit: 5})
	require.NoError(t, err)
	c.poster.BackoffStep = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = c.SendUserEvent(ctx, notify.UserEvent{Event: notify.EventUserProvisioned})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
