// Package webhook posts user events as JSON to an operator-configured endpoint.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/target/mmk-sso/internal/observability/notify"
)

// SignatureHeader carries hex(HMAC-SHA256(secret, body)) when a secret is configured.
const SignatureHeader = "X-MMK-Signature"

// EventHeader carries the event name so receivers can route without decoding the body.
const EventHeader = "X-MMK-Event"

// Config configures the webhook client.
type Config struct {
	URL        string
	Secret     string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
}

// Client delivers user events to a generic JSON webhook.
type Client struct {
	secret []byte
	poster notify.Poster
}

// NewClient builds a webhook client.
func NewClient(cfg Config) (*Client, error) {
	target := strings.TrimSpace(cfg.URL)
	if target == "" {
		return nil, errors.New("webhook url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		secret: []byte(cfg.Secret),
		poster: notify.Poster{
			Name:       "webhook",
			URL:        target,
			RetryLimit: max(cfg.RetryLimit, 0),
			Client:     hc,
		},
	}, nil
}

// SendUserEvent posts the event document.
func (c *Client) SendUserEvent(ctx context.Context, event notify.UserEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	p := c.poster
	p.Header = http.Header{}
	p.Header.Set(EventHeader, event.Event)
	if len(c.secret) > 0 {
		p.Header.Set(SignatureHeader, Sign(c.secret, body))
	}
	return p.Post(ctx, body)
}

// Sign returns the hex-encoded HMAC-SHA256 of body under secret.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
