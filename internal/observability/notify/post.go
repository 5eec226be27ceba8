package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBackoffStep = 200 * time.Millisecond

// Poster delivers a JSON document to an HTTP endpoint, retrying failed
// attempts with a linear backoff.
type Poster struct {
	// Name prefixes error messages ("slack", "webhook").
	Name       string
	URL        string
	Header     http.Header
	RetryLimit int
	// BackoffStep is the delay unit between attempts (attempt n waits n*step).
	BackoffStep time.Duration
	Client      *http.Client
}

// Post sends body, retrying up to RetryLimit times. It stops early when ctx is done.
func (p Poster) Post(ctx context.Context, body []byte) error {
	attempts := max(p.RetryLimit, 0) + 1
	step := p.BackoffStep
	if step <= 0 {
		step = defaultBackoffStep
	}

	var lastErr error
	for attempt := range attempts {
		err := p.postOnce(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < attempts-1 {
			timer := time.NewTimer(time.Duration(attempt+1) * step)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return lastErr
}

func (p Poster) postOnce(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", p.Name, err)
	}
	for k, vals := range p.Header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	hc := p.Client
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", p.Name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return p.errorResponse(resp)
	}
	return p.drain(resp)
}

func (p Poster) drain(resp *http.Response) error {
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		if closeErr := resp.Body.Close(); closeErr != nil {
			return errors.Join(
				fmt.Errorf("drain %s response body: %w", p.Name, err),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return fmt.Errorf("drain %s response body: %w", p.Name, err)
	}
	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}
	return nil
}

func (p Poster) errorResponse(resp *http.Response) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	closeErr := resp.Body.Close()
	if readErr != nil {
		return errors.Join(fmt.Errorf("read %s error response: %w", p.Name, readErr), closeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close response body: %w", closeErr)
	}
	return fmt.Errorf("%s %s: %s", p.Name, resp.Status, strings.TrimSpace(string(respBody)))
}
