// Package usernotifier fans user lifecycle events out to the configured sinks.
package usernotifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	"github.com/target/mmk-sso/internal/observability/notify"
	"github.com/target/mmk-sso/internal/observability/statsd"
	"github.com/target/mmk-sso/internal/ports"
)

// SinkRegistration pairs a sink implementation with a human-readable name for logging.
type SinkRegistration struct {
	Name string
	Sink notify.Sink
	// SignIns also routes every successful sign-in to this sink, not only new users.
	SignIns bool
}

// Options configures the notifier service.
type Options struct {
	Logger  *slog.Logger
	Metrics statsd.Sink
	Sinks   []SinkRegistration
	Now     func() time.Time
}

// Service dispatches user events to all registered sinks.
type Service struct {
	logger  *slog.Logger
	metrics statsd.Sink
	sinks   []SinkRegistration
	now     func() time.Time
}

var (
	_ ports.WebhookNotifier = (*Service)(nil)
	_ ports.SignInNotifier  = (*Service)(nil)
)

// NewService constructs a notifier.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "user_notifier")
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = statsd.Discard
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var sinks []SinkRegistration
	for _, entry := range opts.Sinks {
		if entry.Sink == nil {
			continue
		}
		if entry.Name == "" {
			entry.Name = "sink"
		}
		sinks = append(sinks, entry)
	}

	return &Service{
		logger:  logger,
		metrics: metrics,
		sinks:   sinks,
		now:     now,
	}
}

// OnProvisioned delivers a user.provisioned event to every sink and returns
// the joined delivery errors. Callers treat the result as advisory.
func (s *Service) OnProvisioned(
	ctx context.Context,
	provider domainauth.ProviderName,
	user domainauth.User,
) error {
	s.metrics.Count("sso.user.provisioned", 1, map[string]string{"provider": string(provider)})
	if len(s.sinks) == 0 {
		return nil
	}
	return s.fanOut(ctx, s.sinks, s.event(notify.EventUserProvisioned, provider, user))
}

// OnSuccess records a successful sign-in and forwards it to sinks that asked for sign-ins.
func (s *Service) OnSuccess(ctx context.Context, provider domainauth.ProviderName, user domainauth.User) {
	s.logger.InfoContext(ctx, "admin sign-in",
		"provider", provider,
		"user_id", user.ID,
		"email", user.Email,
	)
	s.metrics.Count("sso.signin", 1, map[string]string{"provider": string(provider)})

	var targets []SinkRegistration
	for _, entry := range s.sinks {
		if entry.SignIns {
			targets = append(targets, entry)
		}
	}
	if len(targets) == 0 {
		return
	}
	if err := s.fanOut(ctx, targets, s.event(notify.EventUserSignedIn, provider, user)); err != nil {
		s.logger.WarnContext(ctx, "sign-in notification incomplete", "error", err)
	}
}

// Enabled reports whether the notifier has any active sinks.
func (s *Service) Enabled() bool {
	return len(s.sinks) > 0
}

func (s *Service) event(name string, provider domainauth.ProviderName, user domainauth.User) notify.UserEvent {
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, r.ID)
	}
	return notify.UserEvent{
		Event:      name,
		Provider:   string(provider),
		UserID:     user.ID,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Roles:      roles,
		OccurredAt: s.now().UTC(),
	}
}

func (s *Service) fanOut(ctx context.Context, targets []SinkRegistration, event notify.UserEvent) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, entry := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := entry.Sink.SendUserEvent(ctx, event); err != nil {
				s.logger.ErrorContext(ctx, "user notifier delivery error",
					"sink", entry.Name,
					"event", event.Event,
					"user_id", event.UserID,
					"error", err,
				)
				s.metrics.Count("notify.delivery_failed", 1, map[string]string{"sink": entry.Name})
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", entry.Name, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}
