package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/mmk-sso/config"
	"github.com/target/mmk-sso/internal/adapters/jwtissuer"
	"github.com/target/mmk-sso/internal/adapters/render"
	httpx "github.com/target/mmk-sso/internal/http"
	"github.com/target/mmk-sso/internal/observability/notify/slack"
	"github.com/target/mmk-sso/internal/observability/notify/webhook"
	"github.com/target/mmk-sso/internal/observability/statsd"
	"github.com/target/mmk-sso/internal/service"
	"github.com/target/mmk-sso/internal/service/usernotifier"
)

// ServiceContainer holds the application services.
type ServiceContainer struct {
	SSO           *service.SSOService
	Readiness     *httpx.ReadinessHandlers
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	// MetricsSink is statsd.Discard when metrics are disabled.
	MetricsSink statsd.Sink
	Notifier    *usernotifier.Service
	closers     []func() error
}

// Close releases observability resources.
func (c *ServiceContainer) Close() error {
	var errs []error
	for _, closeFn := range c.Observability.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices wires the sign-in service and its collaborators.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("service deps require config")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	obs := buildObservability(cfg, logger)

	authCfg := AuthConfig{
		SSO:         cfg.SSO,
		DB:          deps.DB,
		RedisClient: deps.RedisClient,
		Logger:      logger,
	}
	attempts, err := BuildAttemptStore(authCfg)
	if err != nil {
		return nil, fmt.Errorf("attempt store: %w", err)
	}
	users, err := BuildUserDirectory(authCfg)
	if err != nil {
		return nil, fmt.Errorf("user directory: %w", err)
	}
	wl, err := BuildWhitelist(authCfg)
	if err != nil {
		return nil, fmt.Errorf("whitelist: %w", err)
	}

	issuer, err := jwtissuer.New(jwtissuer.Options{
		Secret: []byte(cfg.SSO.JWT.Secret),
		TTL:    cfg.SSO.JWT.TTL,
		Issuer: cfg.SSO.JWT.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}
	renderer, err := render.NewHTMLRenderer(render.Options{
		AdminURL: cfg.SSO.AdminURL,
		Logger:   logger.With("component", "sso_render"),
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}

	sso, err := service.NewSSOService(service.SSOServiceOptions{
		Providers: BuildProviderRegistry(authCfg),
		Attempts:  attempts,
		Users:     users,
		Issuer:    issuer,
		Renderer:  renderer,
		Whitelist: wl,
		Roles:     BuildRoleMapper(cfg.SSO),
		Webhook:   obs.Notifier,
		SignIn:    obs.Notifier,
		Locales:   service.NewLocaleNegotiator(cfg.SSO.Locales),
		Metrics:   obs.MetricsSink,
		Logger:    logger.With("component", "sso"),
	})
	if err != nil {
		return nil, err
	}

	return &ServiceContainer{
		SSO:           sso,
		Readiness:     buildReadiness(deps.DB, deps.RedisClient, logger),
		Observability: obs,
	}, nil
}

// buildObservability configures metrics and notification adapters.
func buildObservability(cfg *config.AppConfig, logger *slog.Logger) ObservabilityContainer {
	obsLogger := logger.With("component", "observability")
	obs := ObservabilityContainer{MetricsSink: statsd.Discard}

	metricsCfg := cfg.Observability.Metrics
	if metricsCfg.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Address: metricsCfg.StatsdAddress,
			Prefix:  metricsCfg.Prefix,
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			obs.MetricsSink = client
			obs.closers = append(obs.closers, client.Close)
		}
	}

	obs.Notifier = buildUserNotifier(cfg, obs.MetricsSink, obsLogger)
	return obs
}

func buildUserNotifier(cfg *config.AppConfig, metrics statsd.Sink, logger *slog.Logger) *usernotifier.Service {
	var sinks []usernotifier.SinkRegistration

	if hook := cfg.SSO.Webhook; hook.Enabled() {
		client, err := webhook.NewClient(webhook.Config{
			URL:        hook.URL,
			Secret:     hook.Secret,
			Timeout:    hook.Timeout,
			RetryLimit: hook.RetryLimit,
		})
		if err != nil {
			logger.Error("failed to initialise user webhook", "error", err)
		} else {
			sinks = append(sinks, usernotifier.SinkRegistration{
				Name:    "webhook",
				Sink:    client,
				SignIns: hook.SignIns,
			})
		}
	}

	notifications := cfg.Observability.Notifications
	if notifications.Enabled && notifications.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL:    notifications.Slack.WebhookURL,
			Channel:       notifications.Slack.Channel,
			Username:      notifications.Slack.Username,
			Timeout:       notifications.Timeout,
			RetryLimit:    notifications.RetryLimit,
			UserURLPrefix: notifications.Slack.UserURLPrefix,
		})
		if err != nil {
			logger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, usernotifier.SinkRegistration{
				Name:    "slack",
				Sink:    client,
				SignIns: notifications.Slack.SignIns,
			})
		}
	}

	return usernotifier.NewService(usernotifier.Options{
		Logger:  logger.With("component", "user_notifier"),
		Metrics: metrics,
		Sinks:   sinks,
	})
}

func buildReadiness(db *sql.DB, redisClient redis.UniversalClient, logger *slog.Logger) *httpx.ReadinessHandlers {
	checks := make(map[string]httpx.ReadinessCheck)
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return &httpx.ReadinessHandlers{Checks: checks, Logger: logger}
}
