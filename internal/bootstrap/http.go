package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/target/mmk-sso/config"
	httpx "github.com/target/mmk-sso/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// BuildHTTPHandler assembles the router from the service container.
func BuildHTTPHandler(cfg *HTTPServerConfig) http.Handler {
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}
	services := httpx.RouterServices{
		Cookie: httpx.SessionCookieConfig{
			Domain: appCfg.HTTP.CookieDomain,
			Secure: appCfg.HTTP.CookieSecure && !appCfg.IsDev,
			MaxAge: appCfg.SSO.AttemptTTL,
		},
		Logger: cfg.Logger,
	}
	if cfg.Services != nil {
		if cfg.Services.SSO != nil {
			services.SSO = cfg.Services.SSO
		}
		services.Readiness = cfg.Services.Readiness
	}
	return httpx.NewRouter(services)
}

// StartHTTPServer creates and starts the HTTP server. Listen errors are sent on errCh.
func StartHTTPServer(cfg *HTTPServerConfig, errCh chan<- error) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
		cfg.Logger = logger
	}
	httpCfg := config.HTTPConfig{}
	if cfg.Config != nil {
		httpCfg = cfg.Config.HTTP
	}
	addr := httpCfg.Addr
	if addr == "" {
		addr = ":8080"
	}
	readHeaderTimeout := httpCfg.ReadHeaderTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = 10 * time.Second
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           BuildHTTPHandler(cfg),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			if errCh != nil {
				errCh <- err
			}
		}
	}()

	return server
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, timeout time.Duration, logger *slog.Logger) error {
	if server == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	logger.InfoContext(ctx, "shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.InfoContext(ctx, "HTTP server stopped")
	return nil
}

// RunHTTPWithShutdown serves until SIGINT/SIGTERM or a server error, then drains in-flight requests.
func RunHTTPWithShutdown(ctx context.Context, cfg *HTTPServerConfig) error {
	errCh := make(chan error, 1)
	server := StartHTTPServer(cfg, errCh)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var shutdownTimeout time.Duration
	if cfg.Config != nil {
		shutdownTimeout = cfg.Config.HTTP.ShutdownTimeout
	}

	select {
	case <-quit:
		return ShutdownHTTPServer(context.WithoutCancel(ctx), server, shutdownTimeout, cfg.Logger)
	case <-ctx.Done():
		return ShutdownHTTPServer(context.WithoutCancel(ctx), server, shutdownTimeout, cfg.Logger)
	case err := <-errCh:
		return err
	}
}
