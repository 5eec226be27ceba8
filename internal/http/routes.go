// Package httpx exposes the sign-in endpoints over net/http.
package httpx

import (
	"log/slog"
	"net/http"
)

// RouterServices holds what the HTTP router needs.
type RouterServices struct {
	SSO    SSOServiceInterface
	Cookie SessionCookieConfig
	// Readiness is optional; without it /readyz always answers ok.
	Readiness *ReadinessHandlers
	Logger    *slog.Logger
}

// NewRouter creates and configures the HTTP router with its middleware chain.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	readiness := services.Readiness
	if readiness == nil {
		readiness = &ReadinessHandlers{Logger: logger}
	}
	mux.HandleFunc("GET /readyz", readiness.Ready)

	if services.SSO != nil {
		registerSSORoutes(mux, &SSOHandlers{
			Svc:    services.SSO,
			Cookie: services.Cookie,
			Logger: logger,
		})
	}

	var handler http.Handler = mux
	handler = NoStore("/connect/")(handler)
	handler = Logging(logger)(handler)
	return Recover(logger)(handler)
}

func registerSSORoutes(mux *http.ServeMux, h *SSOHandlers) {
	mux.HandleFunc("GET /connect/providers", h.Providers)
	mux.HandleFunc("GET /connect/{provider}", h.Connect)
	mux.HandleFunc("GET /connect/{provider}/callback", h.Callback)
}
