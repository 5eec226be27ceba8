package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	apperrors "github.com/target/mmk-sso/internal/errors"
	"github.com/target/mmk-sso/internal/service"
)

// DefaultSessionCookieName names the browser session cookie that keys authorization attempts.
const DefaultSessionCookieName = "mmk_sso_session"

// SSOServiceInterface defines the sign-in operations the handlers need.
type SSOServiceInterface interface {
	Begin(ctx context.Context, provider domainauth.ProviderName, sessionID string) (*service.BeginResult, error)
	Complete(ctx context.Context, in service.CallbackInput) (*service.CallbackResult, error)
	Providers() []domainauth.ProviderName
}

// SessionCookieConfig describes the browser session cookie.
type SessionCookieConfig struct {
	Name   string
	Domain string
	// Secure forces the Secure attribute even when the request arrived over plain HTTP.
	Secure bool
	// MaxAge should match the attempt TTL so the cookie outlives the attempt it keys.
	MaxAge time.Duration
}

// SSOHandlers serves the two legs of the sign-in flow.
type SSOHandlers struct {
	Svc    SSOServiceInterface
	Cookie SessionCookieConfig
	Logger *slog.Logger
}

func (h *SSOHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Connect starts sign-in and redirects to the identity provider.
// GET /connect/{provider}.
func (h *SSOHandlers) Connect(w http.ResponseWriter, r *http.Request) {
	provider := domainauth.ParseProviderName(r.PathValue("provider"))
	sessionID := h.ensureSession(w, r)

	result, err := h.Svc.Begin(r.Context(), provider, sessionID)
	if err != nil {
		h.writeServiceError(w, r, provider, err)
		return
	}

	// http.Redirect would write a small HTML body; the redirect carries none.
	w.Header().Set("Location", result.AuthorizeURL)
	w.WriteHeader(http.StatusFound)
}

// Callback completes sign-in. Outcomes are HTML pages with status 200,
// except configuration errors.
// GET /connect/{provider}/callback?code=<code>&state=<state>.
func (h *SSOHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	provider := domainauth.ParseProviderName(r.PathValue("provider"))
	q := r.URL.Query()

	result, err := h.Svc.Complete(r.Context(), service.CallbackInput{
		Provider:       provider,
		SessionID:      h.sessionID(r),
		Code:           q.Get("code"),
		State:          q.Get("state"),
		AcceptLanguage: r.Header.Get("Accept-Language"),
	})
	if err != nil {
		h.writeServiceError(w, r, provider, err)
		return
	}

	hdr := w.Header()
	hdr.Set("Content-Type", "text/html; charset=utf-8")
	if result.CSP != "" {
		hdr.Set("Content-Security-Policy", result.CSP)
	}
	w.WriteHeader(http.StatusOK)
	if _, werr := w.Write(result.HTML); werr != nil {
		h.logger().DebugContext(r.Context(), "write callback page", "error", werr)
	}
}

// Providers lists the configured providers for the login page.
// GET /connect/providers.
func (h *SSOHandlers) Providers(w http.ResponseWriter, _ *http.Request) {
	names := h.Svc.Providers()
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, string(n))
	}
	WriteJSON(w, http.StatusOK, map[string][]string{"providers": out})
}

func (h *SSOHandlers) writeServiceError(
	w http.ResponseWriter,
	r *http.Request,
	provider domainauth.ProviderName,
	err error,
) {
	if apperrors.IsConfiguration(err) {
		h.logger().ErrorContext(r.Context(), "sso provider not configured",
			"provider", provider,
			"error", err,
		)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "configuration_error",
			Err:     errors.New("sign-in provider is not available"),
		})
		return
	}

	h.logger().ErrorContext(r.Context(), "sso request failed",
		"provider", provider,
		"code", apperrors.GetCode(err),
		"error", err,
	)
	WriteError(w, ErrorParams{
		Code:    http.StatusInternalServerError,
		ErrCode: "internal_error",
		Err:     errors.New("sign-in could not be started"),
	})
}

func (h *SSOHandlers) cookieName() string {
	if h.Cookie.Name != "" {
		return h.Cookie.Name
	}
	return DefaultSessionCookieName
}

// sessionID returns the browser session id, or "" when the cookie is absent or malformed.
func (h *SSOHandlers) sessionID(r *http.Request) string {
	c, err := r.Cookie(h.cookieName())
	if err != nil {
		return ""
	}
	if _, perr := uuid.Parse(c.Value); perr != nil {
		return ""
	}
	return c.Value
}

// ensureSession returns the browser session id, minting one when needed, and
// refreshes the cookie so it lives at least as long as the new attempt.
func (h *SSOHandlers) ensureSession(w http.ResponseWriter, r *http.Request) string {
	id := h.sessionID(r)
	if id == "" {
		id = uuid.NewString()
	}

	maxAge := h.Cookie.MaxAge
	if maxAge <= 0 {
		maxAge = 10 * time.Minute
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName(),
		Value:    id,
		Path:     "/",
		Domain:   h.Cookie.Domain,
		HttpOnly: true,
		Secure:   h.Cookie.Secure || requestIsSecure(r),
		// Lax so the cookie is sent on the IdP's top-level redirect back to us.
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	})
	return id
}
