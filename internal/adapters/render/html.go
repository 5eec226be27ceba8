// Package render produces the terminal HTML pages of the sign-in callback.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	"github.com/target/mmk-sso/internal/ports"
)

//go:embed templates/*.html
var templateFS embed.FS

// GenericErrorMessage replaces an empty failure message.
const GenericErrorMessage = "Sign-in could not be completed."

// Options configures the HTML renderer.
type Options struct {
	// AdminURL is where the success page navigates after storing the credential.
	AdminURL string
	Logger   *slog.Logger
}

// HTMLRenderer renders the success and error pages from embedded templates.
type HTMLRenderer struct {
	t        *template.Template
	adminURL string
	logger   *slog.Logger
}

var _ ports.Renderer = (*HTMLRenderer)(nil)

// NewHTMLRenderer parses the embedded templates.
func NewHTMLRenderer(opts Options) (*HTMLRenderer, error) {
	adminURL := strings.TrimSpace(opts.AdminURL)
	if adminURL == "" {
		return nil, errors.New("admin URL is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &HTMLRenderer{t: t, adminURL: adminURL, logger: logger}, nil
}

// userInfo is the user document stored alongside the credential for the admin SPA.
type userInfo struct {
	ID               string   `json:"id"`
	Email            string   `json:"email"`
	FirstName        string   `json:"firstname"`
	LastName         string   `json:"lastname"`
	Username         string   `json:"username,omitempty"`
	PreferedLanguage string   `json:"preferedLanguage,omitempty"`
	Roles            []string `json:"roles"`
	IsActive         bool     `json:"isActive"`
}

type successData struct {
	Nonce     string
	Token     string
	ExpiresAt string
	User      userInfo
	AdminURL  string
}

type errorData struct {
	Message  string
	AdminURL string
}

// Success renders the page that stores cred for the admin console and redirects to it.
// The inline script carries nonce so it runs under script-src 'nonce-...'.
func (r *HTMLRenderer) Success(cred domainauth.Credential, user domainauth.User, nonce string) ([]byte, error) {
	if nonce == "" {
		return nil, errors.New("nonce is required")
	}
	if cred.Token == "" {
		return nil, errors.New("credential token is required")
	}

	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, role.ID)
	}
	expires := ""
	if !cred.ExpiresAt.IsZero() {
		expires = cred.ExpiresAt.UTC().Format(time.RFC3339)
	}

	return r.execute("success", successData{
		Nonce:     nonce,
		Token:     cred.Token,
		ExpiresAt: expires,
		User: userInfo{
			ID:               user.ID,
			Email:            user.Email,
			FirstName:        user.FirstName,
			LastName:         user.LastName,
			Username:         user.Username,
			PreferedLanguage: user.PreferredLocale,
			Roles:            roles,
			IsActive:         user.IsActive,
		},
		AdminURL: r.adminURL,
	})
}

// Error renders the human-readable failure page. message is escaped.
func (r *HTMLRenderer) Error(message string) ([]byte, error) {
	if strings.TrimSpace(message) == "" {
		message = GenericErrorMessage
	}
	return r.execute("error", errorData{Message: message, AdminURL: r.adminURL})
}

func (r *HTMLRenderer) execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("template execution failed", "template", name, "error", err)
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
