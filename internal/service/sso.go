package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	apperrors "github.com/target/mmk-sso/internal/errors"
	"github.com/target/mmk-sso/internal/observability/metrics"
	"github.com/target/mmk-sso/internal/observability/statsd"
	"github.com/target/mmk-sso/internal/pkce"
	"github.com/target/mmk-sso/internal/ports"
)

// SSOServiceOptions groups dependencies for SSOService.
type SSOServiceOptions struct {
	Providers *ProviderRegistry
	Attempts  ports.AttemptStore
	Users     ports.UserDirectory
	Issuer    ports.TokenIssuer
	Renderer  ports.Renderer

	// Optional collaborators. A nil Whitelist admits every email, a nil
	// RoleMapper provisions users without roles.
	Whitelist ports.Whitelist
	Roles     ports.RoleMapper
	Webhook   ports.WebhookNotifier
	SignIn    ports.SignInNotifier
	Locales   *LocaleNegotiator

	Metrics statsd.Sink
	Logger  *slog.Logger

	// Now and NewNonce exist for tests.
	Now      func() time.Time
	NewNonce func() string
}

// SSOService runs the two legs of the authorization code + PKCE flow.
type SSOService struct {
	providers *ProviderRegistry
	attempts  ports.AttemptStore
	users     ports.UserDirectory
	issuer    ports.TokenIssuer
	renderer  ports.Renderer
	whitelist ports.Whitelist
	roles     ports.RoleMapper
	webhook   ports.WebhookNotifier
	signIn    ports.SignInNotifier
	locales   *LocaleNegotiator
	metrics   statsd.Sink
	logger    *slog.Logger
	now       func() time.Time
	newNonce  func() string
}

// NewSSOService validates required dependencies and constructs the service.
func NewSSOService(opts SSOServiceOptions) (*SSOService, error) {
	var missing []string
	if opts.Providers == nil {
		missing = append(missing, "providers")
	}
	if opts.Attempts == nil {
		missing = append(missing, "attempt store")
	}
	if opts.Users == nil {
		missing = append(missing, "user directory")
	}
	if opts.Issuer == nil {
		missing = append(missing, "token issuer")
	}
	if opts.Renderer == nil {
		missing = append(missing, "renderer")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("sso service: missing %s", strings.Join(missing, ", "))
	}

	s := &SSOService{
		providers: opts.Providers,
		attempts:  opts.Attempts,
		users:     opts.Users,
		issuer:    opts.Issuer,
		renderer:  opts.Renderer,
		whitelist: opts.Whitelist,
		roles:     opts.Roles,
		webhook:   opts.Webhook,
		signIn:    opts.SignIn,
		locales:   opts.Locales,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		now:       opts.Now,
		newNonce:  opts.NewNonce,
	}
	if s.locales == nil {
		s.locales = NewLocaleNegotiator(nil)
	}
	if s.metrics == nil {
		s.metrics = statsd.Discard
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newNonce == nil {
		s.newNonce = uuid.NewString
	}
	return s, nil
}

// Providers lists the usable provider names.
func (s *SSOService) Providers() []domainauth.ProviderName {
	return s.providers.Names()
}

// BeginResult carries the IdP authorize URL the browser is redirected to.
type BeginResult struct {
	AuthorizeURL string
}

// Begin starts an authorization attempt for the browser session and returns
// the authorize URL. Any previous attempt for the same session and provider is
// replaced. An unknown or misconfigured provider yields a configuration error.
func (s *SSOService) Begin(
	ctx context.Context,
	provider domainauth.ProviderName,
	sessionID string,
) (*BeginResult, error) {
	adapter, err := s.providers.Lookup(provider)
	if err != nil {
		metrics.EmitInitiation(s.metrics, metrics.InitiationMetric{
			Provider: string(provider), Result: metrics.ResultError, Err: err,
		})
		return nil, err
	}
	if sessionID == "" {
		return nil, apperrors.Validation("session id is required")
	}

	material := pkce.New()
	state := pkce.NewState()

	attempt := domainauth.AuthAttempt{
		Provider:     provider,
		CodeVerifier: material.Verifier,
		State:        state,
		CreatedAt:    s.now().UTC(),
	}
	key := ports.AttemptKey{SessionID: sessionID, Provider: provider}
	if err := s.attempts.Save(ctx, key, attempt); err != nil {
		metrics.EmitInitiation(s.metrics, metrics.InitiationMetric{
			Provider: string(provider), Result: metrics.ResultError, Err: err,
		})
		return nil, fmt.Errorf("save authorization attempt: %w", err)
	}

	metrics.EmitInitiation(s.metrics, metrics.InitiationMetric{
		Provider: string(provider), Result: metrics.ResultSuccess,
	})
	return &BeginResult{AuthorizeURL: adapter.AuthorizeURL(material.Challenge, state)}, nil
}

// CallbackInput is what the IdP redirect delivers, plus browser context.
type CallbackInput struct {
	Provider       domainauth.ProviderName
	SessionID      string
	Code           string
	State          string
	AcceptLanguage string
}

// CallbackResult is the terminal page for a callback. It is always served with
// status 200; CSP is set only on success.
type CallbackResult struct {
	HTML []byte
	// CSP is the Content-Security-Policy header value for the page.
	CSP   string
	Nonce string
	// State is StateRendered on success and StateFailed otherwise.
	State CallbackState
	// FailedAt is the last state reached before failing.
	FailedAt CallbackState
	// Err is the failure shown to the user, nil on success.
	Err         error
	User        *domainauth.User
	Provisioned bool
}

// Complete runs the callback state machine. Every failure after provider
// lookup is rendered as the error page; the returned error is reserved for
// configuration errors and pages that could not be rendered at all.
func (s *SSOService) Complete(ctx context.Context, in CallbackInput) (*CallbackResult, error) {
	started := s.now()
	adapter, err := s.providers.Lookup(in.Provider)
	if err != nil {
		return nil, err
	}

	out, reached, err := s.run(ctx, adapter, in)
	if err == nil {
		var page *CallbackResult
		page, err = s.renderSuccess(out)
		if err == nil {
			s.record(in.Provider, StateRendered, started, nil)
			return page, nil
		}
		reached = StateCredentialIssued
	}

	s.logger.WarnContext(ctx, "sso callback failed",
		"provider", in.Provider,
		"state", reached,
		"code", apperrors.GetCode(err),
		"error", err,
	)
	s.record(in.Provider, reached, started, err)

	html, rerr := s.renderer.Error(apperrors.UserMessage(err))
	if rerr != nil {
		return nil, errors.Join(err, fmt.Errorf("render error page: %w", rerr))
	}
	return &CallbackResult{HTML: html, State: StateFailed, FailedAt: reached, Err: err}, nil
}

type callbackOutcome struct {
	provider    domainauth.ProviderName
	user        *domainauth.User
	credential  domainauth.Credential
	provisioned bool
}

// run advances through the states and returns the last state reached.
func (s *SSOService) run(
	ctx context.Context,
	adapter ports.ProviderAdapter,
	in CallbackInput,
) (callbackOutcome, CallbackState, error) {
	out := callbackOutcome{provider: in.Provider}

	if in.Code == "" {
		return out, StateReceived, apperrors.Protocol("code not found")
	}
	if in.State == "" || in.SessionID == "" {
		return out, StateReceived, apperrors.Protocol("invalid state")
	}

	attempt, err := s.takeAttempt(ctx, in)
	if err != nil {
		return out, StateReceived, err
	}

	tokens, err := adapter.TokenExchange(ctx, in.Code, attempt.CodeVerifier)
	if err != nil {
		return out, StateStateVerified, apperrors.EnsureCode(err, apperrors.ErrCodeProvider)
	}

	claims, err := adapter.FetchIdentity(ctx, tokens.AccessToken)
	if err != nil {
		return out, StateCodeExchanged, apperrors.EnsureCode(err, apperrors.ErrCodeProvider)
	}

	if strings.TrimSpace(claims.Email) == "" {
		return out, StateIdentityFetched, apperrors.Claim("email not set")
	}
	if err := adapter.Validate(tokens, claims); err != nil {
		return out, StateIdentityFetched, apperrors.EnsureCode(err, apperrors.ErrCodeClaim)
	}

	user, provisioned, reached, err := s.resolveUser(ctx, in, claims)
	if err != nil {
		return out, reached, err
	}
	out.user = user
	out.provisioned = provisioned

	cred, err := s.issuer.Issue(ctx, *user)
	if err != nil {
		return out, StateUserResolved, apperrors.Wrap(err, apperrors.ErrCodeProvisioning, "could not issue credential")
	}
	out.credential = cred

	if provisioned && s.webhook != nil {
		if werr := s.webhook.OnProvisioned(ctx, in.Provider, *user); werr != nil {
			s.logger.WarnContext(ctx, "provisioning webhook failed",
				"provider", in.Provider,
				"user_id", user.ID,
				"error", werr,
			)
		}
	}
	if s.signIn != nil {
		s.signIn.OnSuccess(ctx, in.Provider, *user)
	}
	return out, StateCredentialIssued, nil
}

// takeAttempt consumes the attempt for this session and provider and checks
// the returned state against it. The attempt is gone afterwards whether or
// not the state matched.
func (s *SSOService) takeAttempt(ctx context.Context, in CallbackInput) (domainauth.AuthAttempt, error) {
	key := ports.AttemptKey{SessionID: in.SessionID, Provider: in.Provider}
	attempt, found, err := s.attempts.Take(ctx, key)
	if err != nil {
		return domainauth.AuthAttempt{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "could not load sign-in attempt")
	}
	if !found || attempt.Provider != in.Provider ||
		subtle.ConstantTimeCompare([]byte(attempt.State), []byte(in.State)) != 1 {
		return domainauth.AuthAttempt{}, apperrors.Protocol("invalid state")
	}
	return attempt, nil
}

func (s *SSOService) resolveUser(
	ctx context.Context,
	in CallbackInput,
	claims domainauth.IdentityClaims,
) (*domainauth.User, bool, CallbackState, error) {
	email := claims.Email

	var whitelistErr error
	if s.whitelist != nil {
		whitelistErr = s.whitelist.Check(ctx, email)
	}

	var (
		existing *domainauth.User
		roles    []domainauth.RoleRef
	)
	if whitelistErr == nil {
		found, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, false, StateWhitelistChecked,
				apperrors.Wrap(err, apperrors.ErrCodeProvisioning, "could not look up user")
		}
		existing = found
		if existing == nil && s.roles != nil {
			roles = s.roles.DefaultRolesFor(in.Provider)
		}
	}

	resolution, err := ResolveIdentity(claims, whitelistErr, existing, roles)
	if err != nil {
		return nil, false, StateClaimsValidated, err
	}
	if resolution.Action == ActionReuseExisting {
		return resolution.Existing, false, StateUserResolved, nil
	}

	newUser := resolution.NewUser
	newUser.Locale = s.locales.Negotiate(in.AcceptLanguage)
	user, created, err := s.users.Provision(ctx, newUser)
	if err != nil {
		return nil, false, StateWhitelistChecked,
			apperrors.Wrap(err, apperrors.ErrCodeProvisioning, "could not create user")
	}
	if user == nil {
		return nil, false, StateWhitelistChecked, apperrors.Provisioning("could not create user")
	}
	// A concurrent first sign-in created the account; reuse it without notifying.
	return user, created, StateUserResolved, nil
}

func (s *SSOService) renderSuccess(out callbackOutcome) (*CallbackResult, error) {
	nonce := s.newNonce()
	html, err := s.renderer.Success(out.credential, *out.user, nonce)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "could not render sign-in page")
	}
	return &CallbackResult{
		HTML:        html,
		CSP:         fmt.Sprintf("script-src 'nonce-%s'", nonce),
		Nonce:       nonce,
		State:       StateRendered,
		User:        out.user,
		Provisioned: out.provisioned,
	}, nil
}

func (s *SSOService) record(provider domainauth.ProviderName, state CallbackState, started time.Time, err error) {
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.EmitCallback(s.metrics, metrics.CallbackMetric{
		Provider: string(provider),
		State:    string(state),
		Result:   result,
		Duration: s.now().Sub(started),
		Err:      err,
	})
}
