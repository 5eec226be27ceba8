package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/target/mmk-sso/config"
	"github.com/target/mmk-sso/internal/adapters/authroles"
	"github.com/target/mmk-sso/internal/adapters/memory"
	"github.com/target/mmk-sso/internal/adapters/oidc"
	redisadapter "github.com/target/mmk-sso/internal/adapters/redis"
	"github.com/target/mmk-sso/internal/adapters/whitelist"
	"github.com/target/mmk-sso/internal/data"
	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	"github.com/target/mmk-sso/internal/ports"
	"github.com/target/mmk-sso/internal/service"
)

// AuthConfig contains configuration for the sign-in collaborators.
type AuthConfig struct {
	SSO         config.SSOConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

func (c AuthConfig) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// BuildProviderRegistry registers every provider whose configuration
// validates. The others are marked unavailable so requests for them
// surface a configuration error.
func BuildProviderRegistry(cfg AuthConfig) *service.ProviderRegistry {
	registry := service.NewProviderRegistry()
	httpClient := &http.Client{Timeout: cfg.SSO.HTTPTimeout}

	register := func(name domainauth.ProviderName, validate func() error, build func() (ports.ProviderAdapter, error)) {
		if err := validate(); err != nil {
			cfg.logger().Warn("sso provider disabled", "provider", name, "error", err)
			registry.MarkUnavailable(name, err)
			return
		}
		adapter, err := build()
		if err != nil {
			cfg.logger().Error("sso provider misconfigured", "provider", name, "error", err)
			registry.MarkUnavailable(name, fmt.Errorf("%s: %w", name, err))
			return
		}
		registry.Register(adapter)
	}

	az := cfg.SSO.AzureAD
	register(domainauth.ProviderAzureAD, az.Validate, func() (ports.ProviderAdapter, error) {
		return oidc.NewAzureAD(oidc.AzureADConfig{
			ClientID:     az.ClientID,
			ClientSecret: az.ClientSecret,
			TenantID:     az.TenantID,
			RedirectURL:  az.RedirectURI,
			Scope:        az.Scope,
			AuthorityURL: az.AuthorityURL,
			UserInfoURL:  az.UserInfoURL,
			Claims:       claimPaths(az.Claims),
			HTTPClient:   httpClient,
		})
	})

	cg := cfg.SSO.Cognito
	register(domainauth.ProviderCognito, cg.Validate, func() (ports.ProviderAdapter, error) {
		return oidc.NewCognito(oidc.CognitoConfig{
			ClientID:     cg.ClientID,
			ClientSecret: cg.ClientSecret,
			Domain:       cg.Domain,
			Region:       cg.Region,
			RedirectURL:  cg.RedirectURI,
			UserGroup:    cg.UserGroup,
			BaseURL:      cg.BaseURL,
			Claims:       claimPaths(cg.Claims),
			HTTPClient:   httpClient,
		})
	})

	return registry
}

func claimPaths(c config.ClaimMappingConfig) oidc.ClaimPaths {
	return oidc.ClaimPaths{
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
		GivenName:     c.GivenName,
		FamilyName:    c.FamilyName,
		Username:      c.Username,
		Groups:        c.Groups,
	}
}

// BuildAttemptStore selects the attempt store named by configuration.
//
//nolint:ireturn // callers only depend on the port.
func BuildAttemptStore(cfg AuthConfig) (ports.AttemptStore, error) {
	switch cfg.SSO.AttemptStore {
	case config.AttemptStoreMemory:
		cfg.logger().Warn("sso attempts kept in memory; callbacks must reach the same replica")
		return memory.NewAttemptStore(cfg.SSO.AttemptTTL), nil
	case config.AttemptStoreRedis, "":
		if cfg.RedisClient == nil {
			return nil, errors.New("redis attempt store selected but redis client not configured")
		}
		return redisadapter.NewAttemptStore(cfg.RedisClient, redisadapter.AttemptStoreOptions{
			TTL: cfg.SSO.AttemptTTL,
		}), nil
	default:
		return nil, fmt.Errorf("unknown attempt store %q", cfg.SSO.AttemptStore)
	}
}

// BuildUserDirectory selects the user directory named by configuration.
//
//nolint:ireturn // callers only depend on the port.
func BuildUserDirectory(cfg AuthConfig) (ports.UserDirectory, error) {
	switch cfg.SSO.UserDirectory {
	case config.UserDirectoryMemory:
		cfg.logger().Warn("sso users kept in memory; they are lost on restart")
		return memory.NewUserDirectory(), nil
	case config.UserDirectoryPostgres, "":
		if cfg.DB == nil {
			return nil, errors.New("postgres user directory selected but database not configured")
		}
		return data.NewUserRepo(cfg.DB), nil
	default:
		return nil, fmt.Errorf("unknown user directory %q", cfg.SSO.UserDirectory)
	}
}

// BuildWhitelist combines configured entries with the sso_whitelist table when enabled.
func BuildWhitelist(cfg AuthConfig) (*whitelist.Whitelist, error) {
	wl := cfg.SSO.Whitelist
	opts := whitelist.Options{
		Enabled: wl.Enabled,
		Entries: wl.Emails,
		Logger:  cfg.logger(),
	}
	if wl.UseDatabase {
		if cfg.DB == nil {
			return nil, errors.New("database whitelist selected but database not configured")
		}
		opts.Repo = &data.WhitelistRepo{DB: cfg.DB}
	}
	if wl.Enabled && len(wl.Emails) == 0 && !wl.UseDatabase {
		cfg.logger().Warn("sso whitelist enabled without entries; every sign-in will be rejected")
	}
	return whitelist.New(opts), nil
}

// BuildRoleMapper hands each provider the role ids from its configuration.
func BuildRoleMapper(cfg config.SSOConfig) authroles.StaticRoleMapper {
	return authroles.StaticRoleMapper{
		Roles: map[domainauth.ProviderName][]string{
			domainauth.ProviderAzureAD: cfg.AzureAD.Roles,
			domainauth.ProviderCognito: cfg.Cognito.Roles,
		},
	}
}
