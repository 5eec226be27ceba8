// Package whitelist restricts which authenticated email addresses may sign in.
package whitelist

import (
	"context"
	"log/slog"

	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	apperrors "github.com/target/mmk-sso/internal/errors"
	"github.com/target/mmk-sso/internal/ports"
)

// ErrNotWhitelisted is the message shown when an address matches no entry.
const ErrNotWhitelisted = "Not present in whitelist"

// Options configures Whitelist.
type Options struct {
	// Enabled turns the gate on; a disabled whitelist admits everyone.
	Enabled bool
	// Entries are static entries from configuration, in short form.
	Entries []string
	// Repo, when set, contributes operator-managed entries.
	Repo   ports.WhitelistRepository
	Logger *slog.Logger
}

// Whitelist implements ports.Whitelist over static and stored entries.
type Whitelist struct {
	enabled bool
	static  []domainauth.WhitelistEntry
	repo    ports.WhitelistRepository
	logger  *slog.Logger
}

var _ ports.Whitelist = (*Whitelist)(nil)

// New creates a Whitelist.
func New(opts Options) *Whitelist {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	static := make([]domainauth.WhitelistEntry, 0, len(opts.Entries))
	for _, raw := range opts.Entries {
		e := domainauth.InferWhitelistEntry(raw)
		if e.Pattern == "" {
			continue
		}
		static = append(static, e)
	}
	return &Whitelist{
		enabled: opts.Enabled,
		static:  static,
		repo:    opts.Repo,
		logger:  logger.With("component", "whitelist"),
	}
}

// Check returns a policy error unless email matches an entry.
func (w *Whitelist) Check(ctx context.Context, email string) error {
	if !w.enabled {
		return nil
	}
	if MatchAny(email, w.static) {
		return nil
	}
	if w.repo != nil {
		stored, err := w.repo.List(ctx)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodePolicy, "whitelist lookup failed")
		}
		if MatchAny(email, stored) {
			return nil
		}
	}
	w.logger.InfoContext(ctx, "email rejected by whitelist", "email", email)
	return apperrors.Policy(ErrNotWhitelisted)
}
