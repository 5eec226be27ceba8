package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/target/mmk-sso/internal/bootstrap"
	"github.com/target/mmk-sso/internal/data"
	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	apperrors "github.com/target/mmk-sso/internal/errors"
	"github.com/target/mmk-sso/internal/ports"
)

// parseWhitelistAddArgs accepts "[--type=<pattern type>] <pattern>". Without
// --type the type is inferred from the short form used in configuration.
func parseWhitelistAddArgs(args []string) (domainauth.WhitelistEntry, error) {
	fs := flag.NewFlagSet("whitelist-add", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	patternType := fs.String("type", "", "Pattern type: email, domain, wildcard or etld_plus_one")
	if err := fs.Parse(args); err != nil {
		return domainauth.WhitelistEntry{}, err
	}
	if fs.NArg() != 1 {
		return domainauth.WhitelistEntry{}, errors.New("expected exactly one pattern")
	}

	raw := fs.Arg(0)
	if *patternType == "" {
		entry := domainauth.InferWhitelistEntry(raw)
		if entry.Pattern == "" {
			return domainauth.WhitelistEntry{}, errors.New("pattern is required")
		}
		return entry, nil
	}

	t := domainauth.WhitelistPatternType(strings.ToLower(strings.TrimSpace(*patternType)))
	if !t.Valid() {
		return domainauth.WhitelistEntry{}, fmt.Errorf("unknown pattern type %q", *patternType)
	}
	return domainauth.WhitelistEntry{
		Pattern:     strings.ToLower(strings.TrimSpace(raw)),
		PatternType: t,
	}, nil
}

func runWhitelistAdd(cmdCtx *commandContext, args []string) error {
	entry, err := parseWhitelistAddArgs(args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	return withDB(ctx, cmdCtx, func(db *sql.DB) error {
		created, addErr := (&data.WhitelistRepo{DB: db}).Add(ctx, entry)
		if apperrors.IsConflict(addErr) {
			return writef(cmdCtx.Out, "%s is already whitelisted\n", entry.Pattern)
		}
		if addErr != nil {
			return fmt.Errorf("add whitelist entry: %w", addErr)
		}
		return writef(cmdCtx.Out, "added %s (%s)\n", created.Pattern, created.PatternType)
	})
}

func runWhitelistRemove(cmdCtx *commandContext, args []string) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return errors.New("usage: whitelist-remove <pattern>")
	}
	pattern := domainauth.InferWhitelistEntry(args[0]).Pattern

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	return withDB(ctx, cmdCtx, func(db *sql.DB) error {
		removed, err := (&data.WhitelistRepo{DB: db}).Remove(ctx, pattern)
		if err != nil {
			return fmt.Errorf("remove whitelist entry: %w", err)
		}
		if !removed {
			return writef(cmdCtx.Out, "%s was not whitelisted\n", pattern)
		}
		return writef(cmdCtx.Out, "removed %s\n", pattern)
	})
}

func runWhitelistList(cmdCtx *commandContext, _ []string) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	return withDB(ctx, cmdCtx, func(db *sql.DB) error {
		entries, err := (&data.WhitelistRepo{DB: db}).List(ctx)
		if err != nil {
			return fmt.Errorf("list whitelist: %w", err)
		}
		return printWhitelist(cmdCtx.Out, entries)
	})
}

func printWhitelist(w io.Writer, entries []domainauth.WhitelistEntry) error {
	if len(entries) == 0 {
		return writef(w, "no whitelist entries\n")
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "PATTERN\tTYPE\tCREATED\n"); err != nil {
		return fmt.Errorf("write whitelist header: %w", err)
	}
	for _, e := range entries {
		if err := writef(tw, "%s\t%s\t%s\n", e.Pattern, e.PatternType, e.CreatedAt.UTC().Format("2006-01-02 15:04")); err != nil {
			return fmt.Errorf("write whitelist row %q: %w", e.Pattern, err)
		}
	}
	return tw.Flush()
}

// runProviders reports provider readiness without starting the server.
func runProviders(cmdCtx *commandContext, _ []string) error {
	registry := bootstrap.BuildProviderRegistry(bootstrap.AuthConfig{
		SSO:    cmdCtx.Config.SSO,
		Logger: cmdCtx.Logger,
	})
	return printProviders(cmdCtx.Out, registry, []domainauth.ProviderName{
		domainauth.ProviderAzureAD,
		domainauth.ProviderCognito,
	})
}

type providerLookup interface {
	Lookup(name domainauth.ProviderName) (ports.ProviderAdapter, error)
}

func printProviders(w io.Writer, registry providerLookup, names []domainauth.ProviderName) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "PROVIDER\tSTATUS\n"); err != nil {
		return err
	}
	for _, name := range names {
		status := "ready"
		if _, err := registry.Lookup(name); err != nil {
			status = err.Error()
		}
		if err := writef(tw, "%s\t%s\n", name, status); err != nil {
			return err
		}
	}
	return tw.Flush()
}
