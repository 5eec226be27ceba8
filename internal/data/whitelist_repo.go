package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/target/mmk-sso/internal/data/pgxutil"
	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	apperrors "github.com/target/mmk-sso/internal/errors"
	"github.com/target/mmk-sso/internal/ports"
)

// WhitelistRepo stores operator-managed whitelist entries.
type WhitelistRepo struct {
	DB *sql.DB
}

var _ ports.WhitelistRepository = (*WhitelistRepo)(nil)

// NewWhitelistRepo creates a new whitelist repository.
func NewWhitelistRepo(db *sql.DB) *WhitelistRepo {
	return &WhitelistRepo{DB: db}
}

const whitelistColumns = `id, pattern, pattern_type, created_at`

// List returns all entries, oldest first.
func (r *WhitelistRepo) List(ctx context.Context) ([]domainauth.WhitelistEntry, error) {
	var entries []domainauth.WhitelistEntry
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+whitelistColumns+` FROM sso_whitelist ORDER BY created_at ASC, pattern ASC`)
		if err != nil {
			return err
		}
		entries, err = pgx.CollectRows(rows, pgx.RowToStructByName[domainauth.WhitelistEntry])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list whitelist: %w", apperrors.MapDBError(err))
	}
	return entries, nil
}

// Add inserts an entry. The pattern is lowercased; a duplicate pattern is a conflict.
func (r *WhitelistRepo) Add(ctx context.Context, entry domainauth.WhitelistEntry) (*domainauth.WhitelistEntry, error) {
	entry.Pattern = strings.ToLower(strings.TrimSpace(entry.Pattern))
	if entry.Pattern == "" {
		return nil, ErrPatternRequired
	}
	if !entry.PatternType.Valid() {
		return nil, apperrors.ValidationField("pattern_type",
			fmt.Sprintf("unknown pattern type %q", entry.PatternType))
	}

	var created domainauth.WhitelistEntry
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO sso_whitelist (pattern, pattern_type)
			VALUES ($1, $2)
			RETURNING `+whitelistColumns,
			entry.Pattern, string(entry.PatternType))
		if err != nil {
			return err
		}
		created, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.WhitelistEntry])
		return err
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.Conflict(fmt.Sprintf("whitelist entry %q already exists", entry.Pattern))
		}
		return nil, fmt.Errorf("add whitelist entry: %w", apperrors.MapDBError(err))
	}
	return &created, nil
}

// Remove deletes the entry with pattern and reports whether it existed.
func (r *WhitelistRepo) Remove(ctx context.Context, pattern string) (bool, error) {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern == "" {
		return false, ErrPatternRequired
	}

	var removed bool
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `DELETE FROM sso_whitelist WHERE pattern = $1`, pattern)
		if err != nil {
			return err
		}
		removed = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("remove whitelist entry: %w", apperrors.MapDBError(err))
	}
	return removed, nil
}
