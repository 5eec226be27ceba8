package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/target/mmk-sso/internal/data/pgxutil"
	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	apperrors "github.com/target/mmk-sso/internal/errors"
	"github.com/target/mmk-sso/internal/ports"
	"golang.org/x/sync/singleflight"
)

// UserRepo is the PostgreSQL user directory for SSO admins.
type UserRepo struct {
	DB    *sql.DB
	Clock TimeProvider

	provisioning singleflight.Group
}

var _ ports.UserDirectory = (*UserRepo)(nil)

// NewUserRepo creates a new user repository.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, Clock: &RealTimeProvider{}}
}

const userColumns = `id, email, first_name, last_name, username, preferred_locale, is_active, created_at`

// querier is satisfied by both *pgx.Conn and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// FindByEmail returns the user with exactly this email, or nil when none exists.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domainauth.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrEmailRequired
	}

	var user *domainauth.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var findErr error
		user, findErr = findUserByEmail(ctx, conn, email)
		return findErr
	})
	if err != nil {
		return nil, fmt.Errorf("find user: %w", apperrors.MapDBError(err))
	}
	return user, nil
}

// provisionResult is what one singleflight execution of provision produced.
type provisionResult struct {
	user    *domainauth.User
	created bool
}

// Provision creates the user described by in together with its roles. When
// the email is already taken (including by a concurrent first sign-in) the
// existing user is returned with created=false instead of a duplicate.
// Only the caller whose call ran the insert can see created=true.
func (r *UserRepo) Provision(ctx context.Context, in domainauth.NewUser) (*domainauth.User, bool, error) {
	if strings.TrimSpace(in.Email) == "" {
		return nil, false, ErrEmailRequired
	}

	ran := false
	v, err, _ := r.provisioning.Do(in.Email, func() (any, error) {
		ran = true
		return r.provision(ctx, in)
	})
	if err != nil {
		return nil, false, err
	}

	// Callers sharing a singleflight result each get their own copy.
	res, ok := v.(provisionResult)
	if !ok || res.user == nil {
		return nil, false, errors.New("provision user: no user returned")
	}
	user := *res.user
	user.Roles = slices.Clone(res.user.Roles)
	return &user, res.created && ran, nil
}

func (r *UserRepo) provision(ctx context.Context, in domainauth.NewUser) (provisionResult, error) {
	clock := r.Clock
	if clock == nil {
		clock = &RealTimeProvider{}
	}

	var (
		user    *domainauth.User
		created bool
	)
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			INSERT INTO sso_users (email, first_name, last_name, preferred_locale, is_active, created_at)
			VALUES ($1, $2, $3, $4, TRUE, $5)
			ON CONFLICT (email) DO NOTHING
			RETURNING `+userColumns,
			in.Email, in.FirstName, in.LastName, in.Locale, clock.Now().UTC())
		if err != nil {
			return err
		}
		inserted, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.User])
		if errors.Is(err, pgx.ErrNoRows) {
			// Another process inserted the email first.
			user, err = findUserByEmail(ctx, tx, in.Email)
			if err == nil && user == nil {
				err = errors.New("user vanished after email conflict")
			}
			return err
		}
		if err != nil {
			return err
		}

		for i, role := range in.Roles {
			if _, err := tx.Exec(ctx,
				`INSERT INTO sso_user_roles (user_id, role_id, position) VALUES ($1, $2, $3)
				 ON CONFLICT (user_id, role_id) DO NOTHING`,
				inserted.ID, role.ID, i); err != nil {
				return fmt.Errorf("assign role %s: %w", role.ID, err)
			}
		}
		inserted.Roles = slices.Clone(in.Roles)
		if inserted.Roles == nil {
			inserted.Roles = []domainauth.RoleRef{}
		}
		user = &inserted
		created = true
		return nil
	}})
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			existing, findErr := r.FindByEmail(ctx, in.Email)
			return provisionResult{user: existing}, findErr
		}
		return provisionResult{}, fmt.Errorf("provision user: %w", apperrors.MapDBError(err))
	}
	return provisionResult{user: user, created: created}, nil
}

func findUserByEmail(ctx context.Context, q querier, email string) (*domainauth.User, error) {
	rows, err := q.Query(ctx, `SELECT `+userColumns+` FROM sso_users WHERE email = $1`, email)
	if err != nil {
		return nil, err
	}
	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.User])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	user.Roles, err = loadRoles(ctx, q, user.ID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func loadRoles(ctx context.Context, q querier, userID string) ([]domainauth.RoleRef, error) {
	rows, err := q.Query(ctx,
		`SELECT role_id FROM sso_user_roles WHERE user_id = $1 ORDER BY position, role_id`, userID)
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	roles := make([]domainauth.RoleRef, 0, len(ids))
	for _, id := range ids {
		roles = append(roles, domainauth.RoleRef{ID: id})
	}
	return roles, nil
}
