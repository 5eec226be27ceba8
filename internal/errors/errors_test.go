package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err:  &AppError{Code: ErrCodeProtocol, Message: "invalid state"},
			want: "invalid state",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeProvider,
				Message: "token exchange failed",
				Cause:   errors.New("401 Unauthorized"),
			},
			want: "token exchange failed: 401 Unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeProvisioning, "create user")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrCodeProvisioning, GetCode(fmt.Errorf("outer: %w", err)))
}

func TestConstructors(t *testing.T) {
	assert.True(t, IsConfiguration(Configuration("AZUREAD_TENANT_ID is required")))
	assert.Equal(t, ErrCodeProtocol, Protocol("code not found").Code)
	assert.Equal(t, ErrCodeClaim, Claim("email not set").Code)
	assert.Equal(t, ErrCodePolicy, Policy("not allowed").Code)
	assert.Equal(t, "user group grp not found", Claim("user group %s not found", "grp").Message)
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "x"))
	assert.Nil(t, Wrapf(nil, ErrCodeInternal, "x %d", 1))
}

func TestEnsureCode(t *testing.T) {
	assert.NoError(t, EnsureCode(nil, ErrCodeProvider))

	coded := Claim("email not set")
	assert.Same(t, coded, EnsureCode(coded, ErrCodeProvider))

	plain := errors.New("dial tcp: timeout")
	got := EnsureCode(plain, ErrCodeProvider)
	assert.Equal(t, ErrCodeProvider, GetCode(got))
	assert.Equal(t, "dial tcp: timeout", got.Error())
	assert.ErrorIs(t, got, plain)
}

func TestGetField(t *testing.T) {
	assert.Equal(t, "email", GetField(ValidationField("email", "required")))
	assert.Empty(t, GetField(errors.New("plain")))
}

func TestMapDBError(t *testing.T) {
	assert.NoError(t, MapDBError(nil))
	assert.True(t, IsNotFound(MapDBError(pgx.ErrNoRows)))
	assert.True(t, IsTimeout(MapDBError(context.DeadlineExceeded)))
	assert.Equal(t, ErrCodeCanceled, GetCode(MapDBError(context.Canceled)))

	unique := &pgconn.PgError{
		Code:   pgerrcode.UniqueViolation,
		Detail: "Key (email)=(a@example.com) already exists.",
	}
	mapped := MapDBError(unique)
	assert.True(t, IsConflict(mapped))
	assert.Equal(t, "email", GetField(mapped))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", unique)))

	notNull := &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "email"}
	assert.True(t, IsValidation(MapDBError(notNull)))

	other := errors.New("boom")
	assert.Equal(t, other, MapDBError(other))
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "invalid state", UserMessage(fmt.Errorf("callback: %w", Protocol("invalid state"))))
	assert.Equal(t, "boom", UserMessage(errors.New("boom")))

	cause := errors.New("connection refused")
	err := Wrapf(cause, ErrCodeProvider, "userinfo request failed: %v", cause)
	assert.Equal(t, "userinfo request failed: connection refused", err.Error())
	assert.Equal(t, "userinfo request failed: connection refused", UserMessage(err))
}
