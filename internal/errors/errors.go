package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeConfiguration indicates missing or invalid provider settings.
	// It is the only kind allowed to surface as a generic server error.
	ErrCodeConfiguration ErrorCode = "configuration"
	// ErrCodeProtocol indicates a malformed callback (missing code/state, state mismatch).
	ErrCodeProtocol ErrorCode = "protocol"
	// ErrCodeProvider indicates a network failure, timeout or non-2xx answer from the IdP.
	ErrCodeProvider ErrorCode = "provider"
	// ErrCodeClaim indicates identity claims that fail validation (missing email, unverified email, group).
	ErrCodeClaim ErrorCode = "claim"
	// ErrCodePolicy indicates a whitelist rejection.
	ErrCodePolicy ErrorCode = "policy"
	// ErrCodeProvisioning indicates a user directory or token issuer failure.
	ErrCodeProvisioning ErrorCode = "provisioning"

	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates a conflict with existing data (e.g., unique constraint violation).
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	switch {
	case e.Cause != nil && e.Message != "" && !strings.HasSuffix(e.Message, e.Cause.Error()):
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	case e.Cause != nil && e.Message == "":
		return e.Cause.Error()
	default:
		return e.Message
	}
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

func newf(code ErrorCode, format string, args ...any) *AppError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &AppError{Code: code, Message: msg}
}

// Configuration creates a configuration error.
func Configuration(format string, args ...any) *AppError {
	return newf(ErrCodeConfiguration, format, args...)
}

// Protocol creates a protocol error.
func Protocol(format string, args ...any) *AppError {
	return newf(ErrCodeProtocol, format, args...)
}

// Claim creates a claim validation error.
func Claim(format string, args ...any) *AppError {
	return newf(ErrCodeClaim, format, args...)
}

// Policy creates a policy (whitelist) error.
func Policy(format string, args ...any) *AppError {
	return newf(ErrCodePolicy, format, args...)
}

// Provisioning creates a user directory / credential error.
func Provisioning(format string, args ...any) *AppError {
	return newf(ErrCodeProvisioning, format, args...)
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: message,
	}
}

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: message,
	}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
		Field:   field,
	}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// EnsureCode returns err unchanged when it already carries an AppError code,
// otherwise wraps it under code keeping the underlying message.
func EnsureCode(err error, code ErrorCode) error {
	if err == nil {
		return nil
	}
	if GetCode(err) != "" {
		return err
	}
	return &AppError{Code: code, Cause: err}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsConfiguration checks if an error is a Configuration error.
func IsConfiguration(err error) bool {
	return isCode(err, ErrCodeConfiguration)
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool {
	return isCode(err, ErrCodeConflict)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsTimeout checks if an error is a Timeout error.
func IsTimeout(err error) bool {
	return isCode(err, ErrCodeTimeout)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// UserMessage returns the text shown to an end user for err: the AppError
// message when one is set, otherwise the error string.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}
