package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	ErrEmailRequired   = errors.New("email is required")
	ErrPatternRequired = errors.New("whitelist pattern is required")
)
