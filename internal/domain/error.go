package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnauthorized       = errors.New("chat is not authorized")
	ErrResolutionFailed   = errors.New("link resolution failed")
	ErrVariantUnavailable = errors.New("requested variant not available")
)
