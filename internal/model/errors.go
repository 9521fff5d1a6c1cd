package model

import "errors"

// Domain-specific errors shared across packages.
var (
	ErrInvalidPayload = errors.New("invalid webhook payload")
)
