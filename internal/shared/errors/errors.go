package errors

import (
	"errors"
	"fmt"
)

// Target validation errors
var (
	ErrEmptyTarget       = errors.New("target URL cannot be empty")
	ErrInvalidTarget     = errors.New("invalid target URL")
	ErrUnsupportedScheme = errors.New("only HTTP/HTTPS URLs are allowed")
	ErrMissingHost       = errors.New("target URL has no host")
	ErrLoopbackTarget    = errors.New("localhost scanning is not allowed")
)

// Request errors
var (
	ErrInvalidRequest    = errors.New("invalid request body")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// TargetError records the rejected target alongside the sentinel cause.
type TargetError struct {
	Target string
	Err    error
}

func (e *TargetError) Error() string {
	if e.Target == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %q", e.Err.Error(), e.Target)
}

func (e *TargetError) Unwrap() error {
	return e.Err
}
