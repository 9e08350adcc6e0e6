package service

import "errors"

// ErrInvalidInput marks caller-correctable request problems. Wrapped errors
// carry the human-readable reason.
var ErrInvalidInput = errors.New("invalid input")
