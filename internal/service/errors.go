package service

import "errors"

// Error taxonomy surfaced to the API layer. Anything not wrapping one of
// these is a storage failure and maps to a 500.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrInvalidAmount = errors.New("invalid amount")
)
