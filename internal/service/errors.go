package service

import "errors"

// Error kinds returned by the service layer. Handlers translate these into
// HTTP statuses with errors.Is; repositories wrap storage failures into
// ErrStorage so drivers never leak past the service boundary.
var (
	ErrValidation         = errors.New("validation failed")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrStorage            = errors.New("storage failure")
)
