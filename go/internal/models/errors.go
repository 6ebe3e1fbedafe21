package models

import "errors"

var (
	// ErrValidation is returned for bad input such as an empty member name or a non-positive duration.
	ErrValidation = errors.New("validation failed")
	// ErrConflict is returned when starting a session while another one is active.
	ErrConflict = errors.New("conflict")
	// ErrNotFound is returned when an identifier does not match any record.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState is returned for operations the current state does not allow.
	ErrInvalidState = errors.New("invalid state")
)
