package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrClassificationUnavailable means the stress classifier could not be reached
	// or answered with something other than a label/score pair.
	ErrClassificationUnavailable = errors.New("classification unavailable")
	// ErrPersistence wraps any failed store write.
	ErrPersistence = errors.New("persistence error")
)
