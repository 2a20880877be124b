package errors

import "errors"

// ErrMissing is the root cause of errors raised when an entity
// which should exist is not found.
var ErrMissing = errors.New("missing")

// ErrTooMuch is the root cause of errors raised when a query
// hits more entities than expected.
var ErrTooMuch = errors.New("too much")
