package internal

import "github.com/cockroachdb/errors"

// ErrInvalidFilename is returned when a target filename fails the length,
// character or trailing-period checks.
var ErrInvalidFilename = errors.New("invalid filename")

// ErrTypeMismatch is returned when the shape of the record set does not match
// the caller's Values flag.
var ErrTypeMismatch = errors.New("record set shape mismatch")

// ErrTooLarge is returned when a primary-key lookup would exceed the backing
// store's bind parameter capacity.
var ErrTooLarge = errors.New("record set too large to re-resolve")
