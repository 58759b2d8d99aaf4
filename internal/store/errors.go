package store

import "errors"

var (
	ErrNotFound       = errors.New("event not found")
	ErrProtectedField = errors.New("field is protected")
	ErrNegativePrice  = errors.New("price cannot be negative")
	ErrUnknownField   = errors.New("unknown field")
)
