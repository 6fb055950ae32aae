package cell

import "errors"

var (
	// ErrTypeMismatch is returned when a value that must be a function is nil,
	// or when dispatch receives something that is not an action record.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidAction is returned when an action record has no "type" entry.
	// Present values are always accepted, including nil, false, "" and NaN.
	ErrInvalidAction = errors.New("invalid action")
)
