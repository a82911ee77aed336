package scenario

import "errors"

var (
	// ErrUnknownPath indicates a path name that is not registered.
	ErrUnknownPath = errors.New("scenario: unknown path")

	// ErrInvalidConfig indicates scenario parameters out of range.
	ErrInvalidConfig = errors.New("scenario: invalid configuration")
)
