package creeper

import (
	"errors"
	"fmt"
)

// Configuration errors. They are fatal at setup: a controller is never built
// from a configuration that fails validation.
var (
	// ErrEmptyGroup indicates a leg group without members.
	ErrEmptyGroup = errors.New("creeper: empty leg group")

	// ErrNoGroups indicates a controller configured without any leg group.
	ErrNoGroups = errors.New("creeper: no leg groups configured")

	// ErrMissingLeg indicates a nil leg reference.
	ErrMissingLeg = errors.New("creeper: missing leg reference")

	// ErrMissingPose indicates a body/ghost/end point/mixer index not present in the arena.
	ErrMissingPose = errors.New("creeper: missing pose reference")

	// ErrParameterBounds indicates a configuration value outside its valid range.
	ErrParameterBounds = errors.New("creeper: parameter out of valid bounds")
)

// ConfigError names the field that failed validation.
type ConfigError struct {
	Field   string
	Wrapped error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s", e.Wrapped, e.Field)
}

func (e *ConfigError) Unwrap() error {
	return e.Wrapped
}

func configErr(field string, err error) error {
	return &ConfigError{Field: field, Wrapped: err}
}
