package liquid

import "errors"

var (
	// ErrUnknownShape indicates a force field shape name that is not recognised.
	ErrUnknownShape = errors.New("liquid: unknown force field shape")

	// ErrInvalidConfig indicates liquid or force field parameters out of range.
	ErrInvalidConfig = errors.New("liquid: invalid configuration")

	// ErrUnknownIntegrator indicates an integrator name that is not registered.
	ErrUnknownIntegrator = errors.New("liquid: unknown integrator")
)
