package rig

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingBone indicates a bone index that is not in the arena.
	ErrMissingBone = errors.New("rig: missing bone")

	// ErrNoSolver indicates a helper created without a solver.
	ErrNoSolver = errors.New("rig: no solver")
)

func boneErr(list string, i int, err error) error {
	return fmt.Errorf("%s[%d]: %w", list, i, err)
}
