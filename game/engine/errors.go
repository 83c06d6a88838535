package engine

import "errors"

var (
	ErrInvalidSize      = errors.New("grid size must be at least 2")
	ErrOutOfBounds      = errors.New("cell index out of bounds")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidGrid      = errors.New("invalid grid")
)
