package grid

import "errors"

// Domain errors for grid operations.
var (
	// ErrInvalidShape indicates a rank or axis length that an operation cannot work with.
	ErrInvalidShape = errors.New("grid: invalid shape")

	// ErrShapeMismatch indicates two grids (or a grid and a slice) whose shapes differ.
	ErrShapeMismatch = errors.New("grid: shape mismatch")

	// ErrInvalidState indicates a grid holding NaN or Inf values.
	ErrInvalidState = errors.New("grid: invalid state (NaN or Inf detected)")
)
