// Package gradient computes finite-difference gradients of a [grid.Grid].
//
// [Compute] returns the first-order gradient along every axis with the outer
// shell of each component forced to zero, and the full set of second-order
// gradients (every axis of every first-order component):
//
//	first, second, err := gradient.Compute(psi)
//	lap := second.Laplacian()
//
// Spacing is always one grid unit; scaling by the physical spacing belongs to
// the caller. The package holds no state and never modifies its input.
package gradient
