// Package grid provides the n-dimensional field container used by the
// finite-difference engine.
//
// A [Grid] is a fixed-shape, row-major array of real or complex scalars:
//
//   - [Scalar]: element constraint (float64 or complex128)
//   - [Grid]: shape, strides and a flat backing slice
//   - [ParallelFor]: chunked data-parallel loop used by stencil kernels
//
// Every arithmetic helper returns a freshly allocated grid. Nothing in this
// package mutates its receiver except [Grid.Set] and [Grid.Fill].
//
// # Example
//
//	g, _ := grid.New[complex128](64, 64)
//	g.Set(1, 32, 32)
//	h := g.Scale(complex(0.5, 0))
package grid
