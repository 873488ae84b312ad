// Package stepper advances a [grid.Grid] in time with explicit integrators.
//
// A [Stepper] owns the current snapshot and replaces it after every completed
// step. The right-hand side is a caller-supplied [Func] returning dX/dt for a
// given time and state; it may call [gradient.Compute] itself when the
// equation needs spatial derivatives:
//
//	s := stepper.New(psi0)
//	err := s.SolveRK4(f, 100, 0.01, 0)
//	psi := s.Data()
//
// Every derivative evaluation receives its own grid, never the live snapshot,
// and a failing evaluation leaves the snapshot exactly as it was before the
// step began.
//
// # Thread Safety
//
// Stepper instances are NOT thread-safe. The data-parallel kernels inside a
// step are internal and finish before the step returns.
package stepper
