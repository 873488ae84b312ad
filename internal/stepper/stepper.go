package stepper

import (
	"fmt"

	"github.com/san-kum/gridsolve/internal/gradient"
	"github.com/san-kum/gridsolve/internal/grid"
)

const combineChunk = 4096

// Func returns the time derivative of state at time t. The state it receives
// belongs to the call and must be treated as read-only.
type Func[T grid.Scalar] func(t float64, state *grid.Grid[T]) (*grid.Grid[T], error)

// GradFunc is the single-step form that receives precomputed gradients and the
// step size and returns the next state directly.
type GradFunc[T grid.Scalar] func(state *grid.Grid[T], first gradient.First[T], second gradient.Second[T], h float64) (*grid.Grid[T], error)

// Observer is notified after every completed step of a solve loop. data is the
// live snapshot: read it or Clone it, never write to it. A non-nil error ends
// the loop.
type Observer[T grid.Scalar] interface {
	OnStep(step int, t float64, data *grid.Grid[T]) error
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc[T grid.Scalar] func(step int, t float64, data *grid.Grid[T]) error

func (f ObserverFunc[T]) OnStep(step int, t float64, data *grid.Grid[T]) error {
	return f(step, t, data)
}

type options struct {
	checkFinite bool
}

type Option func(*options)

// WithFiniteCheck rejects any step whose result holds NaN or Inf with
// grid.ErrInvalidState, keeping the previous snapshot.
func WithFiniteCheck() Option {
	return func(o *options) { o.checkFinite = true }
}

type Stepper[T grid.Scalar] struct {
	data      *grid.Grid[T]
	opts      options
	observers []Observer[T]
	steps     int
	evals     int
}

// New creates a stepper holding a copy of initial.
func New[T grid.Scalar](initial *grid.Grid[T], opts ...Option) *Stepper[T] {
	s := &Stepper[T]{data: initial.Clone()}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

func (s *Stepper[T]) AddObserver(o Observer[T]) { s.observers = append(s.observers, o) }

// Data returns a copy of the current snapshot.
func (s *Stepper[T]) Data() *grid.Grid[T] { return s.data.Clone() }

func (s *Stepper[T]) Shape() []int { return s.data.Shape() }

// Steps is the number of steps completed since construction.
func (s *Stepper[T]) Steps() int { return s.steps }

// Evaluations is the number of derivative calls made since construction.
func (s *Stepper[T]) Evaluations() int { return s.evals }

func (s *Stepper[T]) eval(f Func[T], t float64, state *grid.Grid[T]) (*grid.Grid[T], error) {
	s.evals++
	d, err := f(t, state)
	if err != nil {
		return nil, err
	}
	if err := s.data.CheckShape(d); err != nil {
		return nil, fmt.Errorf("derivative at t=%g: %w", t, err)
	}
	return d, nil
}

func (s *Stepper[T]) commit(next *grid.Grid[T]) error {
	if s.opts.checkFinite && !next.IsFinite() {
		return grid.ErrInvalidState
	}
	s.data = next
	s.steps++
	return nil
}

// StepEuler performs data ← data + h·f(t, data).
func (s *Stepper[T]) StepEuler(f Func[T], t, h float64) error {
	if f == nil {
		return ErrNilFunc
	}
	k, err := s.eval(f, t, s.data.Clone())
	if err != nil {
		return err
	}
	return s.commit(s.data.AddScaled(k, grid.FromReal[T](h)))
}

// StepRK4 performs one classic fourth-order Runge-Kutta step.
func (s *Stepper[T]) StepRK4(f Func[T], t, h float64) error {
	if f == nil {
		return ErrNilFunc
	}
	half := grid.FromReal[T](h / 2)

	k1, err := s.eval(f, t, s.data.Clone())
	if err != nil {
		return err
	}
	k2, err := s.eval(f, t+h/2, s.data.AddScaled(k1, half))
	if err != nil {
		return err
	}
	k3, err := s.eval(f, t+h/2, s.data.AddScaled(k2, half))
	if err != nil {
		return err
	}
	k4, err := s.eval(f, t+h, s.data.AddScaled(k3, grid.FromReal[T](h)))
	if err != nil {
		return err
	}

	return s.commit(rk4Combine(s.data, k1, k2, k3, k4, h))
}

func rk4Combine[T grid.Scalar](base, k1, k2, k3, k4 *grid.Grid[T], h float64) *grid.Grid[T] {
	out := base.Zeros()
	b, o := base.Data(), out.Data()
	d1, d2, d3, d4 := k1.Data(), k2.Data(), k3.Data(), k4.Data()
	hT := grid.FromReal[T](h)

	grid.ParallelFor(len(b), combineChunk, func(start, end int) {
		for i := start; i < end; i++ {
			o[i] = b[i] + hT*((d1[i]+2*d2[i]+2*d3[i]+d4[i])/6)
		}
	})
	return out
}

// Step runs the gradient-form update once. Gradients of the current snapshot
// are computed for this call only.
func (s *Stepper[T]) Step(f GradFunc[T], h float64) error {
	if f == nil {
		return ErrNilFunc
	}
	first, second, err := gradient.Compute(s.data)
	if err != nil {
		return err
	}
	s.evals++
	next, err := f(s.data.Clone(), first, second, h)
	if err != nil {
		return err
	}
	if err := s.data.CheckShape(next); err != nil {
		return fmt.Errorf("gradient step result: %w", err)
	}
	return s.commit(next)
}

func (s *Stepper[T]) SolveEuler(f Func[T], n int, h, t0 float64) error {
	return s.solve(s.StepEuler, f, n, h, t0)
}

func (s *Stepper[T]) SolveRK4(f Func[T], n int, h, t0 float64) error {
	return s.solve(s.StepRK4, f, n, h, t0)
}

// Solve runs n steps of the given method starting at t0.
func (s *Stepper[T]) Solve(m Method, f Func[T], n int, h, t0 float64) error {
	switch m {
	case Euler:
		return s.SolveEuler(f, n, h, t0)
	case RK4:
		return s.SolveRK4(f, n, h, t0)
	}
	return fmt.Errorf("%w: %v", ErrUnknownMethod, m)
}

func (s *Stepper[T]) solve(step func(Func[T], float64, float64) error, f Func[T], n int, h, t0 float64) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeSteps, n)
	}
	if f == nil {
		return ErrNilFunc
	}

	for i := 0; i < n; i++ {
		t := t0 + float64(i)*h
		if err := step(f, t, h); err != nil {
			return &StepError{Step: i, Time: t, Err: err}
		}
		for _, o := range s.observers {
			if err := o.OnStep(i, t+h, s.data); err != nil {
				return &StepError{Step: i, Time: t + h, Err: err}
			}
		}
	}
	return nil
}
