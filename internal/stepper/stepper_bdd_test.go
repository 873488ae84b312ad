package stepper_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gridsolve/internal/grid"
	"github.com/san-kum/gridsolve/internal/stepper"
)

var _ = Describe("Stepper", func() {
	var (
		x0 *grid.Grid[float64]
		s  *stepper.Stepper[float64]
	)

	BeforeEach(func() {
		x0 = grid.Must(grid.New[float64](5, 4))
		for i := range x0.Data() {
			x0.Data()[i] = float64(i%7) - 2
		}
		s = stepper.New(x0)
	})

	Context("with a linear decay field", func() {
		decay := func(_ float64, x *grid.Grid[float64]) (*grid.Grid[float64], error) {
			return x.Scale(-0.5), nil
		}

		It("tracks the exact solution closer with RK4 than Euler", func() {
			euler := stepper.New(x0)
			Expect(euler.SolveEuler(decay, 20, 0.1, 0)).To(Succeed())
			Expect(s.SolveRK4(decay, 20, 0.1, 0)).To(Succeed())

			exact := x0.Scale(math.Exp(-1))
			eulerErr := euler.Data().Sub(exact).MaxAbs()
			rkErr := s.Data().Sub(exact).MaxAbs()

			Expect(rkErr).To(BeNumerically("<", 1e-6))
			Expect(eulerErr).To(BeNumerically(">", 100*rkErr))
		})

		It("keeps the snapshot shape", func() {
			Expect(s.SolveEuler(decay, 3, 0.1, 0)).To(Succeed())
			Expect(s.Shape()).To(Equal([]int{5, 4}))
		})

		It("reports every step to observers in order", func() {
			var steps []int
			s.AddObserver(stepper.ObserverFunc[float64](func(step int, _ float64, data *grid.Grid[float64]) error {
				steps = append(steps, step)
				Expect(data.Shape()).To(Equal([]int{5, 4}))
				return nil
			}))
			Expect(s.Solve(stepper.RK4, decay, 6, 0.05, 0)).To(Succeed())
			Expect(steps).To(Equal([]int{0, 1, 2, 3, 4, 5}))
		})
	})

	Context("when the derivative fails", func() {
		errField := errors.New("field evaluation failed")

		It("stops at the failing step and keeps the last good snapshot", func() {
			var kept *grid.Grid[float64]
			s.AddObserver(stepper.ObserverFunc[float64](func(_ int, _ float64, data *grid.Grid[float64]) error {
				kept = data.Clone()
				return nil
			}))

			f := func(t float64, x *grid.Grid[float64]) (*grid.Grid[float64], error) {
				if t > 0.27 {
					return nil, errField
				}
				return x.Scale(2), nil
			}

			err := s.SolveRK4(f, 10, 0.1, 0)
			Expect(err).To(MatchError(errField))

			var stepErr *stepper.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Step).To(Equal(2))
			Expect(s.Steps()).To(Equal(2))
			Expect(s.Data().Data()).To(Equal(kept.Data()))
		})
	})

	Context("with the finite check enabled", func() {
		It("rejects a step that produces NaN", func() {
			guarded := stepper.New(x0, stepper.WithFiniteCheck())
			f := func(_ float64, x *grid.Grid[float64]) (*grid.Grid[float64], error) {
				return x.Map(func(float64) float64 { return math.NaN() }), nil
			}

			Expect(guarded.StepEuler(f, 0, 0.1)).To(MatchError(grid.ErrInvalidState))
			Expect(guarded.Data().Data()).To(Equal(x0.Data()))
			Expect(guarded.Steps()).To(BeZero())
		})
	})
})
