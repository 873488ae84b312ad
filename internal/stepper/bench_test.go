package stepper

import (
	"testing"

	"github.com/san-kum/gridsolve/internal/grid"
)

func benchStepper() (*Stepper[float64], Func[float64]) {
	g, _ := grid.New[float64](64, 64)
	g.Fill(1)
	f := func(t float64, x *grid.Grid[float64]) (*grid.Grid[float64], error) {
		return x.Scale(-1), nil
	}
	return New(g), f
}

func BenchmarkStepEuler(b *testing.B) {
	s, f := benchStepper()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.StepEuler(f, 0, 0.01); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkStepRK4(b *testing.B) {
	s, f := benchStepper()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.StepRK4(f, 0, 0.01); err != nil {
			b.Fatal(err)
		}
	}
}
