package rhs

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/san-kum/gridsolve/internal/gradient"
	"github.com/san-kum/gridsolve/internal/grid"
	"github.com/san-kum/gridsolve/internal/stepper"
)

const elementChunk = 4096

var ErrInvalidParams = errors.New("rhs: invalid operator parameters")

// Laplacian returns ∇²g for a grid with uniform spacing along every axis.
func Laplacian[T grid.Scalar](g *grid.Grid[T], spacing float64) (*grid.Grid[T], error) {
	_, second, err := gradient.Compute(g)
	if err != nil {
		return nil, err
	}
	return second.Laplacian().Scale(grid.FromReal[T](1 / (spacing * spacing))), nil
}

// Diffusion returns u_t = d·∇²u.
func Diffusion(d, spacing float64) (stepper.Func[float64], error) {
	if spacing <= 0 {
		return nil, fmt.Errorf("%w: spacing %g", ErrInvalidParams, spacing)
	}
	return func(_ float64, u *grid.Grid[float64]) (*grid.Grid[float64], error) {
		lap, err := Laplacian(u, spacing)
		if err != nil {
			return nil, err
		}
		return lap.Scale(d), nil
	}, nil
}

// Potential is an external real potential that can be switched off while a
// solve is running.
type Potential struct {
	v        *grid.Grid[float64]
	disabled atomic.Bool
}

func NewPotential(v *grid.Grid[float64]) *Potential {
	return &Potential{v: v}
}

func (p *Potential) Disable()      { p.disabled.Store(true) }
func (p *Potential) Enable()       { p.disabled.Store(false) }
func (p *Potential) Enabled() bool { return !p.disabled.Load() }

// Values returns the potential grid. It is shared; do not modify it.
func (p *Potential) Values() *grid.Grid[float64] { return p.v }

type SchrodingerParams struct {
	Mass    float64
	Spacing float64

	// Coupling is the strength of the |ψ|²ψ self-interaction.
	Coupling float64

	// Cutoff drops the self-interaction wherever Coupling·|ψ| reaches it.
	// Zero means no cutoff.
	Cutoff float64

	Potential *Potential
}

// Schrodinger returns
//
//	ψ_t = i/(2m)·∇²ψ − i·κ·|ψ|²ψ − i·V·ψ
//
// with the cubic term limited by Cutoff and V applied while the potential is
// enabled.
func Schrodinger(p SchrodingerParams) (stepper.Func[complex128], error) {
	if p.Mass <= 0 {
		return nil, fmt.Errorf("%w: mass %g", ErrInvalidParams, p.Mass)
	}
	if p.Spacing <= 0 {
		return nil, fmt.Errorf("%w: spacing %g", ErrInvalidParams, p.Spacing)
	}
	if p.Cutoff < 0 {
		return nil, fmt.Errorf("%w: cutoff %g", ErrInvalidParams, p.Cutoff)
	}
	kinetic := complex(0, 1/(2*p.Mass))

	return func(_ float64, psi *grid.Grid[complex128]) (*grid.Grid[complex128], error) {
		var v []float64
		if p.Potential != nil && p.Potential.Enabled() {
			if !slices.Equal(psi.Shape(), p.Potential.v.Shape()) {
				return nil, fmt.Errorf("potential: %w: want %v, got %v", grid.ErrShapeMismatch, psi.Shape(), p.Potential.v.Shape())
			}
			v = p.Potential.v.Data()
		}

		lap, err := Laplacian(psi, p.Spacing)
		if err != nil {
			return nil, err
		}

		out := lap.Data()
		in := psi.Data()
		grid.ParallelFor(len(in), elementChunk, func(start, end int) {
			for i := start; i < end; i++ {
				d := kinetic * out[i]
				if p.Coupling != 0 {
					mag := grid.Abs(in[i])
					if p.Cutoff == 0 || p.Coupling*mag < p.Cutoff {
						d -= complex(0, p.Coupling*mag*mag) * in[i]
					}
				}
				if v != nil {
					d -= complex(0, v[i]) * in[i]
				}
				out[i] = d
			}
		})
		return lap, nil
	}, nil
}
