package gradient

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/gridsolve/internal/grid"
)

// stencilChunk is the smallest number of elements one stencil worker handles.
const stencilChunk = 2048

// First holds one gradient component per axis of the source grid.
type First[T grid.Scalar] []*grid.Grid[T]

// Second holds the gradient of every first-order component: Second[i][j] is
// the derivative along axis j of First[i].
type Second[T grid.Scalar] [][]*grid.Grid[T]

// Validate checks that every axis of shape can carry a difference stencil.
func Validate(shape []int) error {
	if len(shape) == 0 {
		return fmt.Errorf("%w: rank 0", grid.ErrInvalidShape)
	}
	for axis, n := range shape {
		if n < 2 {
			return fmt.Errorf("%w: axis %d has length %d, gradients need at least 2", grid.ErrInvalidShape, axis, n)
		}
	}
	return nil
}

// Axis returns the raw gradient of g along axis: central differences in the
// interior and one-sided differences at both ends, unit spacing.
func Axis[T grid.Scalar](g *grid.Grid[T], axis int) (*grid.Grid[T], error) {
	if axis < 0 || axis >= g.Rank() {
		return nil, fmt.Errorf("%w: axis %d out of range for rank %d", grid.ErrInvalidShape, axis, g.Rank())
	}
	n := g.Dim(axis)
	if n < 2 {
		return nil, fmt.Errorf("%w: axis %d has length %d, gradients need at least 2", grid.ErrInvalidShape, axis, n)
	}

	st := g.Stride(axis)
	src := g.Data()
	out := g.Zeros()
	dst := out.Data()
	half := grid.FromReal[T](0.5)

	grid.ParallelFor(len(src), stencilChunk, func(start, end int) {
		for off := start; off < end; off++ {
			switch i := (off / st) % n; i {
			case 0:
				dst[off] = src[off+st] - src[off]
			case n - 1:
				dst[off] = src[off] - src[off-st]
			default:
				dst[off] = half * (src[off+st] - src[off-st])
			}
		}
	})
	return out, nil
}

// FirstOrder returns the first-order gradient of g along every axis with the
// outer shell of each component set to zero.
func FirstOrder[T grid.Scalar](g *grid.Grid[T]) (First[T], error) {
	if err := Validate(g.Shape()); err != nil {
		return nil, err
	}

	mask := BorderMask(g.Shape())
	first := make(First[T], g.Rank())

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for axis := range first {
		eg.Go(func() error {
			d, err := Axis(g, axis)
			if err != nil {
				return err
			}
			ZeroBorder(d, mask)
			first[axis] = d
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return first, nil
}

// Compute returns the boundary-corrected first-order gradients of g and the
// plain gradients of each of those components along every axis.
func Compute[T grid.Scalar](g *grid.Grid[T]) (First[T], Second[T], error) {
	first, err := FirstOrder(g)
	if err != nil {
		return nil, nil, err
	}

	rank := g.Rank()
	second := make(Second[T], rank)
	for i := range second {
		second[i] = make([]*grid.Grid[T], rank)
	}

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < rank; i++ {
		for j := 0; j < rank; j++ {
			eg.Go(func() error {
				d, err := Axis(first[i], j)
				if err != nil {
					return err
				}
				second[i][j] = d
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return first, second, nil
}

// Magnitude returns |∇f| per element.
func (f First[T]) Magnitude() *grid.Grid[float64] {
	if len(f) == 0 {
		return nil
	}
	out := f[0].Density()
	acc := out.Data()
	for _, c := range f[1:] {
		for i, v := range c.Data() {
			acc[i] += grid.AbsSq(v)
		}
	}
	for i, v := range acc {
		acc[i] = math.Sqrt(v)
	}
	return out
}

// Diagonal returns the pure second derivatives Second[i][i].
func (s Second[T]) Diagonal() []*grid.Grid[T] {
	d := make([]*grid.Grid[T], len(s))
	for i := range s {
		d[i] = s[i][i]
	}
	return d
}

// Laplacian sums the diagonal of the second-order set.
func (s Second[T]) Laplacian() *grid.Grid[T] {
	if len(s) == 0 {
		return nil
	}
	lap := s[0][0].Clone()
	acc := lap.Data()
	for i := 1; i < len(s); i++ {
		for k, v := range s[i][i].Data() {
			acc[k] += v
		}
	}
	return lap
}
