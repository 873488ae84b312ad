package grid

import (
	"fmt"
	"math"
	"strings"
)

// elementChunk is the smallest slice of elements handed to one worker.
const elementChunk = 4096

// Grid is a fixed-shape n-dimensional array stored row-major in one slice.
type Grid[T Scalar] struct {
	shape   []int
	strides []int
	data    []T
}

// New allocates a zero-filled grid. Rank 0 and axes shorter than 1 are rejected.
func New[T Scalar](shape ...int) (*Grid[T], error) {
	n, err := volume(shape)
	if err != nil {
		return nil, err
	}
	return &Grid[T]{
		shape:   append([]int(nil), shape...),
		strides: strides(shape),
		data:    make([]T, n),
	}, nil
}

// FromSlice builds a grid of the given shape holding a copy of data.
func FromSlice[T Scalar](shape []int, data []T) (*Grid[T], error) {
	g, err := New[T](shape...)
	if err != nil {
		return nil, err
	}
	if len(data) != len(g.data) {
		return nil, fmt.Errorf("%w: shape %v needs %d values, got %d", ErrShapeMismatch, shape, len(g.data), len(data))
	}
	copy(g.data, data)
	return g, nil
}

// Must panics if err is non-nil. Intended for literal grids in tests and builders.
func Must[T Scalar](g *Grid[T], err error) *Grid[T] {
	if err != nil {
		panic(err)
	}
	return g
}

func volume(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("%w: rank 0", ErrInvalidShape)
	}
	n := 1
	for axis, s := range shape {
		if s < 1 {
			return 0, fmt.Errorf("%w: axis %d has length %d", ErrInvalidShape, axis, s)
		}
		n *= s
	}
	return n, nil
}

func strides(shape []int) []int {
	st := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		st[i] = acc
		acc *= shape[i]
	}
	return st
}

func (g *Grid[T]) Shape() []int { return append([]int(nil), g.shape...) }
func (g *Grid[T]) Rank() int    { return len(g.shape) }
func (g *Grid[T]) Len() int     { return len(g.data) }

// Dim returns the length of one axis.
func (g *Grid[T]) Dim(axis int) int { return g.shape[axis] }

// Stride returns the flat distance between neighbours along axis.
func (g *Grid[T]) Stride(axis int) int { return g.strides[axis] }

// Data exposes the backing slice. Only the owner of the grid may write to it.
func (g *Grid[T]) Data() []T { return g.data }

// Offset maps a multi-index to its position in Data.
func (g *Grid[T]) Offset(idx ...int) int {
	if len(idx) != len(g.shape) {
		panic(fmt.Sprintf("grid: index rank %d does not match grid rank %d", len(idx), len(g.shape)))
	}
	off := 0
	for axis, i := range idx {
		if i < 0 || i >= g.shape[axis] {
			panic(fmt.Sprintf("grid: index %d out of range for axis %d of length %d", i, axis, g.shape[axis]))
		}
		off += i * g.strides[axis]
	}
	return off
}

// Coords writes the multi-index of flat offset off into buf, allocating if buf is too short.
func (g *Grid[T]) Coords(off int, buf []int) []int {
	if cap(buf) < len(g.shape) {
		buf = make([]int, len(g.shape))
	}
	buf = buf[:len(g.shape)]
	for axis, st := range g.strides {
		buf[axis] = off / st
		off %= st
	}
	return buf
}

func (g *Grid[T]) At(idx ...int) T     { return g.data[g.Offset(idx...)] }
func (g *Grid[T]) Set(v T, idx ...int) { g.data[g.Offset(idx...)] = v }

func (g *Grid[T]) Fill(v T) {
	for i := range g.data {
		g.data[i] = v
	}
}

func (g *Grid[T]) Clone() *Grid[T] {
	c := &Grid[T]{
		shape:   append([]int(nil), g.shape...),
		strides: append([]int(nil), g.strides...),
		data:    make([]T, len(g.data)),
	}
	copy(c.data, g.data)
	return c
}

// Zeros returns a zero grid with g's shape.
func (g *Grid[T]) Zeros() *Grid[T] {
	return &Grid[T]{
		shape:   append([]int(nil), g.shape...),
		strides: append([]int(nil), g.strides...),
		data:    make([]T, len(g.data)),
	}
}

func (g *Grid[T]) SameShape(o *Grid[T]) bool {
	if o == nil || len(g.shape) != len(o.shape) {
		return false
	}
	for i := range g.shape {
		if g.shape[i] != o.shape[i] {
			return false
		}
	}
	return true
}

// CheckShape returns an error wrapping ErrShapeMismatch when o's shape differs from g's.
func (g *Grid[T]) CheckShape(o *Grid[T]) error {
	if o == nil {
		return fmt.Errorf("%w: want %v, got nil grid", ErrShapeMismatch, g.shape)
	}
	if !g.SameShape(o) {
		return fmt.Errorf("%w: want %v, got %v", ErrShapeMismatch, g.shape, o.shape)
	}
	return nil
}

func (g *Grid[T]) mustMatch(o *Grid[T]) {
	if err := g.CheckShape(o); err != nil {
		panic(err)
	}
}

// Map applies fn to every element and returns the result as a new grid.
func (g *Grid[T]) Map(fn func(T) T) *Grid[T] {
	out := g.Zeros()
	ParallelFor(len(g.data), elementChunk, func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = fn(g.data[i])
		}
	})
	return out
}

// Add returns g + o. o must have g's shape.
func (g *Grid[T]) Add(o *Grid[T]) *Grid[T] {
	return g.AddScaled(o, 1)
}

// Sub returns g - o. o must have g's shape.
func (g *Grid[T]) Sub(o *Grid[T]) *Grid[T] {
	return g.AddScaled(o, -1)
}

// Scale returns s*g.
func (g *Grid[T]) Scale(s T) *Grid[T] {
	out := g.Zeros()
	ParallelFor(len(g.data), elementChunk, func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = s * g.data[i]
		}
	})
	return out
}

// AddScaled returns g + s*o. o must have g's shape.
func (g *Grid[T]) AddScaled(o *Grid[T], s T) *Grid[T] {
	g.mustMatch(o)
	out := g.Zeros()
	ParallelFor(len(g.data), elementChunk, func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = g.data[i] + s*o.data[i]
		}
	})
	return out
}

// LinComb returns base + sum(coeffs[i] * terms[i]). Every term must have base's shape.
func LinComb[T Scalar](base *Grid[T], coeffs []T, terms ...*Grid[T]) *Grid[T] {
	if len(coeffs) != len(terms) {
		panic(fmt.Sprintf("grid: %d coefficients for %d terms", len(coeffs), len(terms)))
	}
	for _, t := range terms {
		base.mustMatch(t)
	}
	out := base.Zeros()
	ParallelFor(len(base.data), elementChunk, func(start, end int) {
		for i := start; i < end; i++ {
			v := base.data[i]
			for k, t := range terms {
				v += coeffs[k] * t.data[i]
			}
			out.data[i] = v
		}
	})
	return out
}

// Norm returns the L2 norm over all elements.
func (g *Grid[T]) Norm() float64 {
	sum := 0.0
	for _, v := range g.data {
		sum += AbsSq(v)
	}
	return math.Sqrt(sum)
}

// MaxAbs returns the largest element modulus.
func (g *Grid[T]) MaxAbs() float64 {
	m := 0.0
	for _, v := range g.data {
		if a := Abs(v); a > m {
			m = a
		}
	}
	return m
}

// IsFinite reports whether no element is NaN or Inf.
func (g *Grid[T]) IsFinite() bool {
	for _, v := range g.data {
		if !IsFinite(v) {
			return false
		}
	}
	return true
}

// Real returns the real part of every element as a float64 grid.
func (g *Grid[T]) Real() *Grid[float64] {
	return g.project(func(v T) float64 {
		switch x := any(v).(type) {
		case complex128:
			return real(x)
		case float64:
			return x
		}
		return 0
	})
}

// Density returns |v|^2 per element.
func (g *Grid[T]) Density() *Grid[float64] {
	return g.project(AbsSq[T])
}

func (g *Grid[T]) project(fn func(T) float64) *Grid[float64] {
	out := &Grid[float64]{
		shape:   append([]int(nil), g.shape...),
		strides: append([]int(nil), g.strides...),
		data:    make([]float64, len(g.data)),
	}
	for i, v := range g.data {
		out.data[i] = fn(v)
	}
	return out
}

// Line returns the 1-D cut along axis through the grid centre.
func (g *Grid[T]) Line(axis int) []T {
	idx := make([]int, len(g.shape))
	for a, s := range g.shape {
		idx[a] = s / 2
	}
	idx[axis] = 0
	start := g.Offset(idx...)
	out := make([]T, g.shape[axis])
	for i := range out {
		out[i] = g.data[start+i*g.strides[axis]]
	}
	return out
}

func (g *Grid[T]) String() string {
	dims := make([]string, len(g.shape))
	for i, s := range g.shape {
		dims[i] = fmt.Sprint(s)
	}
	var zero T
	return fmt.Sprintf("Grid[%T](%s)", zero, strings.Join(dims, "x"))
}
