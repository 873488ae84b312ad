package grid

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidShape(t *testing.T) {
	tests := []struct {
		name  string
		shape []int
	}{
		{"rank zero", nil},
		{"zero axis", []int{3, 0}},
		{"negative axis", []int{-1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New[float64](tt.shape...)
			assert.ErrorIs(t, err, ErrInvalidShape)
		})
	}
}

func TestFromSlice(t *testing.T) {
	g, err := FromSlice([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3}, g.Shape())
	assert.Equal(t, 2, g.Rank())
	assert.Equal(t, 6, g.Len())
	assert.Equal(t, 6.0, g.At(1, 2))
	assert.Equal(t, 2.0, g.At(0, 1))
	assert.Equal(t, 3, g.Stride(0))
	assert.Equal(t, 1, g.Stride(1))

	_, err = FromSlice([]int{2, 2}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestFromSlice_Copies(t *testing.T) {
	src := []float64{1, 2, 3}
	g := Must(FromSlice([]int{3}, src))
	src[0] = 99
	assert.Equal(t, 1.0, g.At(0))
}

func TestOffsetCoordsRoundTrip(t *testing.T) {
	g := Must(New[float64](3, 4, 5))
	buf := make([]int, 3)
	for off := 0; off < g.Len(); off++ {
		idx := g.Coords(off, buf)
		assert.Equal(t, off, g.Offset(idx...))
	}
}

func TestOffset_PanicsOutOfRange(t *testing.T) {
	g := Must(New[float64](3, 3))
	assert.Panics(t, func() { g.At(3, 0) })
	assert.Panics(t, func() { g.At(0) })
}

func TestClone_Independent(t *testing.T) {
	g := Must(FromSlice([]int{3}, []complex128{1, 2i, 3}))
	c := g.Clone()
	c.Set(42, 0)

	assert.Equal(t, complex128(1), g.At(0))
	assert.Equal(t, complex128(42), c.At(0))
	assert.True(t, g.SameShape(c))
}

func TestArithmetic(t *testing.T) {
	a := Must(FromSlice([]int{3}, []float64{1, 2, 3}))
	b := Must(FromSlice([]int{3}, []float64{4, 5, 6}))

	assert.Equal(t, []float64{5, 7, 9}, a.Add(b).Data())
	assert.Equal(t, []float64{3, 3, 3}, b.Sub(a).Data())
	assert.Equal(t, []float64{2, 4, 6}, a.Scale(2).Data())
	assert.Equal(t, []float64{9, 12, 15}, a.AddScaled(b, 2).Data())

	// inputs untouched
	assert.Equal(t, []float64{1, 2, 3}, a.Data())
}

func TestArithmetic_ShapeMismatchPanics(t *testing.T) {
	a := Must(New[float64](3))
	b := Must(New[float64](4))
	assert.Panics(t, func() { a.Add(b) })
}

func TestLinComb(t *testing.T) {
	base := Must(FromSlice([]int{2}, []complex128{1, 1}))
	k1 := Must(FromSlice([]int{2}, []complex128{1i, 2}))
	k2 := Must(FromSlice([]int{2}, []complex128{1, 1i}))

	out := LinComb(base, []complex128{2, 1i}, k1, k2)
	assert.Equal(t, []complex128{1 + 2i + 1i, 1 + 4 - 1}, out.Data())
}

func TestCheckShape(t *testing.T) {
	a := Must(New[float64](2, 3))
	b := Must(New[float64](3, 2))

	require.NoError(t, a.CheckShape(a.Clone()))
	err := a.CheckShape(b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
	assert.Contains(t, err.Error(), "[2 3]")
	assert.ErrorIs(t, a.CheckShape(nil), ErrShapeMismatch)
}

func TestDiagnostics(t *testing.T) {
	g := Must(FromSlice([]int{2}, []complex128{3 + 4i, 0}))
	assert.InDelta(t, 5.0, g.Norm(), 1e-12)
	assert.InDelta(t, 5.0, g.MaxAbs(), 1e-12)
	assert.Equal(t, []float64{25, 0}, g.Density().Data())
	assert.Equal(t, []float64{3, 0}, g.Real().Data())
	assert.True(t, g.IsFinite())

	g.Set(complex(math.NaN(), 0), 1)
	assert.False(t, g.IsFinite())

	r := Must(FromSlice([]int{2}, []float64{1, math.Inf(-1)}))
	assert.False(t, r.IsFinite())
}

func TestLine(t *testing.T) {
	g := Must(New[float64](3, 3))
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			g.Set(float64(10*i+j), i, j)
		}
	}
	assert.Equal(t, []float64{1, 11, 21}, g.Line(0))
	assert.Equal(t, []float64{10, 11, 12}, g.Line(1))
}

func TestScalarHelpers(t *testing.T) {
	assert.Equal(t, 2.5, FromReal[float64](2.5))
	assert.Equal(t, complex(2.5, 0), FromReal[complex128](2.5))
	assert.Equal(t, 3.0, Abs(-3.0))
	assert.InDelta(t, 5.0, Abs(complex(3, -4)), 1e-12)
	assert.Equal(t, 25.0, AbsSq(complex(3, 4)))
	assert.False(t, IsFinite(complex(0, math.Inf(1))))
}

func TestParallelFor_CoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 7, 1000, 10007} {
		var seen int64
		hits := make([]int32, n)
		ParallelFor(n, 16, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
				atomic.AddInt64(&seen, 1)
			}
		})
		assert.Equal(t, int64(n), seen)
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, h)
			}
		}
	}
}

func TestString(t *testing.T) {
	g := Must(New[complex128](4, 5))
	assert.Equal(t, "Grid[complex128](4x5)", g.String())
}
