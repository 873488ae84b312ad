package grid

import (
	"math"
	"math/cmplx"
)

// Scalar is the element type of a grid.
type Scalar interface {
	float64 | complex128
}

// FromReal converts a real number into the element type T.
func FromReal[T Scalar](x float64) T {
	var v T
	switch p := any(&v).(type) {
	case *float64:
		*p = x
	case *complex128:
		*p = complex(x, 0)
	}
	return v
}

// Abs returns |v|, the modulus for complex elements.
func Abs[T Scalar](v T) float64 {
	switch x := any(v).(type) {
	case float64:
		return math.Abs(x)
	case complex128:
		return cmplx.Abs(x)
	}
	return 0
}

// AbsSq returns |v|^2 without the square root.
func AbsSq[T Scalar](v T) float64 {
	switch x := any(v).(type) {
	case float64:
		return x * x
	case complex128:
		return real(x)*real(x) + imag(x)*imag(x)
	}
	return 0
}

// IsFinite reports whether v (both parts, for complex) is neither NaN nor Inf.
func IsFinite[T Scalar](v T) bool {
	switch x := any(v).(type) {
	case float64:
		return !math.IsNaN(x) && !math.IsInf(x, 0)
	case complex128:
		return !cmplx.IsNaN(x) && !cmplx.IsInf(x)
	}
	return true
}
