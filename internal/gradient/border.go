package gradient

import "github.com/san-kum/gridsolve/internal/grid"

// BorderMask marks every flat offset whose multi-index sits at the first or last
// position of at least one axis. The mask is the union of the two end slabs of
// each axis.
func BorderMask(shape []int) []bool {
	n := 1
	for _, s := range shape {
		n *= s
	}
	mask := make([]bool, n)

	stride := n
	for _, length := range shape {
		outer := n / stride
		stride /= length
		span := length * stride
		for o := 0; o < outer; o++ {
			first := o * span
			last := first + (length-1)*stride
			for k := 0; k < stride; k++ {
				mask[first+k] = true
				mask[last+k] = true
			}
		}
	}
	return mask
}

// ZeroBorder clears every element of g selected by mask.
func ZeroBorder[T grid.Scalar](g *grid.Grid[T], mask []bool) {
	data := g.Data()
	for i, onBorder := range mask {
		if onBorder {
			data[i] = 0
		}
	}
}
