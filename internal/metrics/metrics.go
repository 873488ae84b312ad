package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/gridsolve/internal/grid"
)

// Metric reduces a field snapshot to one number. Observe is called with the
// live snapshot and must not keep or modify it.
type Metric[T grid.Scalar] interface {
	Name() string
	Observe(t float64, g *grid.Grid[T])
	Value() float64
	Reset()
}

// Norm is the integral of |ψ|² over the domain.
type Norm[T grid.Scalar] struct {
	cellVolume float64
	value      float64
}

func NewNorm[T grid.Scalar](cellVolume float64) *Norm[T] {
	return &Norm[T]{cellVolume: cellVolume}
}

func (n *Norm[T]) Name() string { return "norm" }

func (n *Norm[T]) Observe(_ float64, g *grid.Grid[T]) {
	n.value = floats.Sum(g.Density().Data()) * n.cellVolume
}

func (n *Norm[T]) Value() float64 { return n.value }
func (n *Norm[T]) Reset()         { n.value = 0 }

// NormDrift tracks the largest relative departure of the norm from its first
// observed value.
type NormDrift[T grid.Scalar] struct {
	initial  float64
	maxDrift float64
	samples  int
}

func NewNormDrift[T grid.Scalar]() *NormDrift[T] { return &NormDrift[T]{} }

func (d *NormDrift[T]) Name() string { return "norm_drift" }

func (d *NormDrift[T]) Observe(_ float64, g *grid.Grid[T]) {
	norm := floats.Sum(g.Density().Data())
	if d.samples == 0 {
		d.initial = norm
	}
	d.samples++
	if d.initial == 0 {
		return
	}
	if drift := math.Abs(norm-d.initial) / d.initial; drift > d.maxDrift {
		d.maxDrift = drift
	}
}

func (d *NormDrift[T]) Value() float64 { return d.maxDrift }

func (d *NormDrift[T]) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}

// Peak is the largest magnitude in the field.
type Peak[T grid.Scalar] struct {
	value float64
}

func NewPeak[T grid.Scalar]() *Peak[T] { return &Peak[T]{} }

func (p *Peak[T]) Name() string { return "peak" }

func (p *Peak[T]) Observe(_ float64, g *grid.Grid[T]) { p.value = g.MaxAbs() }

func (p *Peak[T]) Value() float64 { return p.value }
func (p *Peak[T]) Reset()         { p.value = 0 }

// Centroid is the mean position of |ψ|² along axis 0.
type Centroid[T grid.Scalar] struct {
	coords []float64
	value  float64
}

// NewCentroid measures against the coordinates of axis 0, one per index.
func NewCentroid[T grid.Scalar](coords []float64) *Centroid[T] {
	return &Centroid[T]{coords: coords}
}

func (c *Centroid[T]) Name() string { return "centroid" }

func (c *Centroid[T]) Observe(_ float64, g *grid.Grid[T]) {
	c.value, _ = moments(c.coords, Marginal(g))
}

func (c *Centroid[T]) Value() float64 { return c.value }
func (c *Centroid[T]) Reset()         { c.value = 0 }

// Width is the RMS spread of |ψ|² along axis 0 about its centroid.
type Width[T grid.Scalar] struct {
	coords []float64
	value  float64
}

func NewWidth[T grid.Scalar](coords []float64) *Width[T] {
	return &Width[T]{coords: coords}
}

func (w *Width[T]) Name() string { return "width" }

func (w *Width[T]) Observe(_ float64, g *grid.Grid[T]) {
	_, w.value = moments(w.coords, Marginal(g))
}

func (w *Width[T]) Value() float64 { return w.value }
func (w *Width[T]) Reset()         { w.value = 0 }

// Marginal sums |ψ|² over every axis but the first.
func Marginal[T grid.Scalar](g *grid.Grid[T]) []float64 {
	out := make([]float64, g.Dim(0))
	stride := g.Stride(0)
	for off, v := range g.Data() {
		out[off/stride] += grid.AbsSq(v)
	}
	return out
}

func moments(coords, weights []float64) (mean, rms float64) {
	total := floats.Sum(weights)
	if total == 0 || len(coords) != len(weights) {
		return 0, 0
	}
	mean = floats.Dot(coords, weights) / total

	dev := append([]float64(nil), coords...)
	floats.AddConst(-mean, dev)
	floats.Mul(dev, dev)
	return mean, math.Sqrt(floats.Dot(dev, weights) / total)
}

// Set observes a fixed list of metrics together.
type Set[T grid.Scalar] struct {
	metrics []Metric[T]
}

func NewSet[T grid.Scalar](ms ...Metric[T]) *Set[T] {
	return &Set[T]{metrics: ms}
}

func (s *Set[T]) Observe(t float64, g *grid.Grid[T]) {
	for _, m := range s.metrics {
		m.Observe(t, g)
	}
}

func (s *Set[T]) Names() []string {
	names := make([]string, len(s.metrics))
	for i, m := range s.metrics {
		names[i] = m.Name()
	}
	return names
}

// Values returns the current values in the order of Names.
func (s *Set[T]) Values() []float64 {
	vals := make([]float64, len(s.metrics))
	for i, m := range s.metrics {
		vals[i] = m.Value()
	}
	return vals
}

func (s *Set[T]) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s *Set[T]) Reset() {
	for _, m := range s.metrics {
		m.Reset()
	}
}
