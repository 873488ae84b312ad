package experiment

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/gridsolve/internal/config"
	"github.com/san-kum/gridsolve/internal/grid"
	"github.com/san-kum/gridsolve/internal/metrics"
	"github.com/san-kum/gridsolve/internal/rhs"
)

// Axes returns the coordinates of every axis on [-extent, extent].
func Axes(shape []int, extent float64) [][]float64 {
	axes := make([][]float64, len(shape))
	for i, n := range shape {
		axes[i] = floats.Span(make([]float64, n), -extent, extent)
	}
	return axes
}

// fillFrom sets every element of g from its physical position.
func fillFrom[T grid.Scalar](g *grid.Grid[T], axes [][]float64, fn func(x []float64) T) {
	idx := make([]int, g.Rank())
	x := make([]float64, g.Rank())
	data := g.Data()
	for off := range data {
		idx = g.Coords(off, idx)
		for a, i := range idx {
			x[a] = axes[a][i]
		}
		data[off] = fn(x)
	}
}

func cellVolume(cfg *config.Config) float64 {
	v := 1.0
	for axis := range cfg.Shape {
		v *= cfg.Spacing(axis)
	}
	return v
}

// trapWeights defaults to an isotropic trap.
func trapWeights(cfg *config.Config) []float64 {
	if len(cfg.Params.Trap) == len(cfg.Shape) {
		return cfg.Params.Trap
	}
	w := make([]float64, len(cfg.Shape))
	floats.AddConst(1, w)
	return w
}

func standardMetrics[T grid.Scalar](cfg *config.Config, coords []float64) *metrics.Set[T] {
	return metrics.NewSet[T](
		metrics.NewNorm[T](cellVolume(cfg)),
		metrics.NewNormDrift[T](),
		metrics.NewPeak[T](),
		metrics.NewCentroid[T](coords),
		metrics.NewWidth[T](coords),
	)
}

func realProfile(g *grid.Grid[float64]) []float64 { return g.Line(0) }

func densityProfile(g *grid.Grid[complex128]) []float64 {
	line := g.Line(0)
	out := make([]float64, len(line))
	for i, v := range line {
		out[i] = grid.AbsSq(v)
	}
	return out
}

// newDiffusion spreads a unit-height Gaussian bump under u_t = D∇²u.
func newDiffusion(cfg *config.Config) (Experiment, error) {
	axes := Axes(cfg.Shape, cfg.Extent)
	u, err := grid.New[float64](cfg.Shape...)
	if err != nil {
		return nil, err
	}
	s2 := cfg.Params.Sigma * cfg.Params.Sigma
	fillFrom(u, axes, func(x []float64) float64 {
		return math.Exp(-floats.Dot(x, x) / (2 * s2))
	})

	f, err := rhs.Diffusion(cfg.Params.Diffusivity, cfg.Spacing(0))
	if err != nil {
		return nil, err
	}

	return &run[float64]{
		name:    "diffusion",
		cfg:     cfg,
		initial: u,
		f:       f,
		metrics: standardMetrics[float64](cfg, axes[0]),
		coords:  axes[0],
		profile: realProfile,
	}, nil
}

// newWavepacket evolves a normalised free Gaussian packet with momentum
// Params.Momentum along the first axis.
func newWavepacket(cfg *config.Config) (Experiment, error) {
	axes := Axes(cfg.Shape, cfg.Extent)
	psi, err := grid.New[complex128](cfg.Shape...)
	if err != nil {
		return nil, err
	}
	sigma := cfg.Params.Sigma
	k := cfg.Params.Momentum
	norm := math.Pow(2*math.Pi*sigma*sigma, -float64(len(cfg.Shape))/4)
	fillFrom(psi, axes, func(x []float64) complex128 {
		amp := norm * math.Exp(-floats.Dot(x, x)/(4*sigma*sigma))
		return complex(amp*math.Cos(k*x[0]), amp*math.Sin(k*x[0]))
	})

	f, err := rhs.Schrodinger(rhs.SchrodingerParams{
		Mass:    cfg.Params.Mass,
		Spacing: cfg.Spacing(0),
	})
	if err != nil {
		return nil, err
	}

	return &run[complex128]{
		name:    "wavepacket",
		cfg:     cfg,
		initial: psi,
		f:       f,
		metrics: standardMetrics[complex128](cfg, axes[0]),
		coords:  axes[0],
		profile: densityProfile,
	}, nil
}

// newGPE holds a condensate in an anisotropic harmonic trap until
// Params.ReleaseTime and then lets it expand freely.
func newGPE(cfg *config.Config) (Experiment, error) {
	axes := Axes(cfg.Shape, cfg.Extent)
	gamma := trapWeights(cfg)
	sigma := cfg.Params.Sigma
	rank := float64(len(cfg.Shape))

	v, err := grid.New[float64](cfg.Shape...)
	if err != nil {
		return nil, err
	}
	fillFrom(v, axes, func(x []float64) float64 {
		var e float64
		for a, xa := range x {
			e += gamma[a] * xa * xa
		}
		return e / 2
	})

	psi, err := grid.New[complex128](cfg.Shape...)
	if err != nil {
		return nil, err
	}
	prod := 1.0
	for _, g := range gamma {
		prod *= g
	}
	norm := math.Pow(prod, 0.25) / math.Pow(math.Pi*sigma*sigma, rank/4)
	fillFrom(psi, axes, func(x []float64) complex128 {
		var e float64
		for a, xa := range x {
			e += gamma[a] * xa * xa
		}
		// round off the far tail so it starts as exact zeros
		amp := math.Round(norm*math.Exp(-e/(2*sigma*sigma))*1e12) / 1e12
		return complex(amp, 0)
	})

	pot := rhs.NewPotential(v)
	f, err := rhs.Schrodinger(rhs.SchrodingerParams{
		Mass:      cfg.Params.Mass,
		Spacing:   cfg.Spacing(0),
		Coupling:  cfg.Params.Coupling,
		Cutoff:    cfg.Params.Cutoff,
		Potential: pot,
	})
	if err != nil {
		return nil, err
	}

	return &run[complex128]{
		name:      "gpe",
		cfg:       cfg,
		initial:   psi,
		f:         f,
		metrics:   standardMetrics[complex128](cfg, axes[0]),
		potential: pot,
		coords:    axes[0],
		profile:   densityProfile,
	}, nil
}
