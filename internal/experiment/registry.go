package experiment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/gridsolve/internal/config"
)

var ErrUnknownExperiment = errors.New("experiment: unknown experiment")

// Builder turns a validated configuration into a runnable experiment.
type Builder func(cfg *config.Config) (Experiment, error)

type Registry struct {
	builders map[string]Builder
}

func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]Builder)}

	r.Register("diffusion", newDiffusion)
	r.Register("wavepacket", newWavepacket)
	r.Register("gpe", newGPE)

	return r
}

func (r *Registry) Register(name string, b Builder) { r.builders[name] = b }

// Build validates cfg and constructs the experiment it names.
func (r *Registry) Build(cfg *config.Config) (Experiment, error) {
	fn, ok := r.builders[cfg.Experiment]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExperiment, cfg.Experiment)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return fn(cfg.Clone())
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
