package experiment

import (
	"context"
	"errors"
	"time"

	"github.com/san-kum/gridsolve/internal/config"
	"github.com/san-kum/gridsolve/internal/grid"
	"github.com/san-kum/gridsolve/internal/logger"
	"github.com/san-kum/gridsolve/internal/metrics"
	"github.com/san-kum/gridsolve/internal/rhs"
	"github.com/san-kum/gridsolve/internal/stepper"
)

// progressUpdates is how many progress lines a run logs.
const progressUpdates = 10

// Sample is one recorded point of a run. Values line up with Result.Names.
type Sample struct {
	Step    int
	Time    float64
	Values  []float64
	Profile []float64
}

type Result struct {
	Experiment  string
	Method      string
	Names       []string
	Coords      []float64
	Samples     []Sample
	StepsTaken  int
	Evaluations int
	Final       map[string]float64
	Elapsed     time.Duration
}

// Last returns the most recent sample, or nil when nothing was recorded.
func (r *Result) Last() *Sample {
	if len(r.Samples) == 0 {
		return nil
	}
	return &r.Samples[len(r.Samples)-1]
}

// Series returns the recorded values of one metric, in sample order.
func (r *Result) Series(name string) []float64 {
	col := -1
	for i, n := range r.Names {
		if n == name {
			col = i
		}
	}
	if col < 0 {
		return nil
	}
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Values[col]
	}
	return out
}

func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Time
	}
	return out
}

type Experiment interface {
	Name() string
	Config() *config.Config
	Run(ctx context.Context) (*Result, error)
}

// run is the common driver behind every registered experiment.
type run[T grid.Scalar] struct {
	name      string
	cfg       *config.Config
	initial   *grid.Grid[T]
	f         stepper.Func[T]
	metrics   *metrics.Set[T]
	potential *rhs.Potential
	coords    []float64
	profile   func(*grid.Grid[T]) []float64
}

func (r *run[T]) Name() string           { return r.name }
func (r *run[T]) Config() *config.Config { return r.cfg }

// Run advances the field cfg.Steps times, recording a sample every
// cfg.RecordEvery steps and at the end. On failure the samples collected so
// far are returned with the error.
func (r *run[T]) Run(ctx context.Context) (*Result, error) {
	method, err := r.cfg.StepMethod()
	if err != nil {
		return nil, err
	}

	log := logger.NewComponent("experiment")
	result := &Result{
		Experiment: r.name,
		Method:     method.String(),
		Names:      r.metrics.Names(),
		Coords:     r.coords,
	}

	var opts []stepper.Option
	if r.cfg.CheckFinite {
		opts = append(opts, stepper.WithFiniteCheck())
	}
	st := stepper.New(r.initial, opts...)

	r.metrics.Reset()
	r.record(result, 0, r.cfg.T0, r.initial)
	if r.releaseIfDue(r.cfg.T0) {
		log.Info("potential released", "t", r.cfg.T0)
	}

	n := r.cfg.Steps
	every := max(n/progressUpdates, 1)
	start := time.Now()

	st.AddObserver(stepper.ObserverFunc[T](func(step int, t float64, data *grid.Grid[T]) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		done := step + 1
		if done%r.cfg.RecordEvery == 0 || done == n {
			r.record(result, done, t, data)
		}
		if r.releaseIfDue(t) {
			log.Info("potential released", "step", done, "t", t)
		}

		if done%every == 0 && done < n {
			elapsed := time.Since(start)
			eta := time.Duration(float64(elapsed) / float64(done) * float64(n-done))
			log.Info("progress", "step", done, "t", t,
				"pct", 100*done/n, "eta", eta.Round(time.Millisecond))
		}
		return nil
	}))

	log.Debug("starting run", "experiment", r.name, "method", method, "steps", n, "shape", r.initial.Shape())
	err = st.Solve(method, r.f, n, r.cfg.Dt, r.cfg.T0)

	result.StepsTaken = st.Steps()
	result.Evaluations = st.Evaluations()
	result.Elapsed = time.Since(start)
	result.Final = r.metrics.Snapshot()

	if err != nil {
		var stepErr *stepper.StepError
		if errors.As(err, &stepErr) {
			log.Error("run stopped", "step", stepErr.Step, "t", stepErr.Time, "err", stepErr.Err)
		}
		return result, err
	}

	log.Info("run complete", "experiment", r.name, "steps", result.StepsTaken,
		"elapsed", result.Elapsed.Round(time.Millisecond))
	return result, nil
}

func (r *run[T]) record(result *Result, step int, t float64, data *grid.Grid[T]) {
	r.metrics.Observe(t, data)
	result.Samples = append(result.Samples, Sample{
		Step:    step,
		Time:    t,
		Values:  r.metrics.Values(),
		Profile: r.profile(data),
	})
}

// releaseIfDue switches the potential off once t reaches the release time and
// reports whether it did so on this call.
func (r *run[T]) releaseIfDue(t float64) bool {
	rt := r.cfg.Params.ReleaseTime
	if r.potential == nil || rt == nil || !r.potential.Enabled() || t < *rt {
		return false
	}
	r.potential.Disable()
	return true
}
