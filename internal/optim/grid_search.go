package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/gridsolve/internal/experiment"
	"github.com/san-kum/gridsolve/internal/logger"
)

var ErrNoResults = errors.New("optim: no sweep point completed")

// Param is one swept setting and the values it takes.
type Param struct {
	Name   string
	Values []float64
}

// ParseParam reads "name=v1,v2,...".
func ParseParam(s string) (Param, error) {
	name, list, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || list == "" {
		return Param{}, fmt.Errorf("optim: parameter %q: want name=v1,v2,...", s)
	}
	p := Param{Name: name}
	for _, field := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return Param{}, fmt.Errorf("optim: parameter %q: %w", s, err)
		}
		p.Values = append(p.Values, v)
	}
	return p, nil
}

// Point is one evaluated combination.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	params  []Param
	workers int
}

// NewGridSearch sweeps the cartesian product of params. workers < 1 means
// one per CPU.
func NewGridSearch(params []Param, workers int) *GridSearch {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &GridSearch{params: params, workers: workers}
}

// Points enumerates every combination, last parameter varying fastest.
func (g *GridSearch) Points() []map[string]float64 {
	points := []map[string]float64{{}}
	for _, p := range g.params {
		next := make([]map[string]float64, 0, len(points)*len(p.Values))
		for _, base := range points {
			for _, v := range p.Values {
				pt := make(map[string]float64, len(base)+1)
				for k, bv := range base {
					pt[k] = bv
				}
				pt[p.Name] = v
				next = append(next, pt)
			}
		}
		points = next
	}
	return points
}

// Search runs one experiment per point and minimises the final value of
// metric. Non-finite values rank last but still count as completed. Failed points are kept in the returned list with their error; the
// search only fails as a whole when ctx ends or nothing completed.
func (g *GridSearch) Search(
	ctx context.Context,
	build func(params map[string]float64) (experiment.Experiment, error),
	metric string,
) (Point, []Point, error) {
	combos := g.Points()
	results := make([]Point, len(combos))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for i, params := range combos {
		eg.Go(func() error {
			results[i] = evaluate(ctx, build, params, metric)
			return ctx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return Point{}, results, err
	}

	ranked := Sorted(results)
	if len(ranked) == 0 || ranked[0].Err != nil {
		return Point{}, results, ErrNoResults
	}
	return ranked[0], results, nil
}

// less orders metric values ascending with NaN last.
func less(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return !math.IsNaN(a) && math.IsNaN(b)
	}
	return a < b
}

func evaluate(
	ctx context.Context,
	build func(map[string]float64) (experiment.Experiment, error),
	params map[string]float64,
	metric string,
) Point {
	pt := Point{Params: params}

	exp, err := build(params)
	if err != nil {
		pt.Err = err
		return pt
	}
	res, err := exp.Run(ctx)
	if err != nil {
		pt.Err = err
		return pt
	}
	v, ok := res.Final[metric]
	if !ok {
		pt.Err = fmt.Errorf("optim: run has no metric %q", metric)
		return pt
	}
	pt.Value = v
	logger.Debug("sweep point", "params", params, metric, v)
	return pt
}

// Sorted returns the points ordered by value: finite values, then +Inf, then
// NaN, then failures.
func Sorted(points []Point) []Point {
	out := append([]Point(nil), points...)
	sort.SliceStable(out, func(i, j int) bool {
		if (out[i].Err == nil) != (out[j].Err == nil) {
			return out[i].Err == nil
		}
		return less(out[i].Value, out[j].Value)
	})
	return out
}
