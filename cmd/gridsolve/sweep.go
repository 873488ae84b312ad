package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/gridsolve/internal/config"
	"github.com/san-kum/gridsolve/internal/experiment"
	"github.com/san-kum/gridsolve/internal/optim"
	"github.com/san-kum/gridsolve/internal/report"
)

func newSweepCmd() *cobra.Command {
	var (
		params  []string
		metric  string
		nsteps  int
		workers int
		base    string
	)
	cmd := &cobra.Command{
		Use:   "sweep [experiment]",
		Short: "run a preset over a grid of parameter values",
		Long: `Run every combination of the given parameter values and rank them by the
final value of a metric, lowest first. Parameters: ` + strings.Join(config.ParamNames(), ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(params) == 0 {
				return fmt.Errorf("at least one --param is required")
			}
			var swept []optim.Param
			for _, s := range params {
				p, err := optim.ParseParam(s)
				if err != nil {
					return err
				}
				swept = append(swept, p)
			}

			name := args[0]
			pick := base
			if pick == "" {
				presets := config.ListPresets(name)
				if len(presets) == 0 {
					return fmt.Errorf("no presets for experiment: %s", name)
				}
				pick = presets[0]
			}
			cfg := config.GetPreset(name, pick)
			if cfg == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", pick, config.ListPresets(name))
			}
			if cmd.Flags().Changed("steps") {
				cfg.Steps = nsteps
			}

			registry := experiment.NewRegistry()
			build := func(values map[string]float64) (experiment.Experiment, error) {
				c := cfg.Clone()
				for k, v := range values {
					if err := c.SetParam(k, v); err != nil {
						return nil, err
					}
				}
				return registry.Build(c)
			}

			gs := optim.NewGridSearch(swept, workers)
			best, all, err := gs.Search(cmd.Context(), build, metric)
			if err != nil && all == nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.Title.Render(fmt.Sprintf("%s/%s sweep, %d points, minimising %s", name, pick, len(all), metric)))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "PARAMS\t%s\n", strings.ToUpper(metric))
			for _, p := range optim.Sorted(all) {
				if p.Err != nil {
					fmt.Fprintf(w, "%s\t%s\n", formatParams(p.Params), report.Failed.Render(p.Err.Error()))
					continue
				}
				fmt.Fprintf(w, "%s\t%.6g\n", formatParams(p.Params), p.Value)
			}
			if ferr := w.Flush(); ferr != nil {
				return ferr
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, report.Summary("best", []report.Row{
				{Label: "params", Value: formatParams(best.Params)},
				{Label: metric, Value: fmt.Sprintf("%.6g", best.Value)},
			}))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&params, "param", nil, "swept parameter, name=v1,v2,... (repeatable)")
	cmd.Flags().StringVar(&metric, "metric", "width", "metric to minimise")
	cmd.Flags().IntVar(&nsteps, "steps", 100, "steps per run")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (default: one per CPU)")
	cmd.Flags().StringVar(&base, "preset", "", "base preset (default: first)")
	return cmd
}

func formatParams(p map[string]float64) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, p[k])
	}
	return strings.Join(parts, " ")
}
