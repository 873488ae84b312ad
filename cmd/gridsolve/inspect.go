package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/gridsolve/internal/analysis"
	"github.com/san-kum/gridsolve/internal/config"
	"github.com/san-kum/gridsolve/internal/gradient"
	"github.com/san-kum/gridsolve/internal/grid"
	"github.com/san-kum/gridsolve/internal/logger"
	"github.com/san-kum/gridsolve/internal/report"
	"github.com/san-kum/gridsolve/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir())
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEXPERIMENT\tTIME\tMETHOD\tDT\tSTEPS\tSHAPE\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "stopped"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g\t%d/%d\t%v\t%s\n",
			run.ID,
			run.Experiment,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Method,
			run.Dt,
			run.StepsTaken,
			run.Steps,
			run.Shape,
			status,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir())
	res, err := st.LoadResult(runID)
	if err != nil {
		return err
	}
	if len(res.Samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.Title.Render("run: "+runID))
	fmt.Fprintf(out, "experiment: %s\nsamples: %d\n\n", res.Experiment, len(res.Samples))

	names := res.Names
	if plotMetric != "" {
		if res.Series(plotMetric) == nil {
			return fmt.Errorf("unknown metric: %s (available: %v)", plotMetric, res.Names)
		}
		names = []string{plotMetric}
	}

	for _, name := range names {
		plotSeries(out, res.Series(name), fmt.Sprintf("%s vs time", name))
	}

	last := res.Last()
	plotSeries(out, last.Profile, fmt.Sprintf("profile along axis 0 at t=%.4g", last.Time))
	return nil
}

func plotSeries(w io.Writer, data []float64, caption string) {
	if len(data) < 2 {
		return
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Fprintln(w, graph)
	fmt.Fprintln(w)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir())
	res, err := st.LoadResult(runID)
	if err != nil {
		return err
	}
	series := res.Series(analyzeMetric)
	if series == nil {
		return fmt.Errorf("unknown metric: %s (available: %v)", analyzeMetric, res.Names)
	}

	// A final-step sample off the record grid would skew the spectrum.
	n, sampleDt := analysis.UniformPrefix(res.Times())
	if n < 2 {
		return fmt.Errorf("need at least 2 evenly spaced samples, run has %d", n)
	}
	if n < len(series) {
		logger.Debug("dropping unevenly spaced samples", "kept", n, "dropped", len(series)-n)
		series = series[:n]
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.Title.Render("analysis: "+runID))

	freq, mag := analysis.DominantFrequency(series, sampleDt)
	rows := []report.Row{
		{Label: analyzeMetric + " dominant frequency", Value: fmt.Sprintf("%.4g", freq)},
		{Label: analyzeMetric + " amplitude", Value: fmt.Sprintf("%.4g", mag)},
	}
	if freq > 0 {
		rows = append(rows, report.Row{Label: analyzeMetric + " period", Value: fmt.Sprintf("%.4g", 1/freq)})
	}

	profile := res.Last().Profile
	if len(res.Coords) >= 2 && len(profile) == len(res.Coords) {
		dx := res.Coords[1] - res.Coords[0]
		kFreq, _ := analysis.DominantFrequency(profile, dx)
		rows = append(rows, report.Row{Label: "profile dominant frequency", Value: fmt.Sprintf("%.4g", kFreq)})

		ps := analysis.PowerSpectrum(profile)
		if len(ps) > 1 {
			fmt.Fprintln(out)
			plotSeries(out, ps, "profile power spectrum")
		}
	}

	rows = append(rows, report.Row{Label: "samples analysed", Value: fmt.Sprintf("%d/%d", n, len(res.Samples))})
	fmt.Fprintln(out, report.Summary("spectrum", rows))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir())

	if outPath == "" {
		return st.Export(cmd.OutOrStdout(), args[0])
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := st.Export(f, args[0]); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", outPath)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	experiments := config.Experiments()
	if len(args) > 0 {
		experiments = args[:1]
	}

	for _, name := range experiments {
		presets := config.ListPresets(name)
		if len(presets) == 0 {
			fmt.Fprintf(out, "no presets for experiment: %s\n", name)
			continue
		}
		fmt.Fprintf(out, "presets for %s:\n", name)
		for _, p := range presets {
			cfg := config.GetPreset(name, p)
			fmt.Fprintf(out, "  %-8s %s %v dt=%g steps=%d\n", p, cfg.Method, cfg.Shape, cfg.Dt, cfg.Steps)
		}
	}
	return nil
}

// showGradients prints the border mask for a shape and the first-order
// gradient of Σ i_k² along the centre line of axis 0.
func showGradients(cmd *cobra.Command, args []string) error {
	if err := gradient.Validate(shape); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	mask := gradient.BorderMask(shape)
	border := 0
	for _, b := range mask {
		if b {
			border++
		}
	}
	fmt.Fprintln(out, report.Summary(fmt.Sprintf("shape %v", shape), []report.Row{
		{Label: "elements", Value: fmt.Sprint(len(mask))},
		{Label: "border", Value: fmt.Sprint(border)},
		{Label: "interior", Value: fmt.Sprint(len(mask) - border)},
	}))

	if len(shape) == 2 {
		fmt.Fprintln(out, report.Mask(mask, shape[0], shape[1]))
	}

	g, err := grid.New[float64](shape...)
	if err != nil {
		return err
	}
	idx := make([]int, len(shape))
	for off := range g.Data() {
		idx = g.Coords(off, idx)
		var v float64
		for _, i := range idx {
			v += float64(i * i)
		}
		g.Data()[off] = v
	}

	first, second, err := gradient.Compute(g)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nf         %v\n", g.Line(0))
	fmt.Fprintf(out, "df/dx0    %v\n", first[0].Line(0))
	fmt.Fprintf(out, "d2f/dx0^2 %v\n", second[0][0].Line(0))
	return nil
}
