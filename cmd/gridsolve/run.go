package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/gridsolve/internal/config"
	"github.com/san-kum/gridsolve/internal/experiment"
	"github.com/san-kum/gridsolve/internal/logger"
	"github.com/san-kum/gridsolve/internal/report"
	"github.com/san-kum/gridsolve/internal/stepper"
	"github.com/san-kum/gridsolve/internal/storage"
)

// resolveConfig layers preset, config file and explicitly set flags, in
// that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Experiment = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Experiment, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Experiment))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) > 0 {
			cfg.Experiment = args[0]
		}
	}

	flags := cmd.Flags()
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("t0") {
		cfg.T0 = t0
	}
	if flags.Changed("record-every") {
		cfg.RecordEvery = recordEvery
	}
	if flags.Changed("validate") {
		cfg.CheckFinite = validate
	}
	return cfg, nil
}

func runExperiment(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	exp, err := experiment.NewRegistry().Build(cfg)
	if err != nil {
		return err
	}

	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return err
		}
		logger.Debug("config written", "path", saveConfig)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger.Info("running", "experiment", cfg.Experiment, "method", cfg.Method,
		"steps", cfg.Steps, "shape", cfg.Shape)
	res, runErr := exp.Run(ctx)
	if res == nil {
		return runErr
	}

	rows := []report.Row{
		{Label: "experiment", Value: res.Experiment},
		{Label: "method", Value: res.Method},
		{Label: "steps", Value: fmt.Sprintf("%d/%d", res.StepsTaken, cfg.Steps)},
		{Label: "evaluations", Value: strconv.Itoa(res.Evaluations)},
		{Label: "samples", Value: strconv.Itoa(len(res.Samples))},
		{Label: "elapsed", Value: res.Elapsed.Round(time.Millisecond).String()},
	}

	if !noSave {
		st := storage.New(dataDir())
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, res, runErr)
		if err != nil {
			return err
		}
		rows = append([]report.Row{{Label: "run id", Value: runID}}, rows...)
	}
	rows = append(rows, report.MetricRows(res.Final)...)

	title := "run complete"
	if runErr != nil {
		title = report.Failed.Render("run stopped")
		if errors.Is(runErr, context.Canceled) {
			title = report.Failed.Render("run interrupted")
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.Summary(title, rows))

	return runErr
}

func benchExperiment(cmd *cobra.Command, args []string) error {
	name := args[0]
	presets := config.ListPresets(name)
	if len(presets) == 0 {
		return fmt.Errorf("no presets for experiment: %s", name)
	}
	pick := preset
	if pick == "" {
		pick = presets[0]
	}
	base := config.GetPreset(name, pick)
	if base == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", pick, presets)
	}

	registry := experiment.NewRegistry()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.Title.Render(fmt.Sprintf("%s/%s %v, %d steps", name, pick, base.Shape, benchSteps)))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tEVALS\tELAPSED\tSTEPS/S\tNORM DRIFT")

	for _, m := range stepper.Methods() {
		cfg := base.Clone()
		cfg.Method = m
		cfg.Steps = benchSteps
		cfg.RecordEvery = max(benchSteps, 1)

		exp, err := registry.Build(cfg)
		if err != nil {
			return err
		}
		res, err := exp.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s: %w", m, err)
		}

		rate := 0.0
		if s := res.Elapsed.Seconds(); s > 0 {
			rate = float64(res.StepsTaken) / s
		}
		fmt.Fprintf(w, "%s\t%d\t%v\t%.1f\t%.3g\n",
			m, res.Evaluations, res.Elapsed.Round(time.Microsecond), rate, res.Final["norm_drift"])
	}
	return w.Flush()
}
