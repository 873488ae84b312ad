package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/gridsolve/internal/logger"
)

const envPrefix = "GRIDSOLVE"

var (
	// run flags
	preset      string
	configFile  string
	method      string
	dt          float64
	steps       int
	t0          float64
	recordEvery int
	validate    bool
	saveConfig  string
	noSave      bool

	// bench flags
	benchSteps int

	// plot / analyze / export flags
	plotMetric    string
	analyzeMetric string
	outPath       string

	// gradients flags
	shape []int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gridsolve",
		Short: "finite-difference field solver",
		Long: `gridsolve evolves real and complex fields on uniform grids with
Euler or RK4 time stepping and zero-border finite-difference gradients.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Configure(viper.GetString("log-level"), viper.GetString("log-file"))
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Close()
		},
	}

	rootCmd.PersistentFlags().String("data", ".gridsolve", "data directory")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to file instead of stderr")

	for _, name := range []string{"data", "log-level", "log-file"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "error binding %s flag: %v\n", name, err)
			os.Exit(1)
		}
	}
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	runCmd := &cobra.Command{
		Use:   "run [experiment]",
		Short: "run an experiment",
		Long: `Run an experiment and store its samples. Settings are layered:
preset, then config file, then flags.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExperiment,
	}
	runCmd.Flags().StringVar(&preset, "preset", "", "start from a named preset")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&method, "method", "rk4", "integration method (euler|rk4)")
	runCmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep")
	runCmd.Flags().IntVar(&steps, "steps", 1000, "number of steps")
	runCmd.Flags().Float64Var(&t0, "t0", 0, "start time")
	runCmd.Flags().IntVar(&recordEvery, "record-every", 10, "record a sample every n steps")
	runCmd.Flags().BoolVar(&validate, "validate", false, "stop on NaN or Inf")
	runCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the effective config to this path")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot metric series and the last profile",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotMetric, "metric", "", "plot only this metric")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectral analysis of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&analyzeMetric, "metric", "width", "metric whose time series is analysed")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [experiment]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [experiment]",
		Short: "compare step throughput of the integration methods",
		Args:  cobra.ExactArgs(1),
		RunE:  benchExperiment,
	}
	benchCmd.Flags().StringVar(&preset, "preset", "", "preset to benchmark (default: first)")
	benchCmd.Flags().IntVar(&benchSteps, "steps", 20, "steps per method")

	gradientsCmd := &cobra.Command{
		Use:   "gradients",
		Short: "show the zero-border gradient rule for a shape",
		Args:  cobra.NoArgs,
		RunE:  showGradients,
	}
	gradientsCmd.Flags().IntSliceVar(&shape, "shape", []int{5, 5}, "grid shape")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, exportCmd, presetsCmd, benchCmd, gradientsCmd,
		newSweepCmd(), newSVGCmd())
	return rootCmd
}

func dataDir() string {
	return viper.GetString("data")
}
