package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/gridsolve/internal/experiment"
	"github.com/san-kum/gridsolve/internal/export"
	"github.com/san-kum/gridsolve/internal/storage"
)

// maxProfiles bounds how many profile snapshots go into one chart.
const maxProfiles = 6

func newSVGCmd() *cobra.Command {
	var (
		out    string
		metric string
		width  int
		height int
	)
	cmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render a run as an SVG chart",
		Long: `Render profile snapshots of a run along axis 0, or one metric against
time when --metric is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := args[0]
			res, err := storage.New(dataDir()).LoadResult(runID)
			if err != nil {
				return err
			}

			chart := &export.Chart{Width: width, Height: height}
			if metric != "" {
				series := res.Series(metric)
				if series == nil {
					return fmt.Errorf("unknown metric: %s (available: %v)", metric, res.Names)
				}
				chart.Title = fmt.Sprintf("%s: %s vs time", runID, metric)
				chart.Series = []export.Series{{Label: metric, X: res.Times(), Y: series}}
			} else {
				chart.Title = fmt.Sprintf("%s: profile along axis 0", runID)
				chart.Series = profileSeries(res)
			}

			path := out
			if path == "" {
				path = runID + ".svg"
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := chart.Render(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <run_id>.svg)")
	cmd.Flags().StringVar(&metric, "metric", "", "plot this metric against time instead of profiles")
	cmd.Flags().IntVar(&width, "width", 800, "image width")
	cmd.Flags().IntVar(&height, "height", 400, "image height")
	return cmd
}

// profileSeries picks up to maxProfiles evenly spaced snapshots, always
// including the first and the last.
func profileSeries(res *experiment.Result) []export.Series {
	n := len(res.Samples)
	if n == 0 {
		return nil
	}
	picks := min(n, maxProfiles)
	var series []export.Series
	for i := 0; i < picks; i++ {
		idx := 0
		if picks > 1 {
			idx = i * (n - 1) / (picks - 1)
		}
		s := res.Samples[idx]
		if len(s.Profile) != len(res.Coords) {
			continue
		}
		series = append(series, export.Series{
			Label: fmt.Sprintf("t=%.4g", s.Time),
			X:     res.Coords,
			Y:     s.Profile,
		})
	}
	return series
}
