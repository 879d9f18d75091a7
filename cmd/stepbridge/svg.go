package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/stepbridge/internal/analysis"
	"github.com/san-kum/stepbridge/internal/bridge"
	"github.com/san-kum/stepbridge/internal/export"
	"github.com/san-kum/stepbridge/internal/storage"
	"github.com/san-kum/stepbridge/internal/viz"
)

func newExportSVGCmd() *cobra.Command {
	var (
		output  string
		episode int
		xField  string
		yField  string
		scene   bool
	)
	cmd := &cobra.Command{
		Use:   "export-svg [session_id]",
		Short: "render a recorded flight path or its final frame to SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := storage.New(dataDir).LoadRecords(args[0])
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			if scene {
				last, ok := lastRecord(records, episode)
				if !ok {
					return fmt.Errorf("no data to render")
				}
				c := viz.NewCanvas(60, 20)
				viz.DrawScene(c, last.State, throttleOf(last))
				return export.Canvas(w, c, 6, "#00ff00")
			}

			series, err := plotSeries(records, []string{xField, yField}, episode)
			if err != nil {
				return err
			}
			pts := make([]analysis.Point, len(series[0]))
			for i := range pts {
				pts[i] = analysis.Point{X: series[0][i], Y: series[1][i]}
			}
			return export.Trajectory(w, pts, 800, 600, "#00ff00")
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&episode, "episode", 0, "only render this episode (0 for all)")
	cmd.Flags().StringVar(&xField, "x", "dx", "horizontal state field")
	cmd.Flags().StringVar(&yField, "y", "dy", "vertical state field")
	cmd.Flags().BoolVar(&scene, "scene", false, "draw the lander at its last recorded state instead of the path")
	return cmd
}

func lastRecord(records []storage.Record, episode int) (storage.Record, bool) {
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if r.Mode == storage.ModeInvalid || (episode > 0 && r.Episode != episode) {
			continue
		}
		return r, true
	}
	return storage.Record{}, false
}

// throttleOf is the thrust of an apply record, zero for anything else.
func throttleOf(r storage.Record) float64 {
	if r.Mode != bridge.ModeApply.String() || len(r.Command) < 3 {
		return 0
	}
	return r.Command[2]
}
