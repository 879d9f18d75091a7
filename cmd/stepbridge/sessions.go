package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/stepbridge/internal/bridge"
	"github.com/san-kum/stepbridge/internal/config"
	"github.com/san-kum/stepbridge/internal/storage"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list recorded sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "no sessions found")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTARTED\tDURATION\tSTEPS\tEPISODES\tDROPPED\tDT\tINTEG")
			for _, s := range sessions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.4fs\t%s\n",
					s.ID,
					s.Started.Format("2006-01-02 15:04:05"),
					s.Ended.Sub(s.Started).Round(time.Millisecond),
					s.Steps,
					s.Episodes,
					s.Dropped,
					s.Dt,
					s.Integrator,
				)
			}
			return w.Flush()
		},
	}
}

func newPlotCmd() *cobra.Command {
	var fields []string
	var episode int
	cmd := &cobra.Command{
		Use:   "plot [session_id]",
		Short: "plot state fields of a recorded session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			records, err := st.LoadRecords(args[0])
			if err != nil {
				return err
			}
			series, err := plotSeries(records, fields, episode)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "session: %s\n", meta.ID)
			fmt.Fprintf(out, "steps: %d  episodes: %d\n\n", meta.Steps, meta.Episodes)
			for i, name := range fields {
				graph := asciigraph.Plot(series[i],
					asciigraph.Height(10),
					asciigraph.Width(80),
					asciigraph.Caption(name+" vs step"),
				)
				fmt.Fprintln(out, graph)
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&fields, "fields", []string{"dy", "vy"}, "state fields to plot")
	cmd.Flags().IntVar(&episode, "episode", 0, "only plot this episode (0 for all)")
	return cmd
}

// plotSeries extracts one series per named state field from the decoded
// records of a session.
func plotSeries(records []storage.Record, fields []string, episode int) ([][]float64, error) {
	idx := make([]int, len(fields))
	for i, name := range fields {
		idx[i] = -1
		for j, known := range bridge.StateFieldNames {
			if known == name {
				idx[i] = j
			}
		}
		if idx[i] < 0 {
			return nil, fmt.Errorf("unknown field %q (known: %v)", name, bridge.StateFieldNames)
		}
	}

	series := make([][]float64, len(fields))
	for _, r := range records {
		if r.Mode == storage.ModeInvalid || (episode > 0 && r.Episode != episode) {
			continue
		}
		for i, j := range idx {
			series[i] = append(series[i], r.State[j])
		}
	}
	if len(series) == 0 || len(series[0]) == 0 {
		return nil, fmt.Errorf("no data to plot")
	}
	return series, nil
}

func newExportJSONCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export-json [session_id]",
		Short: "export a recorded session to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			if output == "" || output == "-" {
				return st.ExportJSON(cmd.OutOrStdout(), args[0])
			}
			if err := st.ExportJSONFile(output, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "exported %s to %s\n", args[0], output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list lander presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMASS\tGRAVITY\tTHRUST\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%.0f\t%.2f\t%.0f\t%s\n",
					name, cfg.Body.Mass, cfg.Body.Gravity, cfg.Lander.ThrustPower, config.Presets[name].Description)
			}
			return w.Flush()
		},
	}
}
