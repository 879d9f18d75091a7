package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/stepbridge/internal/analysis"
	"github.com/san-kum/stepbridge/internal/bridge"
	"github.com/san-kum/stepbridge/internal/client"
	"github.com/san-kum/stepbridge/internal/storage"
)

func newAnalyzeCmd() *cobra.Command {
	var xField, yField string
	var episode int
	cmd := &cobra.Command{
		Use:   "analyze [session_id]",
		Short: "oscillation spectrum, phase portrait and touchdowns of a recorded session",
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

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "session: %s (dt=%gs)\n\n", meta.ID, meta.Dt)

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SIGNAL\tRMS\tPEAK-HZ\tPEAK-AMP")
			for _, name := range []string{"wx", "wy", "wz", "vy"} {
				series, err := plotSeries(records, []string{name}, episode)
				if err != nil {
					return err
				}
				spec, err := analysis.PowerSpectrum(series[0], meta.Dt)
				if err != nil {
					fmt.Fprintf(w, "%s\t%.4f\t-\t-\n", name, analysis.RMS(series[0]))
					continue
				}
				freq, amp := spec.Dominant()
				fmt.Fprintf(w, "%s\t%.4f\t%.3f\t%.4f\n", name, analysis.RMS(series[0]), freq, amp)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			series, err := plotSeries(records, []string{xField, yField}, episode)
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, analysis.NewPortrait(xField, yField, series[0], series[1]).ASCII(72, 20))

			touchdowns := analysis.Touchdowns(records, client.DefaultLimits().TouchdownHeight)
			fmt.Fprintf(out, "\ntouchdowns: %d\n", len(touchdowns))
			if len(touchdowns) == 0 {
				return nil
			}
			w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "EPISODE\tSTEP\tTIME\tVY\tOFFSET")
			for _, td := range touchdowns {
				if episode > 0 && td.Episode != episode {
					continue
				}
				fmt.Fprintf(w, "%d\t%d\t%.2fs\t%.2f\t%.2f\n", td.Episode, td.Index, td.Time, td.Vertical, td.Offset)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&xField, "x", bridge.StateFieldNames[bridge.DY], "phase portrait x field")
	cmd.Flags().StringVar(&yField, "y", bridge.StateFieldNames[bridge.VY], "phase portrait y field")
	cmd.Flags().IntVar(&episode, "episode", 0, "only analyze this episode (0 for all)")
	return cmd
}
