package cmd

import (
	"fmt"
	"text/tabwriter"

	"TLC/internal/calc/batch"
	"TLC/internal/calc/boundary"

	"github.com/spf13/cobra"
)

var (
	gridFile string
	epsList  []float64
	lolList  []float64
)

var sweepCmd = &cobra.Command{
	Use:   "sweep <file>",
	Short: "Live End and Dead End over a grid of thresholds",
	Long: `Run the boundary detection at one instant for every combination of
eps and l_ol and summarise the spread of the results.

The grid comes from --eps-list / --lol-list or a YAML file:

  eps: [0.02, 0.023, 0.025]
  l_ol: [15, 17, 20]
  rule: contiguous`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in batch.Input
		if gridFile != "" {
			var err error
			if in, err = batch.LoadGrid(gridFile); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("eps-list") {
			in.Eps = epsList
		}
		if cmd.Flags().Changed("lol-list") {
			in.LOL = lolList
		}

		s, r, err := openSession(args[0])
		if err != nil {
			return err
		}
		if in.Rule != "" {
			if s.Rule, err = boundary.ParseRule(string(in.Rule)); err != nil {
				return err
			}
		}
		if err := selectTime(s, timeStrategy, manualTime); err != nil {
			return err
		}
		res, err := s.Sweep(in)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "eps\tl_ol [mm]\tLive End\tDead End")
		for _, rec := range res.Records {
			fmt.Fprintf(tw, "%g\t%g\t%s\t%s\n", rec.Eps, rec.LOL, formatEnd(rec.LiveEnd), formatEnd(rec.DeadEnd))
		}
		tw.Flush()
		printStats(cmd, "Live End", res.Summary.LiveEnd)
		printStats(cmd, "Dead End", res.Summary.DeadEnd)
		return saveOutputs(cmd, s, r, args[0])
	},
}

func printStats(cmd *cobra.Command, name string, st batch.Stats) {
	out := cmd.OutOrStdout()
	if st.Count == 0 {
		fmt.Fprintf(out, "%s: undefined for every pair\n", name)
		return
	}
	fmt.Fprintf(out, "%s: n=%d mean=%.1f median=%.1f sd=%.2f min=%.1f max=%.1f mm\n",
		name, st.Count, st.Mean, st.Median, st.StdDev, st.Min, st.Max)
}

func init() {
	addAnalysisFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&gridFile, "grid", "", "YAML grid file")
	sweepCmd.Flags().Float64SliceVar(&epsList, "eps-list", nil, "eps values, comma separated")
	sweepCmd.Flags().Float64SliceVar(&lolList, "lol-list", nil, "l_ol values in mm, comma separated")
	rootCmd.AddCommand(sweepCmd)
}
