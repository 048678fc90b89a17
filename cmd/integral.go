package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCurve bool

var integralCmd = &cobra.Command{
	Use:   "integral <file>",
	Short: "Strain integral over position for every time sample",
	Long: `Integrate strain over position (trapezoidal rule) for every row that
has at least one reading, report the time of the maximum and draw
integral_plot.png / integral_plot.pdf into the output directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, r, err := openSession(args[0])
		if err != nil {
			return err
		}
		c, err := s.Curve()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if listCurve {
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "row\ttime [s]\tintegral")
			for i := range c.Times {
				fmt.Fprintf(tw, "%d\t%.3f\t%.6g\n", c.Rows[i], c.Times[i], c.Integrals[i])
			}
			tw.Flush()
		}
		fmt.Fprintf(out, "peak: t = %.3f s, integral = %.6g (%d samples)\n",
			c.PeakTime, c.Integrals[c.PeakIndex], len(c.Times))
		if s.Plotter != nil && r.IntegralPNG != "" {
			fmt.Fprintf(out, "plot: %s\n", r.IntegralPNG)
		}
		return nil
	},
}

func init() {
	integralCmd.Flags().BoolVar(&listCurve, "list", false, "print every sample of the curve")
	rootCmd.AddCommand(integralCmd)
}
