package cmd

import (
	"fmt"
	"path/filepath"

	"TLC/internal/calc/report"
	"TLC/internal/calc/selector"
	"TLC/internal/export"
	"TLC/internal/logging"
	"TLC/internal/plot"
	"TLC/internal/session"

	"github.com/spf13/cobra"
)

var (
	timeStrategy string
	manualTime   string
	epsFlag      float64
	lolFlag      float64
	exportPath   string
	reportPath   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Live End and Dead End at one instant",
	Long: `Select an analysis instant, bin the strain amplitudes of that row with
width --eps, and scan the dominant bin for the Live End and Dead End with
the minimum spacing --lol.

Time strategies:
  integral  - row nearest to the peak of the strain integral (default)
  first     - first row of the table
  manual    - row nearest to --at`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, r, err := openSession(args[0])
		if err != nil {
			return err
		}
		if err := selectTime(s, timeStrategy, manualTime); err != nil {
			return err
		}
		eps, lol := thresholds(cmd)
		rec, err := s.Recompute(eps, lol)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "t = %.3f s, eps = %g, l_ol = %g mm\n", rec.Time, rec.Eps, rec.LOL)
		fmt.Fprintf(out, "Live End: %s\n", formatEnd(rec.LiveEnd))
		fmt.Fprintf(out, "Dead End: %s\n", formatEnd(rec.DeadEnd))
		return saveOutputs(cmd, s, r, args[0])
	},
}

func init() {
	addAnalysisFlags(analyzeCmd)
	analyzeCmd.Flags().Float64Var(&epsFlag, "eps", 0, "strain bin width Δε_c in ‰ (default from TLC_EPS)")
	analyzeCmd.Flags().Float64Var(&lolFlag, "lol", 0, "minimum spacing l_ol in mm (default from TLC_LOL)")
	rootCmd.AddCommand(analyzeCmd)
}

// addAnalysisFlags registers the flags shared by analyze, sweep and tune.
func addAnalysisFlags(c *cobra.Command) {
	c.Flags().StringVarP(&timeStrategy, "time", "t", string(selector.IntegralPeak), "time strategy: integral, first or manual")
	c.Flags().StringVar(&manualTime, "at", "", "time in s for the manual strategy")
	c.Flags().StringVar(&exportPath, "export", "", "results file, .xlsx or .csv (default <out>/<input>_results.xlsx)")
	c.Flags().StringVar(&reportPath, "report", "", "also write a PDF report to this path")
}

func thresholds(cmd *cobra.Command) (float64, float64) {
	eps, lol := cfg.Eps, cfg.LOL
	if cmd.Flags().Changed("eps") {
		eps = epsFlag
	}
	if cmd.Flags().Changed("lol") {
		lol = lolFlag
	}
	return eps, lol
}

func selectTime(s *session.Session, strategy, manual string) error {
	st, err := selector.ParseStrategy(strategy)
	if err != nil {
		return err
	}
	_, err = s.SelectTime(st, manual)
	return err
}

// saveOutputs exports the ledger and, when asked, the PDF report.
func saveOutputs(cmd *cobra.Command, s *session.Session, r *plot.Renderer, input string) error {
	path := exportPath
	if path == "" {
		path = defaultExport(baseName(input))
	}
	if err := export.Save(path, s.Records(), meta(s)); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	logging.Infof("saved %d results to %s", len(s.Records()), path)
	fmt.Fprintf(cmd.OutOrStdout(), "results: %s\n", path)

	if reportPath == "" {
		return nil
	}
	if err := report.Save(reportPath, reportInput(s, r)); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "report: %s\n", reportPath)
	return nil
}

func defaultExport(base string) string {
	return filepath.Join(cfg.OutputDir, base+"_results.xlsx")
}

func defaultReport(base string) string {
	return filepath.Join(cfg.OutputDir, base+"_report.pdf")
}

func meta(s *session.Session) export.Meta {
	return export.Meta{Source: s.Source, Digest: s.Digest, SessionID: s.ID, Rule: string(s.Rule)}
}

func reportInput(s *session.Session, r *plot.Renderer) report.Input {
	in := report.Input{
		Source:      s.Source,
		Digest:      s.Digest,
		SessionID:   s.ID,
		Rule:        string(s.Rule),
		Records:     s.Records(),
		IntegralPNG: r.IntegralPNG,
		TransferPNG: r.TransferPNG,
	}
	if row, ok := s.Row(); ok {
		t := row.Time
		in.Time = &t
	}
	return in
}
