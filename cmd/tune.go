package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"TLC/internal/calc"
	"TLC/internal/calc/report"
	"TLC/internal/export"
	"TLC/internal/plot"
	"TLC/internal/session"

	"github.com/spf13/cobra"
)

const tuneHelp = `commands:
  <eps> <l_ol>           recompute with both thresholds
  eps <v> | lol <v>      change one threshold
  time <strategy> [t]    select the instant (integral, first, manual t)
  list                   show the results so far
  save [path]            export the results (.xlsx or .csv)
  report [path]          write the PDF report
  reset                  clear results and selection
  quit`

var tuneCmd = &cobra.Command{
	Use:   "tune <file>",
	Short: "Interactive threshold tuning",
	Long: `Load a table, select an instant, then read commands from stdin and
recompute the Live End / Dead End after every threshold change. Every
computed combination is kept in the results ledger.

` + tuneHelp,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, r, err := openSession(args[0])
		if err != nil {
			return err
		}
		if err := selectTime(s, timeStrategy, manualTime); err != nil {
			return err
		}
		t := &tuner{s: s, r: r, out: cmd.OutOrStdout(), base: baseName(args[0])}
		t.eps, t.lol = thresholds(cmd)
		t.recompute()
		return t.run(cmd.InOrStdin())
	},
}

func init() {
	addAnalysisFlags(tuneCmd)
	tuneCmd.Flags().Float64Var(&epsFlag, "eps", 0, "initial Δε_c in ‰ (default from TLC_EPS)")
	tuneCmd.Flags().Float64Var(&lolFlag, "lol", 0, "initial l_ol in mm (default from TLC_LOL)")
	rootCmd.AddCommand(tuneCmd)
}

type tuner struct {
	s    *session.Session
	r    *plot.Renderer
	out  io.Writer
	base string

	eps, lol float64
}

func (t *tuner) run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	fmt.Fprint(t.out, "> ")
	for sc.Scan() {
		if quit := t.exec(strings.Fields(sc.Text())); quit {
			return nil
		}
		fmt.Fprint(t.out, "> ")
	}
	fmt.Fprintln(t.out)
	return sc.Err()
}

// exec runs one command line. Errors are printed and never end the loop.
func (t *tuner) exec(f []string) (quit bool) {
	if len(f) == 0 {
		return false
	}
	name := strings.ToLower(f[0])
	switch name {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(t.out, tuneHelp)
	case "eps", "lol":
		if len(f) != 2 {
			t.fail(calc.Errorf(calc.ErrInvalidInput, "usage: %s <value>", f[0]))
			return false
		}
		v, err := parseFloat(f[1])
		if err != nil {
			t.fail(err)
			return false
		}
		eps, lol := t.eps, t.lol
		if name == "eps" {
			eps = v
		} else {
			lol = v
		}
		t.set(eps, lol)
	case "time":
		manual := ""
		if len(f) > 2 {
			manual = f[2]
		}
		strategy := ""
		if len(f) > 1 {
			strategy = f[1]
		}
		if err := selectTime(t.s, strategy, manual); err != nil {
			t.fail(err)
			return false
		}
		t.recompute()
	case "list":
		t.list()
	case "save":
		path := exportPath
		if len(f) > 1 {
			path = f[1]
		}
		if path == "" {
			path = defaultExport(t.base)
		}
		if err := export.Save(path, t.s.Records(), meta(t.s)); err != nil {
			t.fail(err)
			return false
		}
		fmt.Fprintf(t.out, "saved %d results to %s\n", len(t.s.Records()), path)
	case "report":
		path := reportPath
		if len(f) > 1 {
			path = f[1]
		}
		if path == "" {
			path = defaultReport(t.base)
		}
		if err := report.Save(path, reportInput(t.s, t.r)); err != nil {
			t.fail(err)
			return false
		}
		fmt.Fprintf(t.out, "report: %s\n", path)
	case "reset":
		t.s.Reset()
		fmt.Fprintln(t.out, "results and selection cleared, select a time to continue")
	default:
		if len(f) != 2 {
			t.fail(calc.Errorf(calc.ErrInvalidInput, "unknown command %q (try help)", f[0]))
			return false
		}
		eps, err := parseFloat(f[0])
		if err != nil {
			t.fail(err)
			return false
		}
		lol, err := parseFloat(f[1])
		if err != nil {
			t.fail(err)
			return false
		}
		t.set(eps, lol)
	}
	return false
}

// set recomputes with new thresholds and keeps them only on success.
func (t *tuner) set(eps, lol float64) {
	prevEps, prevLOL := t.eps, t.lol
	t.eps, t.lol = eps, lol
	if !t.recompute() {
		t.eps, t.lol = prevEps, prevLOL
	}
}

func (t *tuner) recompute() bool {
	rec, err := t.s.Recompute(t.eps, t.lol)
	if err != nil {
		t.fail(err)
		return false
	}
	fmt.Fprintf(t.out, "t = %.3f s, eps = %g, l_ol = %g: Live End %s, Dead End %s\n",
		rec.Time, rec.Eps, rec.LOL, formatEnd(rec.LiveEnd), formatEnd(rec.DeadEnd))
	return true
}

func (t *tuner) list() {
	recs := t.s.Records()
	if len(recs) == 0 {
		fmt.Fprintln(t.out, "no results")
		return
	}
	tw := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "time [s]\teps\tl_ol [mm]\tLive End\tDead End")
	for _, r := range recs {
		fmt.Fprintf(tw, "%.3f\t%g\t%g\t%s\t%s\n", r.Time, r.Eps, r.LOL, formatEnd(r.LiveEnd), formatEnd(r.DeadEnd))
	}
	tw.Flush()
}

func (t *tuner) fail(err error) {
	fmt.Fprintf(t.out, "error: %v\n", err)
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, calc.Errorf(calc.ErrInvalidInput, "%q is not a number", s)
	}
	return v, nil
}
