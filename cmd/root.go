package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"TLC/internal/calc/boundary"
	"TLC/internal/config"
	"TLC/internal/importer"
	"TLC/internal/logging"
	"TLC/internal/plot"
	"TLC/internal/progress"
	"TLC/internal/session"

	"github.com/spf13/cobra"
)

var (
	cfg config.Config

	envFile  string
	outDir   string
	logLevel string
	sheet    string
	rule     string
	noPlots  bool
)

var rootCmd = &cobra.Command{
	Use:   "tlc",
	Short: "Transfer length of prestressed strands from DFOS strain data",
	Long: `Determine the transfer (anchorage) length of prestressed strands in
concrete from distributed fiber-optic strain measurements.

The input is an .xlsx or .csv table: the first row holds the headers,
every column but the last is a strain channel whose header is its
position along the fiber in mm, the last column is time in s.

Subcommands:
  integral  - strain integral over time and its peak
  analyze   - Live End / Dead End at one instant
  sweep     - Live End / Dead End over an (eps, l_ol) grid
  tune      - interactive threshold tuning from stdin`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(envFile); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		flags := cmd.Flags()
		if flags.Changed("out") {
			cfg.OutputDir = outDir
		}
		if flags.Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if flags.Changed("sheet") {
			cfg.Sheet = sheet
		}
		if flags.Changed("rule") {
			cfg.Rule = rule
		}
		if _, err := boundary.ParseRule(cfg.Rule); err != nil {
			return err
		}
		return logging.SetLevel(cfg.LogLevel)
	},
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&envFile, "env", "", "dotenv file (default .env when present)")
	pf.StringVarP(&outDir, "out", "o", config.DefaultOutputDir, "output directory for plots and exports")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "debug, info, warn or error")
	pf.StringVar(&sheet, "sheet", "", "xlsx sheet to read (first sheet when empty)")
	pf.StringVar(&rule, "rule", config.DefaultRule, "scan rule: contiguous or separated")
	pf.BoolVar(&noPlots, "no-plots", false, "skip writing PNG/PDF charts")
}

// openSession loads path into a session wired to the configured plotter
// and progress reporter.
func openSession(path string) (*session.Session, *plot.Renderer, error) {
	s, err := session.Open(path, importer.Options{Sheet: cfg.Sheet})
	if err != nil {
		return nil, nil, err
	}
	s.Rule, _ = boundary.ParseRule(cfg.Rule)
	s.Progress = progress.New("integral", time.Second).Observe

	r := plot.NewRenderer(cfg.OutputDir, baseName(path))
	if !noPlots {
		s.Plotter = r
	}
	return s, r, nil
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func formatEnd(v *float64) string {
	if v == nil {
		return "undefined"
	}
	return fmt.Sprintf("%.1f mm", *v)
}
