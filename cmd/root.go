// Package cmd implements the cachesim CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/theirongolddev/cachesim/internal/config"

	"github.com/spf13/cobra"
)

// Output formats accepted by --format.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
)

var (
	flagConfig  string
	flagQuiet   bool
	flagVerbose bool
	flagFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "cachesim",
	Short: "Prompt caching cost projector",
	Long: "Project what a multi-turn conversation costs with and without prompt caching,\n" +
		"turn by turn, including context truncation.",
	RunE:              runProject,
	PersistentPreRunE: preRun,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	os.Exit(run(os.Stderr))
}

func run(stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stderr, "cachesim: internal error: %v\n", r)
			code = 1
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		reportError(stderr, err)
		return 1
	}
	return 0
}

// reportError prints one diagnostic line whose prefix depends on the kind of
// failure.
func reportError(w io.Writer, err error) {
	var cerr *config.ConfigError
	var perr *config.ParseError

	switch {
	case errors.As(err, &cerr):
		fmt.Fprintf(w, "cachesim: invalid configuration: %v\n", cerr)
	case errors.As(err, &perr):
		fmt.Fprintf(w, "cachesim: malformed configuration: %v\n", perr)
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintf(w, "cachesim: configuration not found: %v\n", err)
		fmt.Fprintln(w, "  Run `cachesim setup` to create one, or pass --config.")
	default:
		fmt.Fprintf(w, "cachesim: %v\n", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (default "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Print only the table")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", formatTable, "Output format: table, json, or csv")

	addProjectFlags(rootCmd)
}

func preRun(_ *cobra.Command, _ []string) error {
	setupLogging(os.Stderr, flagVerbose)

	switch flagFormat {
	case formatTable, formatJSON, formatCSV:
		return nil
	default:
		return fmt.Errorf("unknown --format %q (want table, json, or csv)", flagFormat)
	}
}

// setupLogging installs the default slog logger.
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// configPath is the document path in effect: --config, or the default location.
func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.ConfigPath()
}
