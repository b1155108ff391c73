package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/theirongolddev/cachesim/internal/cli"
	"github.com/theirongolddev/cachesim/internal/config"
	"github.com/theirongolddev/cachesim/internal/model"
	"github.com/theirongolddev/cachesim/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagIterations int
	flagToMax      bool
	flagModel      string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project per-turn costs with and without caching (default command)",
	RunE:  runProject,
}

func init() {
	addProjectFlags(projectCmd)
	rootCmd.AddCommand(projectCmd)
}

// addProjectFlags registers the document overrides on a command. Root and
// project share the same variables.
func addProjectFlags(c *cobra.Command) {
	c.Flags().IntVarP(&flagIterations, "iterations", "n", 0, "Number of turns (turns off --to-max unless also given)")
	c.Flags().BoolVar(&flagToMax, "to-max", false, "Run until the context exceeds maxPromptSize")
	c.Flags().StringVarP(&flagModel, "model", "m", "", "Pricing preset for prices the config leaves out")
}

// overrides are the flag values that replace document keys.
type overrides struct {
	iterations *int
	toMax      *bool
	model      string
}

func overridesFrom(c *cobra.Command) overrides {
	var o overrides
	if c.Flags().Changed("iterations") {
		n := flagIterations
		o.iterations = &n
	}
	if c.Flags().Changed("to-max") {
		b := flagToMax
		o.toMax = &b
	}
	if c.Flags().Changed("model") {
		o.model = flagModel
	}
	return o
}

func (o overrides) apply(doc config.Document) config.Document {
	if o.iterations != nil {
		doc.Iterations = o.iterations
		if o.toMax == nil {
			off := false
			doc.CalculateToMax = &off
		}
	}
	if o.toMax != nil {
		doc.CalculateToMax = o.toMax
	}
	if o.model != "" {
		doc.Model = o.model
	}
	return doc
}

// resolveConfig loads the document, applies flag overrides, and validates.
func resolveConfig(c *cobra.Command) (model.SimulationConfig, error) {
	doc, err := config.Load(configPath())
	if err != nil {
		return model.SimulationConfig{}, err
	}
	return overridesFrom(c).apply(doc).Resolve()
}

func runProject(c *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}

	p, err := pipeline.Project(cfg)
	if err != nil {
		return err
	}
	slog.Debug("projection complete",
		"bound", p.Summary.RequestedBound,
		"turns", p.Summary.Iterations,
		"truncations", p.Summary.Truncations,
		"stopped_at_max", p.Summary.StoppedAtMax,
	)

	// Build everything first so a failure prints nothing.
	var out bytes.Buffer
	if err := writeProjection(&out, cfg, p, flagFormat, flagQuiet); err != nil {
		return err
	}
	_, err = io.Copy(os.Stdout, &out)
	return err
}

func writeProjection(w io.Writer, cfg model.SimulationConfig, p model.Projection, format string, quiet bool) error {
	switch format {
	case formatJSON:
		return cli.WriteJSON(w, p)
	case formatCSV:
		return cli.WriteCSV(w, p)
	}

	if !quiet {
		fmt.Fprintln(w)
		fmt.Fprintln(w, cli.RenderTitle(projectionTitle(cfg)))
		fmt.Fprintln(w)
	}
	fmt.Fprint(w, cli.RenderProjection(p))
	if !quiet {
		fmt.Fprintln(w)
		fmt.Fprint(w, cli.RenderSummary(cfg, p))
	}
	return nil
}

func projectionTitle(cfg model.SimulationConfig) string {
	if cfg.CalculateToMax {
		return "CACHE COST PROJECTION  until " + cli.FormatTokens(cfg.MaxPromptSize) + " tokens"
	}
	return fmt.Sprintf("CACHE COST PROJECTION  %d turns", cfg.Iterations)
}
