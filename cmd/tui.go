package cmd

import (
	"fmt"

	"github.com/theirongolddev/cachesim/internal/config"
	"github.com/theirongolddev/cachesim/internal/pipeline"
	"github.com/theirongolddev/cachesim/internal/tui"
	"github.com/theirongolddev/cachesim/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var flagTheme string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the projection interactively",
	RunE:  runTUI,
}

func init() {
	addProjectFlags(tuiCmd)
	tuiCmd.Flags().StringVar(&flagTheme, "theme", "", "Color theme (overrides the config file)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(c *cobra.Command, _ []string) error {
	doc, err := config.Load(configPath())
	if err != nil {
		return err
	}
	doc = overridesFrom(c).apply(doc)

	cfg, err := doc.Resolve()
	if err != nil {
		return err
	}
	p, err := pipeline.Project(cfg)
	if err != nil {
		return err
	}

	themeName := doc.Theme
	if flagTheme != "" {
		themeName = flagTheme
	}
	theme.SetActive(themeName)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	prog := tea.NewProgram(tui.NewApp(cfg, p), tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
