package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/theirongolddev/cachesim/internal/config"
	"github.com/theirongolddev/cachesim/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive wizard that writes the config file",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	path := configPath()

	existing := seedDocument(path)
	vals := tui.NewSetupValues(existing)
	if err := tui.NewSetupForm(&vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("\n  Setup cancelled, nothing saved.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	doc, err := vals.Document()
	if err != nil {
		return err
	}
	if _, err := doc.Resolve(); err != nil {
		return err
	}

	if err := config.Save(path, doc); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", path)
	fmt.Println("  Run `cachesim` to see the projection, or `cachesim setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

// seedDocument returns the config at path when there is a readable one, so
// setup edits it instead of starting over.
func seedDocument(path string) config.Document {
	if !config.Exists(path) {
		return config.Document{}
	}
	doc, err := config.Load(path)
	if err != nil {
		slog.Warn("ignoring unreadable config", "path", path, "err", err)
		return config.Document{}
	}
	fmt.Printf("\n  Editing %s\n", path)
	return doc
}
