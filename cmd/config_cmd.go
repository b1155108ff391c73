package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/cachesim/internal/cli"
	"github.com/theirongolddev/cachesim/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved simulation parameters",
	RunE:  runConfig,
}

func init() {
	addProjectFlags(configCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(c *cobra.Command, _ []string) error {
	path := configPath()
	doc, err := config.Load(path)
	if err != nil {
		return err
	}
	doc = overridesFrom(c).apply(doc)

	cfg, err := doc.Resolve()
	if err != nil {
		return err
	}

	source := "config file"
	if doc.Model != "" {
		source = "config file, preset " + doc.Model
	}

	fmt.Printf("  Config file: %s\n", path)
	fmt.Printf("  Source:      %s\n", source)
	fmt.Println()

	mode := "fixed turn count"
	if cfg.CalculateToMax {
		mode = "until context is full"
	}
	iterations := strconv.Itoa(cfg.Iterations)
	if cfg.CalculateToMax {
		iterations = "n/a"
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Parameter", "Value"},
		Rows: [][]string{
			{"promptSize", cli.FormatNumber(cfg.PromptSize)},
			{"userMessageSize", cli.FormatNumber(cfg.UserMessageSize)},
			{"modelResponseSize", cli.FormatNumber(cfg.ModelResponseSize)},
			{"maxPromptSize", cli.FormatNumber(cfg.MaxPromptSize)},
			{"trimmedSize", cli.FormatNumber(cfg.TrimmedSize)},
			{"---"},
			{"sendingCost", fmt.Sprintf("$%g / MTok", cfg.SendingCost)},
			{"modelCost", fmt.Sprintf("$%g / MTok", cfg.ModelCost)},
			{"cacheMissMultiplier", fmt.Sprintf("x%g", cfg.CacheMissMultiplier)},
			{"cacheHitMultiplier", fmt.Sprintf("x%g", cfg.CacheHitMultiplier)},
			{"---"},
			{"mode", mode},
			{"iterations", iterations},
		},
	}))

	if !flagQuiet {
		fmt.Println()
		fmt.Println("  Run `cachesim setup` to reconfigure.")
	}
	return nil
}
