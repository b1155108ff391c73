package cmd

import (
	"fmt"

	"github.com/theirongolddev/cachesim/internal/cli"
	"github.com/theirongolddev/cachesim/internal/config"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List pricing presets usable with --model",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(_ *cobra.Command, _ []string) error {
	names := config.PresetNames()

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		p, _ := config.LookupPricing(name)
		rows = append(rows, []string{
			name,
			fmt.Sprintf("$%.2f", p.InputPerMTok),
			fmt.Sprintf("$%.2f", p.OutputPerMTok),
			fmt.Sprintf("x%.2f", p.CacheMissMultiplier5m()),
			fmt.Sprintf("x%.2f", p.CacheMissMultiplier1h()),
			fmt.Sprintf("x%.2f", p.CacheHitMultiplier()),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("PRICING PRESETS  per million tokens"))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Model", "Input", "Output", "Miss (5m)", "Miss (1h)", "Hit"},
		Rows:    rows,
	}))

	return nil
}
