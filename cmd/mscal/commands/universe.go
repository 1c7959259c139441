package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Print the symbol universe",
	Long: `Downloads the exchange listing feeds and prints the resolved
equity and commodity universe.

Example:
  mscal universe
  mscal universe --limit 50`,
	RunE: runUniverse,
}

var universeLimit int

func init() {
	rootCmd.AddCommand(universeCmd)

	universeCmd.Flags().IntVar(&universeLimit, "limit", 0, "equity universe cap (0 = no cap)")
}

func runUniverse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	equities := a.universe.EquitySymbols(ctx, universeLimit)
	commodities := a.universe.CommoditySymbols()

	fmt.Printf("Equities (%d):\n", len(equities))
	for _, s := range equities {
		fmt.Printf("  %s\n", s)
	}

	fmt.Printf("Commodities (%d):\n", len(commodities))
	for _, s := range commodities {
		fmt.Printf("  %s\n", s)
	}

	return nil
}
