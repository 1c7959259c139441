package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/magicstocks/calendar/internal/pipeline"
)

// retrainCmd represents the retrain command
var retrainCmd = &cobra.Command{
	Use:   "retrain",
	Short: "Run one training pass and publish the calendar",
	Long: `Fetches price history for the symbol universe, trains the seasonal
classifier and atomically replaces the published calendar artifact.

Example:
  mscal retrain
  mscal retrain --limit 100
  mscal retrain --symbols AAPL,MSFT,GC=F`,
	RunE: runRetrain,
}

var (
	retrainSymbols string
	retrainLimit   int
)

func init() {
	rootCmd.AddCommand(retrainCmd)

	retrainCmd.Flags().StringVar(&retrainSymbols, "symbols", "", "comma-separated symbols (overrides the universe)")
	retrainCmd.Flags().IntVar(&retrainLimit, "limit", 0, "equity universe cap (0 = configured default)")
}

func runRetrain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := pipeline.Options{Limit: retrainLimit}
	if retrainSymbols != "" {
		for _, s := range strings.Split(retrainSymbols, ",") {
			if s = strings.TrimSpace(s); s != "" {
				opts.Symbols = append(opts.Symbols, strings.ToUpper(s))
			}
		}
	}

	cal, err := a.runner.Run(ctx, opts)
	if err != nil {
		return fmt.Errorf("retrain: %w", err)
	}

	fmt.Printf("Calendar published: %s\n", a.store.Path())
	if cal.ModelAccuracy != nil {
		fmt.Printf("Model accuracy: %.4f\n", *cal.ModelAccuracy)
	} else {
		fmt.Println("Model accuracy: n/a (heuristic calendar)")
	}

	return nil
}
