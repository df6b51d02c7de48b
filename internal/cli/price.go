package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var priceCmd = &cobra.Command{
	Use:   "price [pair]",
	Short: "Show the current ETH price used for donations",
	Long: `Show the current buy price of a currency pair, ETH-USD by default.
This is the price donations are converted at.`,
	Example: `  ethpkg-donate price
  ethpkg-donate price ETH-EUR -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPrice,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(priceCmd)
}

func runPrice(cmd *cobra.Command, args []string) error {
	cc := newCommandContext()

	pair := cc.Config.APIs.QuotePair
	if len(args) == 1 {
		pair = strings.ToUpper(strings.TrimSpace(args[0]))
	}

	q, err := cc.Prices.BuyPrice(cmd.Context(), pair)
	if err != nil {
		return err
	}

	if cc.Formatter.IsJSON() {
		return cc.Formatter.Print(q)
	}
	return cc.Formatter.Printf("1 %s = %s %s\n", q.Base, q.Amount.StringFixed(2), q.Currency)
}
