package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ethpkg/donate/internal/chain"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List the networks donations can be sent on",
	Args:  cobra.NoArgs,
	RunE:  runNetworks,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(networksCmd)
}

type networkOutput struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Display  string   `json:"display"`
	Aliases  []string `json:"aliases,omitempty"`
	Selected bool     `json:"selected"`
}

func runNetworks(cmd *cobra.Command, _ []string) error {
	selected, err := chain.ParseNetwork(cfg.Network)
	if err != nil {
		return err
	}

	list := chain.Networks()
	rows := make([]networkOutput, 0, len(list))
	for _, n := range list {
		rows = append(rows, networkOutput{
			ID:       string(n.ID),
			Name:     n.Name,
			Display:  n.String(),
			Aliases:  n.Aliases,
			Selected: n.ID == selected.ID,
		})
	}

	if formatter.IsJSON() {
		return formatter.Print(rows)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "\tNAME\tID\tDESCRIPTION")
	for _, r := range rows {
		mark := ""
		if r.Selected {
			mark = "*"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, r.Name, r.ID, r.Display)
	}
	return tw.Flush()
}
