package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// addHelpSubcommandLists makes help for a parent command end with the list
// of its subcommands. It wraps the help function rather than editing Long up
// front, so commands registered by later init functions are included.
func addHelpSubcommandLists(root *cobra.Command) {
	defaultHelp := root.HelpFunc()
	root.SetHelpFunc(func(c *cobra.Command, args []string) {
		if c != root {
			enrichParentLong(c)
		}
		defaultHelp(c, args)
	})
}

// enrichParentLong appends a "Subcommands:" section to a parent command's
// Long text. It is idempotent.
func enrichParentLong(cmd *cobra.Command) {
	if !cmd.HasSubCommands() || strings.Contains(cmd.Long, "\nSubcommands:\n") {
		return
	}

	var sb strings.Builder
	sb.WriteString(cmd.Long)
	sb.WriteString("\n\nSubcommands:\n")
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() {
			fmt.Fprintf(&sb, "  %-10s %s\n", sub.Name(), sub.Short)
		}
	}
	cmd.Long = sb.String()
}
