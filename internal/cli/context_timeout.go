package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

// commandContext returns the command's context, bounded by d when d > 0.
func commandContext(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	if d <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, d)
}
