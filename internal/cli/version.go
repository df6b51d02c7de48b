package cli

import (
	"github.com/spf13/cobra"

	"github.com/ethpkg/donate/internal/version"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
var (
	versionCheck bool

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version of ethpkg-donate. With --check, also look for a newer release on GitHub.`,
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
)

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
}

type versionOutput struct {
	version.BuildInfo
	Check *version.Check `json:"check,omitempty"`
}

func runVersion(cmd *cobra.Command, _ []string) error {
	cc := newCommandContext()
	out := versionOutput{BuildInfo: version.Current()}

	if versionCheck {
		check, err := cc.Releases.CheckLatest(cmd.Context(), out.Version)
		if err != nil {
			return err
		}
		out.Check = check
	}

	f := cc.Formatter
	if f.IsJSON() {
		return f.Print(out)
	}

	_ = f.Printf("ethpkg-donate %s\n", out.BuildInfo)
	if out.Check == nil {
		return nil
	}
	if out.Check.IsNewer {
		return f.Printf("A newer release is available: %s\n%s\n", out.Check.Latest, out.Check.URL)
	}
	return f.Printf("You are running the latest release (%s).\n", out.Check.Latest)
}
