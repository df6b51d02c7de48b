package cli

import (
	"github.com/spf13/cobra"

	"github.com/ethpkg/donate/internal/chain"
	"github.com/ethpkg/donate/internal/verify"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var verifyCmd = &cobra.Command{
	Use:   "verify <package>",
	Short: "Show who signed a package",
	Long: `Look up the signatures of a package through the ethpkg verification API.
The first signer is the address a donation would go to.`,
	Example: `  ethpkg-donate verify left-pad
  ethpkg-donate verify npm/@types/node -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(verifyCmd)
}

type verifyOutput struct {
	Package   string `json:"package"`
	Recipient string `json:"recipient,omitempty"`
	*verify.Result
}

func runVerify(cmd *cobra.Command, args []string) error {
	cc := newCommandContext()

	ref, err := verify.ParsePackageRef(args[0])
	if err != nil {
		return err
	}
	result, err := cc.Verifier.Verify(cmd.Context(), ref)
	if err != nil {
		return err
	}

	recipient, recipientErr := result.Recipient()
	if cc.Formatter.IsJSON() {
		if err := cc.Formatter.Print(verifyOutput{Package: ref.String(), Recipient: recipient, Result: result}); err != nil {
			return err
		}
		if recipientErr != nil {
			return reported(recipientErr)
		}
		return nil
	}

	f := cc.Formatter
	_ = f.Printf("Package:  %s\n", ref)
	if result.Version != "" {
		_ = f.Printf("Version:  %s\n", result.Version)
	}
	_ = f.Printf("Valid:    %t\n", result.Valid)
	for i, s := range result.Signers {
		_ = f.Printf("Signer %d: %s\n", i+1, chain.ToChecksumAddress(s.Address))
	}
	if recipientErr != nil {
		return recipientErr
	}
	return f.Printf("Donations go to %s\n", chain.ToChecksumAddress(recipient))
}
