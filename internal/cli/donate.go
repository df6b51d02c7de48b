package cli

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ethpkg/donate/internal/chain"
	"github.com/ethpkg/donate/internal/donation"
	"github.com/ethpkg/donate/internal/output"
	"github.com/ethpkg/donate/internal/quote"
	"github.com/ethpkg/donate/internal/verify"
	donateerr "github.com/ethpkg/donate/pkg/errors"
)

// ErrDonationInFlight is returned when a donation is started while another
// one in the same process has not finished.
//
//nolint:gochecknoglobals // Sentinel error
var ErrDonationInFlight = &donateerr.DonateError{
	Code:     "DONATION_IN_FLIGHT",
	Message:  "a donation is already in progress",
	ExitCode: donateerr.ExitGeneral,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
var (
	donationInFlight atomic.Bool

	donateAmount string
	donateTo     string
	donatePrice  string
	donateQR     bool
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var donateCmd = &cobra.Command{
	Use:   "donate [package]",
	Short: "Donate to the signer of a package",
	Long: `Donate a USD amount, paid in ETH, to the address that signed a package.

The package is looked up through the ethpkg verification API and the first
signer receives the donation. The amount must be one of the configured
donation amounts. Your wallet asks you to confirm the transaction; nothing
is signed by this tool.

With --qr no wallet is contacted: an EIP-681 payment request is printed
instead, as a QR code when the output is a terminal.`,
	Example: `  ethpkg-donate donate npm/left-pad
  ethpkg-donate donate @types/node --amount 5
  ethpkg-donate donate --to 0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed --price 1500
  ethpkg-donate donate npm/left-pad --qr`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDonate,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(donateCmd)

	donateCmd.Flags().StringVarP(&donateAmount, "amount", "a", "", "donation in USD (default: donation.default_amount)")
	donateCmd.Flags().StringVar(&donateTo, "to", "", "donate to this address instead of a package signer")
	donateCmd.Flags().StringVar(&donatePrice, "price", "", "USD price of one ETH, skips the price lookup")
	donateCmd.Flags().BoolVar(&donateQR, "qr", false, "print a payment request instead of contacting a wallet")
}

// donationTarget is what the donation needs from the collaborator APIs.
type donationTarget struct {
	ref       *verify.PackageRef
	result    *verify.Result
	recipient string
	quote     *quote.Quote
	price     decimal.Decimal
}

func runDonate(cmd *cobra.Command, args []string) error {
	if !donationInFlight.CompareAndSwap(false, true) {
		return ErrDonationInFlight
	}
	defer donationInFlight.Store(false)

	cc := newCommandContext()
	settings, usd, err := donationSettings(cc.Config)
	if err != nil {
		return err
	}
	if donateAmount != "" {
		if usd, err = parseUSD(donateAmount); err != nil {
			return err
		}
	}

	target, err := resolveTarget(cmd.Context(), cc, args)
	if err != nil {
		return err
	}
	cc.Logger.Debug("donation target %s at %s USD/ETH", target.recipient, target.price)

	if donateQR {
		return showPaymentRequest(cmd, cc, settings, target, usd)
	}

	ctx, cancel := commandContext(cmd, cc.Config.Provider.SubmitTimeout)
	defer cancel()

	env, closeEnv, err := cc.Environment(ctx, cc.Config)
	if err != nil {
		return err
	}
	defer closeEnv()

	session := donation.NewSession(env, settings, cc.Logger)
	orchestrator := donation.NewOrchestrator(session, donation.WithStageObserver(stageReporter(cmd, cc)))

	out := orchestrator.Donate(ctx, donation.DonationRequest{
		RecipientAddress:   target.recipient,
		USDAmount:          usd,
		QuotedUSDPerNative: target.price,
	})

	receipt := output.NewReceipt(out)
	receipt.Recipient = target.recipient
	receipt.Network = settings.Network.Name
	receipt.USD = usd.String()
	if target.ref != nil {
		receipt.Package = target.ref.String()
	}
	if target.result != nil {
		receipt.Version = target.result.Version
	}
	if payment, perr := donation.ComputeNativeValue(usd, target.price, settings.Limits); perr == nil {
		receipt.Native = payment.Native.String()
	}

	if err := output.FormatReceipt(cmd.OutOrStdout(), receipt, cc.Formatter.Format()); err != nil {
		return err
	}
	if !out.IsSubmitted() {
		return reported(out.Err)
	}
	return nil
}

// resolveTarget looks up the recipient and the ETH price concurrently.
func resolveTarget(ctx context.Context, cc *CommandContext, args []string) (*donationTarget, error) {
	t := &donationTarget{}
	if len(args) == 1 {
		ref, err := verify.ParsePackageRef(args[0])
		if err != nil {
			return nil, err
		}
		t.ref = &ref
	}
	if t.ref == nil && donateTo == "" {
		return nil, donateerr.WithSuggestion(donateerr.ErrRecipientMissing,
			"name a package to donate to, or pass an address with --to")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if donateTo != "" {
			t.recipient = strings.TrimSpace(donateTo)
			return nil
		}
		result, err := cc.Verifier.Verify(gctx, *t.ref)
		if err != nil {
			return err
		}
		t.result = result
		t.recipient, err = result.Recipient()
		return err
	})

	g.Go(func() error {
		if donatePrice != "" {
			price, err := decimal.NewFromString(strings.TrimSpace(donatePrice))
			if err != nil {
				return donateerr.WithDetails(donateerr.ErrInvalidQuote, map[string]string{"price": donatePrice})
			}
			t.price = price
			return nil
		}
		q, err := cc.Prices.BuyPrice(gctx, cc.Config.APIs.QuotePair)
		if err != nil {
			return err
		}
		t.quote = q
		t.price = q.Amount
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

// stageReporter logs every stage and, in text mode, tells the user when the
// wallet is waiting for them.
func stageReporter(cmd *cobra.Command, cc *CommandContext) func(donation.Stage) {
	return func(stage donation.Stage) {
		cc.Logger.Debugw("donation stage", "stage", string(stage))
		if cc.Formatter.IsJSON() {
			return
		}
		switch stage {
		case donation.StageAcquiringAccounts:
			if cc.Config.Output.Verbose {
				output.Infof(cmd.ErrOrStderr(), "Connecting to your wallet...")
			}
		case donation.StageSubmitting:
			output.Infof(cmd.ErrOrStderr(), "Please confirm the transaction in your wallet.")
		}
	}
}

type paymentRequest struct {
	Recipient string `json:"recipient"`
	Network   string `json:"network"`
	USD       string `json:"usd"`
	Native    string `json:"eth"`
	Wei       string `json:"wei"`
	URI       string `json:"uri"`
}

// showPaymentRequest prints an EIP-681 URI for wallets this process cannot reach.
func showPaymentRequest(cmd *cobra.Command, cc *CommandContext, settings donation.Settings, t *donationTarget, usd decimal.Decimal) error {
	if err := chain.ValidateRecipient(t.recipient); err != nil {
		return err
	}
	if !containsAmount(settings.AllowedAmounts, usd) {
		return donateerr.WithDetails(donateerr.ErrInvalidAmount, map[string]string{"usd": usd.String()})
	}
	payment, err := donation.ComputeNativeValue(usd, t.price, settings.Limits)
	if err != nil {
		return err
	}

	req := paymentRequest{
		Recipient: chain.ToChecksumAddress(t.recipient),
		Network:   settings.Network.Name,
		USD:       usd.String(),
		Native:    payment.Native.String(),
		Wei:       payment.Wei.String(),
		URI:       payment.URI(t.recipient, settings.Network),
	}
	if cc.Formatter.IsJSON() {
		return cc.Formatter.Print(req)
	}

	w := cmd.OutOrStdout()
	output.RenderQR(w, req.URI, output.DefaultQRConfig())
	_, err = fmt.Fprintf(w, "Send %s ETH (%s USD) to %s on the %s:\n%s\n",
		req.Native, req.USD, req.Recipient, settings.Network, req.URI)
	return err
}

func parseUSD(s string) (decimal.Decimal, error) {
	usd, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if err != nil {
		return decimal.Zero, donateerr.WithDetails(donateerr.ErrInvalidAmount, map[string]string{"usd": s})
	}
	return usd, nil
}

func containsAmount(list []decimal.Decimal, v decimal.Decimal) bool {
	for _, a := range list {
		if a.Equal(v) {
			return true
		}
	}
	return false
}
