// Package cli implements the ethpkg-donate command-line interface.
//
// Like most Cobra applications it keeps command state in package-level
// variables: flags are bound in init functions, and the configuration,
// logger and formatter are built in PersistentPreRunE.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/ethpkg/donate/internal/config"
	"github.com/ethpkg/donate/internal/metrics"
	"github.com/ethpkg/donate/internal/output"
	donateerr "github.com/ethpkg/donate/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool
	providerURL  string
	legacyURL    string
	networkName  string
	showMetrics  bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter
)

var rootCmd = &cobra.Command{
	Use:   "ethpkg-donate",
	Short: "Donate ETH to the author of a signed package",
	Long: `ethpkg-donate sends a small ETH donation to the signer of a package.

The recipient is the address that signed the package, looked up through the
ethpkg verification API. The USD amount is converted at the current ETH price
and the transaction is handed to your wallet, which asks you to confirm it.

Example:
  ethpkg-donate donate npm/left-pad --amount 3
  ethpkg-donate donate --to 0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed --amount 1
  ethpkg-donate price`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		if showMetrics {
			_ = metrics.Global.WriteText(cmd.ErrOrStderr())
		}
		cleanup()
	},
}

// reportedError marks an error whose details were already written to the
// user, typically as part of a donation receipt.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		err = donateerr.ErrGeneral
	}
	return &reportedError{err: err}
}

// Execute runs the root command and prints any error that was not already reported.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var re *reportedError
	if !errors.As(err, &re) {
		format := output.FormatText
		if formatter != nil {
			format = formatter.Format()
		}
		_ = output.FormatError(rootCmd.ErrOrStderr(), err, format)
	}
	return err
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	return donateerr.ExitCode(err)
}

// initGlobals loads the configuration and applies, in increasing priority,
// the config file, environment variables and command-line flags.
func initGlobals(cmd *cobra.Command) error {
	if _, err := output.ValidateFormat(outputFormat); err != nil {
		return donateerr.WithSuggestion(err, "use one of: text, json, auto")
	}

	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}
	home = config.ExpandHome(home)

	var err error
	cfg, err = config.LoadOrDefaults(config.Path(home))
	if err != nil {
		return err
	}
	cfg.Home = home
	config.ApplyEnvironment(cfg)

	if homeDir != "" {
		cfg.Home = config.ExpandHome(homeDir)
	}
	if providerURL != "" {
		cfg.Provider.URL = config.SanitizeURL(providerURL)
	}
	if legacyURL != "" {
		cfg.Provider.LegacyURL = config.SanitizeURL(legacyURL)
	}
	if networkName != "" {
		cfg.Network = networkName
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != string(output.FormatAuto) {
		cfg.Output.DefaultFormat = outputFormat
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err = config.NewLogger(config.ParseLogLevel(cfg.Logging.Level), config.ExpandHome(cfg.Logging.File))
	if err != nil {
		logger = config.NullLogger()
	}

	formatter = output.NewFormatter(output.ParseFormat(cfg.Output.DefaultFormat), cmd.OutOrStdout())
	return nil
}

func cleanup() {
	if logger != nil {
		_ = logger.Close()
	}
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&homeDir, "home", "", "data directory (default: ~/.ethpkg)")
	flags.StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output and debug logging")
	flags.StringVar(&providerURL, "provider", "", "wallet provider endpoint (http, ws or ipc)")
	flags.StringVar(&legacyURL, "legacy-provider", "", "legacy web3 provider endpoint (http)")
	flags.StringVar(&networkName, "network", "", "network donations must be sent on (main, ropsten, sepolia, ...)")
	flags.BoolVar(&showMetrics, "metrics", false, "print request and donation metrics to stderr on exit")

	addHelpSubcommandLists(rootCmd)
}
