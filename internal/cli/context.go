package cli

import (
	"context"

	"github.com/ethpkg/donate/internal/cache"
	"github.com/ethpkg/donate/internal/config"
	"github.com/ethpkg/donate/internal/output"
	"github.com/ethpkg/donate/internal/provider"
	"github.com/ethpkg/donate/internal/quote"
	"github.com/ethpkg/donate/internal/verify"
	"github.com/ethpkg/donate/internal/version"
	donateerr "github.com/ethpkg/donate/pkg/errors"
)

// PriceSource returns the current price of a currency pair.
type PriceSource interface {
	BuyPrice(ctx context.Context, pair string) (*quote.Quote, error)
}

// Verifier looks up the signatures of a package.
type Verifier interface {
	Verify(ctx context.Context, ref verify.PackageRef) (*verify.Result, error)
}

// ReleaseChecker compares the running version with the latest release.
type ReleaseChecker interface {
	CheckLatest(ctx context.Context, current string) (*version.Check, error)
}

// EnvironmentFunc builds the wallet environment a session resolves its
// provider from. The returned function releases its connections.
type EnvironmentFunc func(ctx context.Context, cfg *config.Config) (provider.Environment, func(), error)

// CommandContext holds the dependencies of the CLI commands.
type CommandContext struct {
	Config      *config.Config
	Logger      *config.Logger
	Formatter   *output.Formatter
	Prices      PriceSource
	Verifier    Verifier
	Releases    ReleaseChecker
	Environment EnvironmentFunc
}

// Dependency constructors, replaced in tests.
//
//nolint:gochecknoglobals // Test seams for network-facing dependencies
var (
	newPriceSourceFn = func(c *config.Config) PriceSource {
		client := quote.NewClient(&quote.ClientOptions{BaseURL: c.APIs.QuoteURL})
		storage := cache.NewFileStorage(config.CachePath(c.Home))
		return cache.NewSource(client, storage, c.APIs.QuoteMaxAge, logger)
	}
	newVerifierFn = func(c *config.Config) Verifier {
		return verify.NewClient(&verify.ClientOptions{BaseURL: c.APIs.VerifyURL})
	}
	newReleaseCheckerFn = func(_ *config.Config) ReleaseChecker {
		return version.NewClient(nil)
	}
	newEnvironmentFn EnvironmentFunc = dialEnvironment
)

// newCommandContext assembles the context from the global state.
func newCommandContext() *CommandContext {
	return &CommandContext{
		Config:      cfg,
		Logger:      logger,
		Formatter:   formatter,
		Prices:      newPriceSourceFn(cfg),
		Verifier:    newVerifierFn(cfg),
		Releases:    newReleaseCheckerFn(cfg),
		Environment: newEnvironmentFn,
	}
}

// dialEnvironment exposes the configured endpoints the way a browser
// exposes injected wallets: a modern provider under "ethereum" and a legacy
// one under "web3". Unset endpoints are left out, so an empty configuration
// yields an empty environment.
func dialEnvironment(ctx context.Context, c *config.Config) (provider.Environment, func(), error) {
	env := provider.Environment{}
	closeFn := func() {}

	if c.Provider.URL != "" {
		injected, err := provider.DialInjected(ctx, c.Provider.URL)
		if err != nil {
			return nil, closeFn, donateerr.WithCause(donateerr.ErrNoProvider, err)
		}
		env[provider.GlobalEthereum] = injected
		closeFn = injected.Close
	}

	if c.Provider.LegacyURL != "" {
		sender, err := provider.NewHTTPProvider(c.Provider.LegacyURL, nil)
		if err != nil {
			closeFn()
			return nil, func() {}, err
		}
		env[provider.GlobalWeb3] = &provider.Web3Namespace{Provider: sender}
	}

	return env, closeFn, nil
}
