package config

import "time"

// Default collaborator endpoints.
const (
	DefaultQuoteURL  = "https://api.coinbase.com"
	DefaultQuotePair = "ETH-USD"
	DefaultVerifyURL = "https://api.ethpkg.org"
)

// DefaultQuoteMaxAge is how long a price quote is reused.
const DefaultQuoteMaxAge = time.Minute

// DefaultNetwork is the network donations go to unless configured.
const DefaultNetwork = "ropsten"

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.ethpkg",
		Network: DefaultNetwork,
		Provider: ProviderConfig{
			URL:                 "",
			LegacyURL:           "",
			SubmitTimeout:       0, // wait for the wallet
			BalanceCheckTimeout: 10 * time.Second,
			NetworkCheckTimeout: 5 * time.Second,
		},
		Donation: DonationConfig{
			Amounts:       []string{"1", "3", "5", "10"},
			DefaultAmount: "3",
			MaxUSD:        "10",
			MaxNative:     "0.5",
		},
		APIs: APIConfig{
			QuoteURL:    DefaultQuoteURL,
			QuotePair:   DefaultQuotePair,
			VerifyURL:   DefaultVerifyURL,
			QuoteMaxAge: DefaultQuoteMaxAge,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.ethpkg/ethpkg-donate.log",
		},
	}
}
