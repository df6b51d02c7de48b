// Package donation implements the wallet transaction orchestrator: it turns
// a DonationRequest into a single eth_sendTransaction through whatever wallet
// provider the host exposes, and classifies the answer into an Outcome.
package donation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ethpkg/donate/internal/chain"
)

// DonationRequest is the input of one donation attempt.
type DonationRequest struct {
	// RecipientAddress is the 0x-prefixed address of the package signer.
	RecipientAddress string
	// USDAmount must be one of the session's allowed amounts.
	USDAmount decimal.Decimal
	// QuotedUSDPerNative is the current USD price of one ether.
	QuotedUSDPerNative decimal.Decimal
}

// PendingTransaction is the value transfer handed to the provider.
type PendingTransaction struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"` // 0x-prefixed hex quantity of wei
}

// Limits are the upper bounds a payment must respect.
type Limits struct {
	// MaxNative is the absolute ceiling in ether, independent of the quote.
	MaxNative decimal.Decimal
	// MaxUSD is the largest donation in USD, converted at the current quote.
	MaxUSD decimal.Decimal
}

// DefaultLimits returns the default ceilings: 0.5 ETH and 10 USD.
func DefaultLimits() Limits {
	return Limits{
		MaxNative: decimal.RequireFromString("0.5"),
		MaxUSD:    decimal.NewFromInt(10),
	}
}

// DefaultAllowedAmounts returns the USD amounts a user can pick from.
func DefaultAllowedAmounts() []decimal.Decimal {
	return []decimal.Decimal{
		decimal.NewFromInt(1),
		decimal.NewFromInt(3),
		decimal.NewFromInt(5),
		decimal.NewFromInt(10),
	}
}

// DefaultUSDAmount is the preselected donation amount.
//
//nolint:gochecknoglobals // Immutable default
var DefaultUSDAmount = decimal.NewFromInt(3)

// DefaultBalanceCheckTimeout bounds the advisory balance read.
const DefaultBalanceCheckTimeout = 10 * time.Second

// DefaultNetworkCheckTimeout bounds the network id read.
const DefaultNetworkCheckTimeout = 5 * time.Second

// Settings configure a Session.
type Settings struct {
	// Network is the network donations must be sent on.
	Network chain.Network
	// Limits are the payment ceilings.
	Limits Limits
	// AllowedAmounts is the set of USD amounts accepted.
	AllowedAmounts []decimal.Decimal
	// BalanceCheckTimeout bounds the advisory balance read. Zero disables the bound.
	BalanceCheckTimeout time.Duration
	// NetworkCheckTimeout bounds the network id read. A wallet that does not
	// answer in time is treated as unable to report its network. Zero means
	// DefaultNetworkCheckTimeout.
	NetworkCheckTimeout time.Duration
}

// DefaultSettings returns settings targeting the Ropsten test network.
func DefaultSettings() Settings {
	return Settings{
		Network:             chain.LookupNetwork(chain.RopstenNetworkID),
		Limits:              DefaultLimits(),
		AllowedAmounts:      DefaultAllowedAmounts(),
		BalanceCheckTimeout: DefaultBalanceCheckTimeout,
		NetworkCheckTimeout: DefaultNetworkCheckTimeout,
	}
}

// Logger is the logging surface the orchestrator needs.
type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

func loggerOrNop(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}
