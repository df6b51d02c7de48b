package cli

import (
	"github.com/shopspring/decimal"

	"github.com/ethpkg/donate/internal/chain"
	"github.com/ethpkg/donate/internal/config"
	"github.com/ethpkg/donate/internal/donation"
)

// donationSettings converts the validated configuration into session
// settings and the preselected USD amount.
func donationSettings(c *config.Config) (donation.Settings, decimal.Decimal, error) {
	network, err := chain.ParseNetwork(c.Network)
	if err != nil {
		return donation.Settings{}, decimal.Zero, err
	}
	amounts, err := c.Donation.ParseAmounts()
	if err != nil {
		return donation.Settings{}, decimal.Zero, err
	}
	def, err := c.Donation.ParseDefaultAmount()
	if err != nil {
		return donation.Settings{}, decimal.Zero, err
	}
	maxUSD, maxNative, err := c.Donation.ParseLimits()
	if err != nil {
		return donation.Settings{}, decimal.Zero, err
	}

	return donation.Settings{
		Network:             network,
		Limits:              donation.Limits{MaxNative: maxNative, MaxUSD: maxUSD},
		AllowedAmounts:      amounts,
		BalanceCheckTimeout: c.Provider.BalanceCheckTimeout,
		NetworkCheckTimeout: c.Provider.NetworkCheckTimeout,
	}, def, nil
}
