package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ethpkg/donate/internal/chain"
	donateerr "github.com/ethpkg/donate/pkg/errors"
)

// Validate checks the configuration for values the CLI cannot use.
func (c *Config) Validate() error {
	if _, err := chain.ParseNetwork(c.Network); err != nil {
		return invalid("network", c.Network, err)
	}

	amounts, err := c.Donation.ParseAmounts()
	if err != nil {
		return err
	}
	def, err := parsePositive("donation.default_amount", c.Donation.DefaultAmount)
	if err != nil {
		return err
	}
	if !containsDecimal(amounts, def) {
		return donateerr.WithSuggestion(
			invalid("donation.default_amount", c.Donation.DefaultAmount, nil),
			"default_amount must be one of "+strings.Join(c.Donation.Amounts, ", "),
		)
	}

	if _, _, err := c.Donation.ParseLimits(); err != nil {
		return err
	}

	switch strings.ToLower(c.Output.DefaultFormat) {
	case "", "auto", "text", "json":
	default:
		return donateerr.WithSuggestion(invalid("output.default_format", c.Output.DefaultFormat, nil),
			"use auto, text or json")
	}

	if c.Provider.SubmitTimeout < 0 {
		return invalid("provider.submit_timeout", c.Provider.SubmitTimeout.String(), nil)
	}
	if c.Provider.NetworkCheckTimeout < 0 {
		return invalid("provider.network_check_timeout", c.Provider.NetworkCheckTimeout.String(), nil)
	}
	if c.Provider.BalanceCheckTimeout < 0 {
		return invalid("provider.balance_check_timeout", c.Provider.BalanceCheckTimeout.String(), nil)
	}
	if c.APIs.QuoteMaxAge < 0 {
		return invalid("apis.quote_max_age", c.APIs.QuoteMaxAge.String(), nil)
	}
	return nil
}

// ParseAmounts parses the allowed donation amounts.
func (d DonationConfig) ParseAmounts() ([]decimal.Decimal, error) {
	if len(d.Amounts) == 0 {
		return nil, invalid("donation.amounts", "(empty)", nil)
	}
	out := make([]decimal.Decimal, 0, len(d.Amounts))
	for i, s := range d.Amounts {
		v, err := parsePositive(fmt.Sprintf("donation.amounts[%d]", i), s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseDefaultAmount parses the preselected donation amount.
func (d DonationConfig) ParseDefaultAmount() (decimal.Decimal, error) {
	return parsePositive("donation.default_amount", d.DefaultAmount)
}

// ParseLimits parses the USD and ether ceilings.
func (d DonationConfig) ParseLimits() (maxUSD, maxNative decimal.Decimal, err error) {
	if maxUSD, err = parsePositive("donation.max_usd", d.MaxUSD); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if maxNative, err = parsePositive("donation.max_native", d.MaxNative); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return maxUSD, maxNative, nil
}

func parsePositive(field, s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, invalid(field, s, err)
	}
	if v.Sign() <= 0 {
		return decimal.Zero, invalid(field, s, nil)
	}
	return v, nil
}

func containsDecimal(list []decimal.Decimal, v decimal.Decimal) bool {
	for _, d := range list {
		if d.Equal(v) {
			return true
		}
	}
	return false
}

// invalid builds ErrConfigInvalid for field, keeping the suggestion of cause.
func invalid(field, value string, cause error) error {
	err := donateerr.WithDetails(donateerr.WithCause(donateerr.ErrConfigInvalid, cause), map[string]string{
		"field": field,
		"value": value,
	})

	var de *donateerr.DonateError
	if cause != nil && donateerr.As(cause, &de) && de.Suggestion != "" {
		err = donateerr.WithSuggestion(err, de.Suggestion)
	}
	return err
}
