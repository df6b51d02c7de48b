package donation

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"github.com/ethpkg/donate/internal/chain"
	"github.com/ethpkg/donate/internal/provider"
	donateerr "github.com/ethpkg/donate/pkg/errors"
)

// weiDecimals is the number of decimal places between ether and wei.
const weiDecimals = 18

// Payment is a donation converted to ether.
type Payment struct {
	Native   decimal.Decimal // ether, for display
	Wei      *big.Int
	ValueHex string // 0x-prefixed hex of Wei
}

// ComputeNativeValue converts usd to ether at usdPerNative and enforces the
// ceilings in limits. Fractional wei are truncated.
func ComputeNativeValue(usd, usdPerNative decimal.Decimal, limits Limits) (*Payment, error) {
	if usdPerNative.Sign() <= 0 {
		return nil, donateerr.WithDetails(donateerr.ErrInvalidQuote, map[string]string{
			"quote": usdPerNative.String(),
		})
	}
	if usd.Sign() <= 0 {
		return nil, donateerr.WithDetails(donateerr.ErrInvalidAmount, map[string]string{
			"usd": usd.String(),
		})
	}

	// Both bounds are compared by cross-multiplying with the quote:
	//   native > MaxNative        <=>  usd > MaxNative * quote
	//   native > MaxUSD / quote   <=>  usd > MaxUSD
	if usd.GreaterThan(limits.MaxNative.Mul(usdPerNative)) || usd.GreaterThan(limits.MaxUSD) {
		return nil, donateerr.WithDetails(donateerr.ErrSuspiciousAmount, map[string]string{
			"usd":   usd.String(),
			"quote": usdPerNative.String(),
		})
	}

	// Truncating the quotient at wei precision makes ToWei exact.
	native, _ := usd.QuoRem(usdPerNative, weiDecimals)
	wei := provider.ToWei(native)

	return &Payment{
		Native:   provider.FromWei(wei),
		Wei:      wei,
		ValueHex: hexutil.EncodeBig(wei),
	}, nil
}

// URI returns an EIP-681 payment request for p, for wallets that are not
// connected to this process (for example a phone scanning a QR code).
func (p *Payment) URI(to string, network chain.Network) string {
	return fmt.Sprintf("ethereum:%s@%s?value=%s", chain.ToChecksumAddress(to), network.ID, p.Wei.String())
}
