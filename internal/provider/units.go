package provider

import (
	"math/big"

	"github.com/ethereum/go-ethereum/params"
	"github.com/shopspring/decimal"
)

// etherDecimals is the number of decimal places between ether and wei.
const etherDecimals = 18

//nolint:gochecknoglobals // Constant conversion factor
var weiPerEther = decimal.NewFromInt(params.Ether)

// units implements the conversion helpers shared by all variants.
type units struct{}

func (units) ToWei(ether decimal.Decimal) *big.Int {
	return ToWei(ether)
}

func (units) FromWei(wei *big.Int) decimal.Decimal {
	return FromWei(wei)
}

// ToWei converts ether to wei, truncating any fractional wei.
func ToWei(ether decimal.Decimal) *big.Int {
	return ether.Mul(weiPerEther).BigInt()
}

// FromWei converts wei to ether without loss.
func FromWei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -etherDecimals)
}
