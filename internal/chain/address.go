package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	donateerr "github.com/ethpkg/donate/pkg/errors"
)

// IsValidAddress checks the address is 0x followed by 40 hex characters.
// The checksum is not validated.
func IsValidAddress(address string) bool {
	return len(address) == 2+2*common.AddressLength &&
		strings.HasPrefix(address, "0x") &&
		common.IsHexAddress(address)
}

// ToChecksumAddress converts an address to EIP-55 checksum format.
// Invalid input is returned unchanged.
func ToChecksumAddress(address string) string {
	if !IsValidAddress(address) {
		return address
	}
	return common.HexToAddress(address).Hex()
}

// ValidateRecipient checks a donation recipient address.
// All-lowercase and all-uppercase addresses are accepted as non-checksummed;
// mixed-case addresses must carry a correct EIP-55 checksum.
func ValidateRecipient(address string) error {
	if address == "" {
		return donateerr.ErrRecipientMissing
	}
	if !IsValidAddress(address) {
		return donateerr.WithDetails(donateerr.ErrRecipientMissing, map[string]string{
			"address": address,
		})
	}

	hexPart := address[2:]
	if hexPart == strings.ToLower(hexPart) || hexPart == strings.ToUpper(hexPart) {
		return nil
	}
	if ToChecksumAddress(address) != address {
		return donateerr.WithSuggestion(
			donateerr.WithDetails(donateerr.ErrRecipientMissing, map[string]string{"address": address}),
			"address checksum mismatch, expected "+ToChecksumAddress(address),
		)
	}
	return nil
}
