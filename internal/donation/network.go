package donation

import (
	"context"
	"fmt"

	"github.com/ethpkg/donate/internal/chain"
	"github.com/ethpkg/donate/internal/provider"
	donateerr "github.com/ethpkg/donate/pkg/errors"
)

// CheckNetwork verifies the wallet is on the required network.
// A provider that reports no network id passes unchecked.
func CheckNetwork(ctx context.Context, p provider.Provider, required chain.Network) error {
	current := p.NetworkVersion(ctx)
	if current == "" {
		return nil
	}
	if chain.NetworkID(current) == required.ID {
		return nil
	}

	actual := chain.LookupNetwork(chain.NetworkID(current))
	msg := fmt.Sprintf("This application requires the %s, please switch it in your wallet UI (currently on the %s).",
		required, actual)

	return donateerr.WithDetails(donateerr.WithMessage(donateerr.ErrWrongNetwork, msg), map[string]string{
		"required": string(required.ID),
		"current":  current,
	})
}
