package provider

import (
	donateerr "github.com/ethpkg/donate/pkg/errors"
)

// Resolve inspects the environment and returns the first provider found.
// A modern "ethereum" object takes priority over a legacy "web3" namespace.
// When neither is present it returns ErrNoProvider.
func Resolve(env Environment) (Provider, error) {
	if v, ok := env.Lookup(GlobalEthereum); ok {
		if r, ok := v.(Requester); ok {
			m := NewModern(r)
			if e, ok := v.(Enabler); ok {
				return &EnablingModern{Modern: m, enabler: e}, nil
			}
			return m, nil
		}
	}

	if v, ok := env.Lookup(GlobalWeb3); ok {
		if w, ok := v.(Web3); ok {
			if sender := w.CurrentProvider(); sender != nil {
				return NewLegacy(sender), nil
			}
		}
	}

	return nil, donateerr.ErrNoProvider
}
