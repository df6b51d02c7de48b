package donation

import (
	"context"
	"encoding/json"

	"github.com/ethpkg/donate/internal/provider"
	donateerr "github.com/ethpkg/donate/pkg/errors"
)

// GetAccounts obtains the user's accounts, trying in order:
//  1. the deprecated Enable call, when offered
//  2. RequestAccounts, when offered
//  3. a raw eth_accounts request
//
// The first non-empty result wins. A user rejection on Enable ends the
// chain with ErrAccessDenied; every other failure falls through.
func GetAccounts(ctx context.Context, p provider.Provider, log Logger) ([]string, error) {
	log = loggerOrNop(log)

	if enabler, ok := p.(provider.Enabler); ok {
		accounts, err := enabler.Enable(ctx)
		switch {
		case err != nil && provider.IsUserRejection(err):
			return nil, donateerr.WithCause(donateerr.ErrAccessDenied, err)
		case err != nil:
			log.Debug("enable failed, trying next strategy: %v", err)
		case len(accounts) > 0:
			return accounts, nil
		default:
			log.Debug("enable returned no accounts")
		}
	}

	if requester, ok := p.(provider.AccountsRequester); ok {
		accounts, err := requester.RequestAccounts(ctx)
		switch {
		case err != nil:
			log.Debug("request accounts failed, trying next strategy: %v", err)
		case len(accounts) > 0:
			return accounts, nil
		default:
			log.Debug("request accounts returned no accounts")
		}
	}

	accounts, err := rawAccounts(ctx, p)
	if err != nil {
		log.Debug("eth_accounts failed: %v", err)
		if ctx.Err() != nil {
			return nil, donateerr.WithCause(donateerr.ErrAccountsUnavailable, ctx.Err())
		}
	}
	if len(accounts) > 0 {
		return accounts, nil
	}

	return nil, donateerr.ErrAccountsUnavailable
}

func rawAccounts(ctx context.Context, p provider.Provider) ([]string, error) {
	resp, err := provider.Await(ctx, p, &provider.Request{Method: "eth_accounts", Params: []any{}})
	if err != nil {
		return nil, err
	}
	if resp == nil || !resp.HasResult() {
		if resp != nil && resp.Error != nil {
			return nil, resp.Error
		}
		return nil, nil
	}

	var accounts []string
	if err := json.Unmarshal(resp.Result, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}
