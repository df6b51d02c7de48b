package donation

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/ethpkg/donate/internal/chain"
	"github.com/ethpkg/donate/internal/provider"
	donateerr "github.com/ethpkg/donate/pkg/errors"
)

// Submit sends tx with eth_sendTransaction and waits for the single answer.
// There is no deadline beyond ctx; a provider that never answers blocks
// until ctx is done. A failing channel yields ErrTransport.
func Submit(ctx context.Context, p provider.Provider, tx PendingTransaction) (*provider.Response, error) {
	resp, err := provider.Await(ctx, p, &provider.Request{
		Method: "eth_sendTransaction",
		Params: []any{tx},
	})
	if err != nil {
		return nil, donateerr.WithCause(donateerr.ErrTransport, err)
	}
	return resp, nil
}

// CheckBalance reads the sender's balance on mainnet and fails with
// ErrInsufficientFunds when it cannot cover the payment. Any failure of the
// read itself is logged and ignored; the wallet reports funding problems at
// signing time anyway.
func CheckBalance(ctx context.Context, p provider.Provider, from string, payment *Payment, network chain.Network, log Logger) error {
	log = loggerOrNop(log)
	if !network.IsMain() || payment == nil {
		return nil
	}

	resp, err := provider.Await(ctx, p, &provider.Request{
		Method: "eth_getBalance",
		Params: []any{from, "latest"},
	})
	switch {
	case err != nil:
		log.Debug("balance check skipped: %v", err)
		return nil
	case resp == nil || resp.Error != nil || !resp.HasResult():
		log.Debug("balance check skipped: no usable response")
		return nil
	}

	var encoded string
	if err := json.Unmarshal(resp.Result, &encoded); err != nil {
		log.Debug("balance check skipped: %v", err)
		return nil
	}
	balance, err := hexutil.DecodeBig(encoded)
	if err != nil {
		log.Debug("balance check skipped: %v", err)
		return nil
	}

	if balance.Cmp(payment.Wei) < 0 {
		return donateerr.WithDetails(donateerr.ErrInsufficientFunds, map[string]string{
			"balance":  p.FromWei(balance).String() + " ETH",
			"required": payment.Native.String() + " ETH",
		})
	}
	return nil
}
