package provider_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpkg/donate/internal/donation"
	"github.com/ethpkg/donate/internal/provider"
	"github.com/ethpkg/donate/internal/rpc"
	donateerr "github.com/ethpkg/donate/pkg/errors"
)

var errBoom = errors.New("boom")

func TestKindString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "modern", provider.KindModern.String())
	assert.Equal(t, "legacy", provider.KindLegacy.String())
	assert.Equal(t, "none", provider.KindNone.String())
	assert.Equal(t, "unknown", provider.Kind(42).String())
}

func TestResolve(t *testing.T) {
	t.Parallel()

	requester := &stubRequester{fn: func(string, ...any) (json.RawMessage, error) {
		return json.RawMessage(`"1"`), nil
	}}
	web3 := &provider.Web3Namespace{Provider: funcSender(func(*provider.Request, provider.Callback) {})}

	t.Run("modern preferred over legacy", func(t *testing.T) {
		t.Parallel()
		p, err := provider.Resolve(provider.Environment{
			provider.GlobalEthereum: requester,
			provider.GlobalWeb3:     web3,
		})
		require.NoError(t, err)
		assert.Equal(t, provider.KindModern, p.Kind())

		_, isEnabler := p.(provider.Enabler)
		assert.False(t, isEnabler)
		_, isRequester := p.(provider.AccountsRequester)
		assert.True(t, isRequester)
	})

	t.Run("modern with enable", func(t *testing.T) {
		t.Parallel()
		p, err := provider.Resolve(provider.Environment{
			provider.GlobalEthereum: &enablingRequester{stubRequester: *requester, accounts: []string{"0xabc"}},
		})
		require.NoError(t, err)

		enabler, ok := p.(provider.Enabler)
		require.True(t, ok)
		accounts, err := enabler.Enable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"0xabc"}, accounts)
	})

	t.Run("legacy", func(t *testing.T) {
		t.Parallel()
		p, err := provider.Resolve(provider.Environment{provider.GlobalWeb3: web3})
		require.NoError(t, err)
		assert.Equal(t, provider.KindLegacy, p.Kind())

		_, isRequester := p.(provider.AccountsRequester)
		assert.False(t, isRequester)
	})

	t.Run("ethereum of wrong shape falls through", func(t *testing.T) {
		t.Parallel()
		p, err := provider.Resolve(provider.Environment{
			provider.GlobalEthereum: "not a provider",
			provider.GlobalWeb3:     web3,
		})
		require.NoError(t, err)
		assert.Equal(t, provider.KindLegacy, p.Kind())
	})

	t.Run("web3 without current provider", func(t *testing.T) {
		t.Parallel()
		_, err := provider.Resolve(provider.Environment{provider.GlobalWeb3: &provider.Web3Namespace{}})
		require.ErrorIs(t, err, donateerr.ErrNoProvider)
	})

	t.Run("none", func(t *testing.T) {
		t.Parallel()
		_, err := provider.Resolve(nil)
		require.ErrorIs(t, err, donateerr.ErrNoProvider)
		_, err = provider.Resolve(provider.Environment{})
		require.ErrorIs(t, err, donateerr.ErrNoProvider)
	})
}

func TestAwait(t *testing.T) {
	t.Parallel()

	t.Run("first callback wins", func(t *testing.T) {
		t.Parallel()
		p := provider.NewLegacy(funcSender(func(_ *provider.Request, cb provider.Callback) {
			cb(&provider.Response{Result: json.RawMessage(`"0xfirst"`)}, nil)
			cb(&provider.Response{Result: json.RawMessage(`"0xsecond"`)}, nil)
			cb(nil, errBoom)
		}))

		resp, err := provider.Await(context.Background(), p, &provider.Request{Method: "eth_sendTransaction"})
		require.NoError(t, err)
		assert.JSONEq(t, `"0xfirst"`, string(resp.Result))
	})

	t.Run("error argument rejects", func(t *testing.T) {
		t.Parallel()
		p := provider.NewLegacy(funcSender(func(_ *provider.Request, cb provider.Callback) {
			go cb(nil, errBoom)
		}))

		resp, err := provider.Await(context.Background(), p, &provider.Request{Method: "eth_accounts"})
		require.ErrorIs(t, err, errBoom)
		assert.Nil(t, resp)
	})

	t.Run("silent provider waits for context", func(t *testing.T) {
		t.Parallel()
		p := provider.NewLegacy(funcSender(func(*provider.Request, provider.Callback) {}))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := provider.Await(ctx, p, &provider.Request{Method: "eth_sendTransaction"})
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestInjectedModern(t *testing.T) {
	t.Parallel()

	srv := newRPCServer(t, func(method string, params []json.RawMessage) (any, *rpc.Error) {
		switch method {
		case "eth_accounts", "eth_requestAccounts":
			return []string{"0xabc"}, nil
		case "net_version":
			return "3", nil
		case "eth_sendTransaction":
			return nil, &rpc.Error{Code: provider.CodeUserRejected, Message: "User denied transaction signature."}
		default:
			return nil, &rpc.Error{Code: -32601, Message: "method not found"}
		}
	})

	injected, err := provider.DialInjected(context.Background(), srv.URL)
	require.NoError(t, err)
	t.Cleanup(injected.Close)

	p, err := provider.Resolve(provider.Environment{provider.GlobalEthereum: injected})
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("result in envelope", func(t *testing.T) {
		resp, err := provider.Await(ctx, p, &provider.Request{Method: "eth_accounts"})
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Nil(t, resp.Error)
		assert.JSONEq(t, `["0xabc"]`, string(resp.Result))
	})

	t.Run("rpc error in envelope", func(t *testing.T) {
		resp, err := provider.Await(ctx, p, &provider.Request{
			Method: "eth_sendTransaction",
			Params: []any{map[string]string{"from": "0xa", "to": "0xb", "value": "0x1"}},
		})
		require.NoError(t, err)
		require.NotNil(t, resp.Error)
		assert.Equal(t, provider.CodeUserRejected, resp.Error.Code)
		assert.Equal(t, "User denied transaction signature.", resp.Error.Message)
	})

	t.Run("network version", func(t *testing.T) {
		assert.Equal(t, "3", p.NetworkVersion(ctx))
	})

	t.Run("request accounts", func(t *testing.T) {
		requester, ok := p.(provider.AccountsRequester)
		require.True(t, ok)
		accounts, err := requester.RequestAccounts(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"0xabc"}, accounts)
	})
}

func TestInjectedTransportError(t *testing.T) {
	t.Parallel()

	srv := newRPCServer(t, func(string, []json.RawMessage) (any, *rpc.Error) { return nil, nil })
	injected, err := provider.DialInjected(context.Background(), srv.URL)
	require.NoError(t, err)
	t.Cleanup(injected.Close)
	srv.Close()

	p := provider.NewModern(injected)
	resp, err := provider.Await(context.Background(), p, &provider.Request{Method: "eth_accounts"})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Empty(t, p.NetworkVersion(context.Background()))
}

func TestModernEmptyResultIsMalformed(t *testing.T) {
	t.Parallel()
	p := provider.NewModern(&stubRequester{fn: func(string, ...any) (json.RawMessage, error) {
		return nil, gethrpc.ErrNoResult
	}})

	resp, err := provider.Await(context.Background(), p, &provider.Request{Method: "eth_sendTransaction"})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Nil(t, resp.Error)
	assert.False(t, resp.HasResult())

	out := donation.Classify(resp)
	assert.Equal(t, donation.StatusFailed, out.Status)
	require.ErrorIs(t, out.Err, donateerr.ErrMalformedResult)
}

func TestModernNumericNetworkVersion(t *testing.T) {
	t.Parallel()
	p := provider.NewModern(&stubRequester{fn: func(string, ...any) (json.RawMessage, error) {
		return json.RawMessage(`1`), nil
	}})
	assert.Equal(t, "1", p.NetworkVersion(context.Background()))
}

func TestLegacyHTTPProvider(t *testing.T) {
	t.Parallel()

	srv := newRPCServer(t, func(method string, _ []json.RawMessage) (any, *rpc.Error) {
		switch method {
		case "net_version":
			return "1", nil
		case "eth_accounts":
			return []string{"0xdef"}, nil
		default:
			return nil, &rpc.Error{Code: -32601, Message: "method not found"}
		}
	})

	sender, err := provider.NewHTTPProvider(srv.URL, &http.Client{Timeout: 5 * time.Second})
	require.NoError(t, err)

	p, err := provider.Resolve(provider.Environment{
		provider.GlobalWeb3: &provider.Web3Namespace{Provider: sender},
	})
	require.NoError(t, err)
	ctx := context.Background()

	assert.Equal(t, "1", p.NetworkVersion(ctx))

	resp, err := provider.Await(ctx, p, &provider.Request{Method: "eth_accounts"})
	require.NoError(t, err)
	assert.JSONEq(t, `["0xdef"]`, string(resp.Result))

	resp, err = provider.Await(ctx, p, &provider.Request{Method: "eth_unknown"})
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32601, resp.Error.Code)
}

func TestLegacyNetworkVersionUnavailable(t *testing.T) {
	t.Parallel()
	p := provider.NewLegacy(funcSender(func(_ *provider.Request, cb provider.Callback) {
		cb(&provider.Response{Error: &rpc.Error{Code: -32601, Message: "method not found"}}, nil)
	}))
	assert.Empty(t, p.NetworkVersion(context.Background()))
}

func TestNewHTTPProviderRequiresURL(t *testing.T) {
	t.Parallel()
	_, err := provider.NewHTTPProvider("", nil)
	require.ErrorIs(t, err, rpc.ErrRPCURLRequired)
}
