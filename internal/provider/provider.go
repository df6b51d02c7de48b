// Package provider normalizes the wallet provider APIs a host can expose
// into a single capability surface.
//
// Two variants exist. A modern provider offers a generic request method
// (EIP-1193 style). A legacy provider sits under a web3 namespace and only
// offers a callback-based raw request channel. Resolve picks one per session.
package provider

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/ethpkg/donate/internal/rpc"
)

// Kind identifies a provider variant.
type Kind int

// Provider variants.
const (
	KindNone Kind = iota
	KindModern
	KindLegacy
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindModern:
		return "modern"
	case KindLegacy:
		return "legacy"
	case KindNone:
		return "none"
	default:
		return "unknown"
	}
}

// Request is a raw provider request keyed by method and params.
type Request struct {
	Method string
	Params []any
}

// Response is the JSON-RPC style envelope a provider answers with.
type Response = rpc.Response

// ResponseError is the error object carried inside a Response.
type ResponseError = rpc.Error

// Callback receives the single answer to a raw request. A non-nil error
// means the channel itself failed; a JSON-RPC error is carried in the
// response instead.
type Callback func(resp *Response, err error)

// Provider is the capability surface shared by every variant.
type Provider interface {
	// Kind reports which variant was resolved.
	Kind() Kind

	// SendAsync issues a raw request. The callback is invoked from another
	// goroutine, possibly never.
	SendAsync(ctx context.Context, req *Request, cb Callback)

	// NetworkVersion returns the wallet's current network id, or "" when the
	// provider cannot report one.
	NetworkVersion(ctx context.Context) string

	// ToWei converts ether to wei, truncating fractional wei.
	ToWei(ether decimal.Decimal) *big.Int

	// FromWei converts wei to ether.
	FromWei(wei *big.Int) decimal.Decimal
}

// Enabler is the deprecated authorization call some providers still expose.
type Enabler interface {
	Enable(ctx context.Context) ([]string, error)
}

// AccountsRequester is the modern accounts request.
type AccountsRequester interface {
	RequestAccounts(ctx context.Context) ([]string, error)
}
