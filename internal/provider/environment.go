package provider

import (
	"context"
	"encoding/json"
)

// Global names under which a host injects providers.
const (
	GlobalEthereum = "ethereum"
	GlobalWeb3     = "web3"
)

// Environment holds the objects a host injected, keyed by global name.
type Environment map[string]any

// Lookup returns the object injected under name.
func (e Environment) Lookup(name string) (any, bool) {
	if e == nil {
		return nil, false
	}
	v, ok := e[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Requester is the generic request method of a modern injected provider.
// JSON-RPC errors are returned as errors implementing ErrorCode() int.
type Requester interface {
	Request(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

// AsyncSender is the callback-based channel of a legacy provider.
type AsyncSender interface {
	SendAsync(req *Request, cb Callback)
}

// Web3 is the legacy namespace object.
type Web3 interface {
	CurrentProvider() AsyncSender
}
