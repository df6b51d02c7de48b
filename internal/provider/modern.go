package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// Modern wraps an injected provider exposing a generic request method.
type Modern struct {
	units
	requester Requester
}

// NewModern wraps a Requester.
func NewModern(r Requester) *Modern {
	return &Modern{requester: r}
}

// Kind returns KindModern.
func (m *Modern) Kind() Kind {
	return KindModern
}

// SendAsync issues the request on its own goroutine. JSON-RPC errors are
// delivered inside the response; other failures as the callback error.
// An answer without a result is a response, not a transport failure.
func (m *Modern) SendAsync(ctx context.Context, req *Request, cb Callback) {
	go func() {
		raw, err := m.requester.Request(ctx, req.Method, req.Params...)
		if err != nil {
			if errors.Is(err, gethrpc.ErrNoResult) {
				cb(&Response{JSONRPC: "2.0"}, nil)
				return
			}
			var ce codedError
			if errors.As(err, &ce) {
				cb(&Response{JSONRPC: "2.0", Error: toResponseError(ce)}, nil)
				return
			}
			cb(nil, err)
			return
		}
		cb(&Response{JSONRPC: "2.0", Result: raw}, nil)
	}()
}

// NetworkVersion queries net_version.
func (m *Modern) NetworkVersion(ctx context.Context) string {
	raw, err := m.requester.Request(ctx, "net_version")
	if err != nil {
		return ""
	}
	return decodeNetworkVersion(raw)
}

// RequestAccounts issues eth_requestAccounts.
func (m *Modern) RequestAccounts(ctx context.Context) ([]string, error) {
	raw, err := m.requester.Request(ctx, "eth_requestAccounts")
	if err != nil {
		return nil, err
	}
	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("decoding accounts: %w", err)
	}
	return accounts, nil
}

// EnablingModern is a modern provider whose injected object also offers
// the deprecated enable call.
type EnablingModern struct {
	*Modern
	enabler Enabler
}

// Enable forwards to the injected object.
func (m *EnablingModern) Enable(ctx context.Context) ([]string, error) {
	return m.enabler.Enable(ctx)
}

func toResponseError(ce codedError) *ResponseError {
	re := &ResponseError{Code: ce.ErrorCode(), Message: ce.Error()}

	var de gethrpc.DataError
	if errors.As(ce, &de) && de.ErrorData() != nil {
		if data, err := json.Marshal(de.ErrorData()); err == nil {
			re.Data = data
		}
	}
	return re
}

// decodeNetworkVersion accepts both the string and numeric encodings wallets use.
func decodeNetworkVersion(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// Injected is a Requester backed by a go-ethereum RPC client. It stands in
// for the object a browser wallet injects, reached over HTTP, WebSocket or IPC.
type Injected struct {
	client *gethrpc.Client
}

// NewInjected wraps an existing RPC client.
func NewInjected(client *gethrpc.Client) *Injected {
	return &Injected{client: client}
}

// DialInjected connects to a wallet endpoint.
func DialInjected(ctx context.Context, endpoint string) (*Injected, error) {
	client, err := gethrpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("dialing provider %s: %w", endpoint, err)
	}
	return &Injected{client: client}, nil
}

// Request performs a JSON-RPC call and returns the raw result.
func (i *Injected) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	var result json.RawMessage
	if err := i.client.CallContext(ctx, &result, method, params...); err != nil {
		return nil, err
	}
	return result, nil
}

// Close closes the underlying connection.
func (i *Injected) Close() {
	i.client.Close()
}
