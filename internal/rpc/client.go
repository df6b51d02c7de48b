// Package rpc provides a minimal JSON-RPC 2.0 client over HTTP.
// It backs the legacy web3-style provider, which only offers a raw
// request/response channel.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	donateerr "github.com/ethpkg/donate/pkg/errors"
)

// maxResponseBodySize bounds how much of a node response is read.
const maxResponseBodySize = 4 << 20

var (
	// ErrRPCURLRequired indicates the endpoint URL was not provided.
	ErrRPCURLRequired = &donateerr.DonateError{
		Code:     "RPC_URL_REQUIRED",
		Message:  "RPC URL is required",
		ExitCode: donateerr.ExitInput,
	}

	// ErrRPCResponse indicates a response that is not a JSON-RPC envelope.
	ErrRPCResponse = &donateerr.DonateError{
		Code:     "RPC_INVALID_RESPONSE",
		Message:  "invalid RPC response",
		ExitCode: donateerr.ExitGeneral,
	}
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// Response is a JSON-RPC 2.0 response envelope.
type Response struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	ID      uint64          `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// HasResult reports whether the envelope carries a non-null result.
func (r *Response) HasResult() bool {
	if r == nil {
		return false
	}
	trimmed := bytes.TrimSpace(r.Result)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// ErrorCode returns the JSON-RPC error code.
func (e *Error) ErrorCode() int {
	return e.Code
}

// ClientOptions contains optional configuration for the client.
type ClientOptions struct {
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
	// Headers are added to every request, e.g. an API key header.
	Headers map[string]string
}

// Client is a minimal JSON-RPC 2.0 client.
type Client struct {
	url        string
	httpClient *http.Client
	headers    map[string]string
	idCounter  atomic.Uint64
}

// NewClient creates a new RPC client.
func NewClient(url string, opts *ClientOptions) (*Client, error) {
	if url == "" {
		return nil, ErrRPCURLRequired
	}

	c := &Client{
		url:        url,
		httpClient: &http.Client{},
	}
	if opts != nil {
		if opts.HTTPClient != nil {
			c.httpClient = opts.HTTPClient
		}
		c.headers = opts.Headers
	}
	return c, nil
}

// Do performs a JSON-RPC call and returns the full response envelope.
// A JSON-RPC error object is not a Go error here; only transport and
// decoding failures are.
func (c *Client) Do(ctx context.Context, method string, params []any) (*Response, error) {
	if params == nil {
		params = []any{}
	}

	req := Request{
		JSONRPC: "2.0",
		ID:      c.idCounter.Add(1),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending HTTP request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, donateerr.WithDetails(donateerr.WithCause(ErrRPCResponse, err), map[string]string{
			"status": httpResp.Status,
		})
	}

	return &resp, nil
}
