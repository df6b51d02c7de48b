package provider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethpkg/donate/internal/provider"
	"github.com/ethpkg/donate/internal/rpc"
)

// rpcHandler answers a single JSON-RPC call.
type rpcHandler func(method string, params []json.RawMessage) (any, *rpc.Error)

// newRPCServer starts a JSON-RPC 2.0 mock server.
func newRPCServer(t *testing.T, h rpcHandler) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		result, rpcErr := h(req.Method, req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type stubRequester struct {
	fn func(method string, params ...any) (json.RawMessage, error)
}

func (s *stubRequester) Request(_ context.Context, method string, params ...any) (json.RawMessage, error) {
	return s.fn(method, params...)
}

type enablingRequester struct {
	stubRequester

	accounts []string
}

func (e *enablingRequester) Enable(context.Context) ([]string, error) {
	return e.accounts, nil
}

// funcSender is a legacy channel driven by a function.
type funcSender func(req *provider.Request, cb provider.Callback)

func (f funcSender) SendAsync(req *provider.Request, cb provider.Callback) {
	f(req, cb)
}
