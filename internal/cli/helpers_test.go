package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ethpkg/donate/internal/config"
	"github.com/ethpkg/donate/internal/quote"
	"github.com/ethpkg/donate/internal/rpc"
	"github.com/ethpkg/donate/internal/verify"
	"github.com/ethpkg/donate/internal/version"
	donateerr "github.com/ethpkg/donate/pkg/errors"
)

const testSigner = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

// errUnexpectedCall is returned by stubs that a test expects to stay unused.
var errUnexpectedCall = donateerr.New("UNEXPECTED_CALL", "stub called unexpectedly")

type stubPrices struct {
	price string
	err   error
}

func (s *stubPrices) BuyPrice(_ context.Context, pair string) (*quote.Quote, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &quote.Quote{Base: "ETH", Currency: "USD", Amount: decimal.RequireFromString(s.price)}, nil
}

type stubVerifier struct {
	result *verify.Result
	err    error
}

func (s *stubVerifier) Verify(_ context.Context, ref verify.PackageRef) (*verify.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	r := *s.result
	r.Package = ref
	return &r, nil
}

type stubReleases struct {
	check *version.Check
}

func (s *stubReleases) CheckLatest(_ context.Context, current string) (*version.Check, error) {
	c := *s.check
	c.Current = current
	return &c, nil
}

func signedResult(addresses ...string) *verify.Result {
	r := &verify.Result{Version: "1.3.0", Valid: true}
	for _, a := range addresses {
		r.Signers = append(r.Signers, verify.Signer{Address: a})
	}
	return r
}

// withStubs replaces the network-facing constructors for one test.
func withStubs(t *testing.T, prices PriceSource, verifier Verifier, releases ReleaseChecker) {
	t.Helper()
	origPrices, origVerifier, origReleases := newPriceSourceFn, newVerifierFn, newReleaseCheckerFn
	t.Cleanup(func() {
		newPriceSourceFn, newVerifierFn, newReleaseCheckerFn = origPrices, origVerifier, origReleases
	})
	newPriceSourceFn = func(*config.Config) PriceSource { return prices }
	newVerifierFn = func(*config.Config) Verifier { return verifier }
	newReleaseCheckerFn = func(*config.Config) ReleaseChecker { return releases }
}

// resetState restores flag variables and process-wide state between runs.
func resetState() {
	homeDir, outputFormat, verbose = "", "auto", false
	providerURL, legacyURL, networkName, showMetrics = "", "", "", false
	donateAmount, donateTo, donatePrice, donateQR = "", "", "", false
	configForce, versionCheck = false, false
	donationInFlight.Store(false)
	cfg, logger, formatter = nil, nil, nil
	resetHelpFlags(rootCmd)
}

// resetHelpFlags clears --help, which cobra leaves set on reused commands.
func resetHelpFlags(c *cobra.Command) {
	if f := c.Flags().Lookup("help"); f != nil {
		_ = f.Value.Set("false")
		f.Changed = false
	}
	for _, sub := range c.Commands() {
		resetHelpFlags(sub)
	}
}

// executeCommand runs the CLI in an isolated home directory.
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetState()
	t.Cleanup(resetState)

	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, env := range []string{
		config.EnvHome, config.EnvProviderURL, config.EnvLegacyProviderURL, config.EnvNetwork,
		config.EnvQuoteURL, config.EnvVerifyURL, config.EnvSubmitTimeout, config.EnvOutputFormat,
		config.EnvVerbose, config.EnvLogLevel,
	} {
		t.Setenv(env, "")
	}

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err = Execute(context.Background())
	return out.String(), errOut.String(), err
}

// walletServer is a JSON-RPC wallet endpoint that records the calls it receives.
type walletServer struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]func(params []json.RawMessage) (any, *rpc.Error)
	calls    map[string][]json.RawMessage
}

func newWalletServer(t *testing.T, networkID string, txResult func(params []json.RawMessage) (any, *rpc.Error)) *walletServer {
	t.Helper()
	ws := &walletServer{calls: map[string][]json.RawMessage{}}
	ws.handlers = map[string]func([]json.RawMessage) (any, *rpc.Error){
		"eth_requestAccounts": func([]json.RawMessage) (any, *rpc.Error) {
			return []string{"0x1111111111111111111111111111111111111111"}, nil
		},
		"net_version": func([]json.RawMessage) (any, *rpc.Error) {
			return networkID, nil
		},
		"eth_sendTransaction": txResult,
	}

	ws.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ws.mu.Lock()
		ws.calls[req.Method] = append(ws.calls[req.Method], req.Params...)
		h, ok := ws.handlers[req.Method]
		ws.mu.Unlock()

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if !ok {
			resp["error"] = &rpc.Error{Code: -32601, Message: "method not found"}
		} else if result, rpcErr := h(req.Params); rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(ws.Close)
	return ws
}

func (ws *walletServer) paramsOf(method string) []json.RawMessage {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.calls[method]
}

func txHash(hash string) func([]json.RawMessage) (any, *rpc.Error) {
	return func([]json.RawMessage) (any, *rpc.Error) { return hash, nil }
}

func txError(code int, msg string) func([]json.RawMessage) (any, *rpc.Error) {
	return func([]json.RawMessage) (any, *rpc.Error) { return nil, &rpc.Error{Code: code, Message: msg} }
}

func decodeJSON(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatalf("invalid JSON output %q: %v", s, err)
	}
	return m
}
