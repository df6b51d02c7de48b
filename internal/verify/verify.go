// Package verify looks up package signatures on the ethpkg API to find the
// address a donation goes to.
package verify

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethpkg/donate/internal/chain"
	"github.com/ethpkg/donate/internal/metrics"
	donateerr "github.com/ethpkg/donate/pkg/errors"
)

const (
	// DefaultBaseURL is the ethpkg API base URL.
	DefaultBaseURL = "https://api.ethpkg.org"

	httpTimeout     = 30 * time.Second
	maxResponseBody = 1 << 20
)

// Signer is one signature found on a package.
type Signer struct {
	Address     string `json:"address"`
	Certificate string `json:"certificate,omitempty"`
}

// Result is the outcome of a verification lookup.
type Result struct {
	Package PackageRef `json:"-"`
	Version string     `json:"version,omitempty"`
	Valid   bool       `json:"valid"`
	Signers []Signer   `json:"signers"`
	Error   string     `json:"error,omitempty"`
}

// Recipient returns the address of the first signer. Unsigned or invalid
// packages cannot receive donations.
func (r *Result) Recipient() (string, error) {
	if r == nil || !r.Valid {
		return "", donateerr.WithDetails(donateerr.ErrPackageUnsigned, map[string]string{
			"package": r.packageString(),
		})
	}
	if len(r.Signers) == 0 || r.Signers[0].Address == "" {
		return "", donateerr.WithDetails(donateerr.ErrRecipientMissing, map[string]string{
			"package": r.packageString(),
		})
	}
	return r.Signers[0].Address, nil
}

func (r *Result) packageString() string {
	if r == nil {
		return ""
	}
	return r.Package.String()
}

// verifyResponse is the ethpkg API payload.
type verifyResponse struct {
	VerificationResult *struct {
		IsValid bool     `json:"isValid"`
		Signers []Signer `json:"signers"`
		Error   string   `json:"error"`
	} `json:"verificationResult"`
	PkgJSON *struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"pkgJson"`
}

// ClientOptions configures the verification client.
type ClientOptions struct {
	// BaseURL overrides the default API URL (useful for testing).
	BaseURL string
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
	// RateLimiter overrides the default limiter.
	RateLimiter *chain.RateLimiter
	// Retry overrides the default retry configuration.
	Retry *chain.RetryConfig
}

// Client queries the ethpkg verification API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *chain.RateLimiter
	retry       chain.RetryConfig
}

// NewClient creates a verification client.
func NewClient(opts *ClientOptions) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: httpTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		rateLimiter: chain.DefaultRateLimiter(),
		retry:       chain.DefaultRetryConfig(),
	}

	if opts != nil {
		if opts.BaseURL != "" {
			c.baseURL = strings.TrimRight(opts.BaseURL, "/")
		}
		if opts.HTTPClient != nil {
			c.httpClient = opts.HTTPClient
		}
		if opts.RateLimiter != nil {
			c.rateLimiter = opts.RateLimiter
		}
		if opts.Retry != nil {
			c.retry = *opts.Retry
		}
	}
	return c
}

// Verify looks up the signatures of ref.
func (c *Client) Verify(ctx context.Context, ref PackageRef) (*Result, error) {
	endpoint := fmt.Sprintf("%s/verify/%s", c.baseURL, ref)

	res, err := chain.RetryWithConfig(ctx, c.retry, func() (*Result, error) {
		return c.fetch(ctx, endpoint)
	})
	metrics.Global.RecordAPIRequest("verify", err)
	if err != nil {
		return nil, donateerr.Wrap(err, "verifying %s", ref)
	}
	res.Package = ref
	return res, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) (*Result, error) {
	if err := c.rateLimiter.Wait(ctx, endpoint); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: URL is built from config and a parsed package reference
	if err != nil {
		return nil, chain.WrapRetryable(fmt.Errorf("sending request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, donateerr.ErrPackageNotFound
	}
	if err := chain.CheckHTTPStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var payload verifyResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	res := &Result{}
	if payload.PkgJSON != nil {
		res.Version = payload.PkgJSON.Version
	}
	if vr := payload.VerificationResult; vr != nil {
		res.Valid = vr.IsValid
		res.Signers = vr.Signers
		res.Error = vr.Error
	}
	return res, nil
}
