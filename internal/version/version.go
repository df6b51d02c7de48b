// Package version holds build information and checks GitHub for newer releases.
package version

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/ethpkg/donate/internal/chain"
	"github.com/ethpkg/donate/internal/metrics"
	donateerr "github.com/ethpkg/donate/pkg/errors"
)

// Release lookup defaults.
const (
	DefaultBaseURL = "https://api.github.com"
	DefaultOwner   = "ethpkg"
	DefaultRepo    = "donate"

	httpTimeout     = 15 * time.Second
	maxResponseBody = 64 * 1024
)

// Build metadata, set with -ldflags "-X".
//
//nolint:gochecknoglobals // Set at link time
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// ErrReleaseLookup is returned when the latest release cannot be determined.
//
//nolint:gochecknoglobals // Sentinel error
var ErrReleaseLookup = &donateerr.DonateError{
	Code:     "RELEASE_LOOKUP_FAILED",
	Message:  "could not look up the latest release",
	ExitCode: donateerr.ExitGeneral,
}

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Date    string `json:"date,omitempty"`
	Go      string `json:"go"`
}

// Current returns the build information of this binary.
func Current() BuildInfo {
	return BuildInfo{Version: Version, Commit: Commit, Date: Date, Go: runtime.Version()}
}

func (b BuildInfo) String() string {
	v, commit, date := b.Version, b.Commit, b.Date
	if v == "" {
		v = "dev"
	}
	if commit == "" {
		commit = "unknown"
	}
	if date == "" {
		date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", v, commit, date)
}

// Release is the subset of a GitHub release we use.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
	HTMLURL     string    `json:"html_url"`
}

// Check is the result of comparing the running version with the latest release.
type Check struct {
	Current string `json:"current"`
	Latest  string `json:"latest"`
	URL     string `json:"url,omitempty"`
	IsNewer bool   `json:"update_available"`
}

// ClientOptions configures the release client.
type ClientOptions struct {
	BaseURL     string
	HTTPClient  *http.Client
	RateLimiter *chain.RateLimiter
	Retry       *chain.RetryConfig
}

// Client fetches releases from the GitHub API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *chain.RateLimiter
	retry       chain.RetryConfig
	userAgent   string
}

// NewClient creates a release client.
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
		userAgent:   fmt.Sprintf("ethpkg-donate/%s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH),
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

// LatestRelease returns the latest published release of owner/repo.
func (c *Client) LatestRelease(ctx context.Context, owner, repo string) (*Release, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, owner, repo)

	release, err := chain.RetryWithConfig(ctx, c.retry, func() (*Release, error) {
		return c.fetch(ctx, endpoint)
	})
	metrics.Global.RecordAPIRequest("github", err)
	if err != nil {
		return nil, donateerr.WithCause(ErrReleaseLookup, err)
	}
	return release, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) (*Release, error) {
	if err := c.rateLimiter.Wait(ctx, endpoint); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL is built from the configured GitHub API base
	if err != nil {
		return nil, chain.WrapRetryable(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := chain.CheckHTTPStatus(resp); err != nil {
		return nil, err
	}

	var release Release
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}
	if release.TagName == "" {
		return nil, fmt.Errorf("%w: release has no tag", donateerr.ErrNetworkError)
	}
	return &release, nil
}

// CheckLatest compares current with the latest release of this project.
func (c *Client) CheckLatest(ctx context.Context, current string) (*Check, error) {
	release, err := c.LatestRelease(ctx, DefaultOwner, DefaultRepo)
	if err != nil {
		return nil, err
	}
	return &Check{
		Current: current,
		Latest:  release.TagName,
		URL:     release.HTMLURL,
		IsNewer: IsNewer(current, release.TagName),
	}, nil
}

// Compare orders two versions: -1 if a < b, 0 if equal, 1 if a > b.
// Development builds sort before every release.
func Compare(a, b string) int {
	devA, devB := isDev(a), isDev(b)
	switch {
	case devA && devB:
		return 0
	case devA:
		return -1
	case devB:
		return 1
	}

	pa, pb := parts(a), parts(b)
	for i := range 3 {
		if pa[i] != pb[i] {
			if pa[i] > pb[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// IsNewer reports whether latest is a newer version than current.
func IsNewer(current, latest string) bool {
	return Compare(latest, current) > 0
}

// Normalize strips a leading "v" and any pre-release or build suffix.
func Normalize(v string) string {
	v = strings.TrimLeft(strings.TrimSpace(v), "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	return v
}

func parts(v string) [3]int {
	var out [3]int
	for i, p := range strings.SplitN(Normalize(v), ".", 3) {
		n, err := strconv.Atoi(p)
		if err != nil {
			break
		}
		out[i] = n
	}
	return out
}

// isDev reports whether v is a development build: empty, "dev" or a commit hash.
func isDev(v string) bool {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if v == "" || v == "dev" {
		return true
	}
	v = strings.TrimSuffix(v, "-dirty")
	if len(v) < 7 || len(v) > 40 {
		return false
	}
	hasLetter := false
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
		case (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F'):
			hasLetter = true
		default:
			return false
		}
	}
	return hasLetter
}
