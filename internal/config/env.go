package config

import (
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Environment variable names.
const (
	EnvHome              = "ETHPKG_HOME"
	EnvProviderURL       = "ETHPKG_PROVIDER_URL"
	EnvLegacyProviderURL = "ETHPKG_LEGACY_PROVIDER_URL"
	EnvNetwork           = "ETHPKG_NETWORK"
	EnvQuoteURL          = "ETHPKG_QUOTE_URL"
	EnvVerifyURL         = "ETHPKG_VERIFY_URL"
	EnvSubmitTimeout     = "ETHPKG_SUBMIT_TIMEOUT"
	EnvOutputFormat      = "ETHPKG_OUTPUT_FORMAT"
	EnvVerbose           = "ETHPKG_VERBOSE"
	EnvLogLevel          = "ETHPKG_LOG_LEVEL"
	EnvNoColor           = "NO_COLOR"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
//
//nolint:gocognit,gocyclo // Environment variable overrides require sequential checks
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvProviderURL); v != "" {
		cfg.Provider.URL = SanitizeURL(v)
	}

	if v := os.Getenv(EnvLegacyProviderURL); v != "" {
		cfg.Provider.LegacyURL = SanitizeURL(v)
	}

	if v := os.Getenv(EnvNetwork); v != "" {
		cfg.Network = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvQuoteURL); v != "" {
		cfg.APIs.QuoteURL = SanitizeURL(v)
	}

	if v := os.Getenv(EnvVerifyURL); v != "" {
		cfg.APIs.VerifyURL = SanitizeURL(v)
	}

	// ETHPKG_SUBMIT_TIMEOUT accepts a duration ("90s") or plain seconds
	if v := os.Getenv(EnvSubmitTimeout); v != "" {
		if d, ok := parseDuration(v); ok {
			cfg.Provider.SubmitTimeout = d
		}
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

func parseDuration(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return d, true
	}
	return 0, false
}

// SanitizeURL removes whitespace and control characters from a URL.
// This is useful for cleaning user-provided endpoints that contain
// copy-paste artifacts.
func SanitizeURL(url string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return -1
		}
		return r
	}, url)
}
