// Package config provides configuration management for ethpkg-donate.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ethpkg/donate/internal/fileutil"
	donateerr "github.com/ethpkg/donate/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Home     string         `yaml:"home"`
	Network  string         `yaml:"network"`
	Provider ProviderConfig `yaml:"provider"`
	Donation DonationConfig `yaml:"donation"`
	APIs     APIConfig      `yaml:"apis"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ProviderConfig defines how the wallet provider is reached.
type ProviderConfig struct {
	// URL is a modern provider endpoint (http, ws or ipc path).
	URL string `yaml:"url"`
	// LegacyURL is a legacy web3 provider endpoint (http only).
	LegacyURL string `yaml:"legacy_url"`
	// SubmitTimeout bounds the wait for eth_sendTransaction. Zero waits
	// until the wallet answers or the command is interrupted.
	SubmitTimeout time.Duration `yaml:"submit_timeout"`
	// BalanceCheckTimeout bounds the advisory balance read on mainnet.
	BalanceCheckTimeout time.Duration `yaml:"balance_check_timeout"`
	// NetworkCheckTimeout bounds the wallet's network id read.
	NetworkCheckTimeout time.Duration `yaml:"network_check_timeout"`
}

// DonationConfig defines donation amounts and safety limits.
// Amounts are decimal strings so they survive round trips exactly.
type DonationConfig struct {
	Amounts       []string `yaml:"amounts"`
	DefaultAmount string   `yaml:"default_amount"`
	MaxUSD        string   `yaml:"max_usd"`
	MaxNative     string   `yaml:"max_native"`
}

// APIConfig defines the collaborator APIs.
type APIConfig struct {
	QuoteURL    string        `yaml:"quote_url"`
	QuotePair   string        `yaml:"quote_pair"`
	VerifyURL   string        `yaml:"verify_url"`
	// QuoteMaxAge is how long a fetched price is reused. Zero disables the cache.
	QuoteMaxAge time.Duration `yaml:"quote_max_age"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, donateerr.WithDetails(donateerr.WithCause(donateerr.ErrConfigNotFound, err), map[string]string{
				"path": path,
			})
		}
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, donateerr.WithDetails(donateerr.WithCause(donateerr.ErrConfigInvalid, err), map[string]string{
			"path": path,
		})
	}

	return cfg, nil
}

// LoadOrDefaults reads the file at path, falling back to defaults when it
// does not exist.
func LoadOrDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, donateerr.ErrConfigNotFound) {
		return Defaults(), nil
	}
	return cfg, err
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return fileutil.WriteAtomic(path, data, 0o600)
}

// CachePath returns the price cache file inside home.
func CachePath(home string) string {
	return filepath.Join(ExpandHome(home), "cache", "quotes.json")
}

// Path returns the config file path inside home.
func Path(home string) string {
	return filepath.Join(ExpandHome(home), "config.yaml")
}

// ExpandHome expands a leading "~/" to the user's home directory.
func ExpandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// DefaultHome returns the default ethpkg home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ethpkg"
	}
	return filepath.Join(home, ".ethpkg")
}
