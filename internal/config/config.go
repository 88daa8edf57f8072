// Package config loads the runtime configuration: a JSON file describing
// the ledger endpoint, bank contracts and account bindings, with secrets
// overridable from the environment via a .env file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultInterval is the upload interval used when the config does not set
// one.
const DefaultInterval = 5 * time.Minute

// Environment variables overriding their config-file counterparts. The
// token in particular should come from the environment rather than the
// config file.
const (
	EnvLedgerURL   = "BANKSYNC_LEDGER_URL"
	EnvLedgerToken = "BANKSYNC_LEDGER_TOKEN"
)

type Config struct {
	Ledger    Ledger     `json:"ledger"`
	CacheSize int        `json:"cache_size"`
	Interval  string     `json:"upload_interval"`
	Contracts []Contract `json:"contracts"`
	Accounts  []Account  `json:"accounts"`
}

type Ledger struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

// Contract describes one bank login to register.
type Contract struct {
	Name        string            `json:"name"`
	Bank        string            `json:"bank"`
	AccountType string            `json:"account_type"`
	Credentials map[string]string `json:"credentials"`
}

// Account binds a contract's source account to a ledger budget account.
type Account struct {
	Contract        string `json:"contract"`
	Budget          string `json:"budget"`
	Account         string `json:"account"`
	SourceAccountID string `json:"source_account_id"`
}

// Load reads the JSON config at path, merges .env and environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if url := os.Getenv(EnvLedgerURL); url != "" {
		cfg.Ledger.URL = url
	}
	if token := os.Getenv(EnvLedgerToken); token != "" {
		cfg.Ledger.Token = token
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// UploadInterval parses the configured interval, falling back to
// DefaultInterval when unset.
func (c *Config) UploadInterval() (time.Duration, error) {
	if c.Interval == "" {
		return DefaultInterval, nil
	}
	interval, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 0, fmt.Errorf("parsing upload_interval %q: %w", c.Interval, err)
	}
	if interval <= 0 {
		return 0, fmt.Errorf("upload_interval %q must be positive", c.Interval)
	}
	return interval, nil
}

// Validate checks internal consistency: ledger coordinates present, contract
// names unique, every account referencing a defined contract.
func (c *Config) Validate() error {
	if c.Ledger.URL == "" {
		return fmt.Errorf("ledger url is required (config or %s)", EnvLedgerURL)
	}
	if c.Ledger.Token == "" {
		return fmt.Errorf("ledger token is required (config or %s)", EnvLedgerToken)
	}

	names := make(map[string]struct{}, len(c.Contracts))
	for i, contract := range c.Contracts {
		if contract.Name == "" || contract.Bank == "" || contract.AccountType == "" {
			return fmt.Errorf("contract %d: name, bank and account_type are required", i)
		}
		key := strings.ToLower(contract.Name)
		if _, dup := names[key]; dup {
			return fmt.Errorf("duplicate contract name %q", contract.Name)
		}
		names[key] = struct{}{}
	}

	for i, account := range c.Accounts {
		if account.Budget == "" || account.Account == "" {
			return fmt.Errorf("account %d: budget and account are required", i)
		}
		if _, ok := names[strings.ToLower(account.Contract)]; !ok {
			return fmt.Errorf("account %d references unknown contract %q", i, account.Contract)
		}
	}
	return nil
}
