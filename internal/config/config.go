// Package config loads the tradebridge YAML configuration and applies
// environment variable overrides. The loaded Config value is passed
// explicitly into constructors; there is no package-level state.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for tradebridge.
type Config struct {
	Server  Server  `yaml:"server"`
	Broker  Broker  `yaml:"broker"`
	Trading Trading `yaml:"trading"`
	Symbols Symbols `yaml:"symbols"`
	Journal Journal `yaml:"journal"`
	Logging Logging `yaml:"logging"`
}

// Server holds network listener configuration.
type Server struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	GRPCPort int    `yaml:"grpc_port"`
}

// Broker selects and configures the broker gateway.
type Broker struct {
	// Provider is "alpaca" or "simulator".
	Provider string `yaml:"provider"`

	// ConnectTimeoutSec bounds session acquisition per request.
	ConnectTimeoutSec int `yaml:"connect_timeout_sec"`

	Alpaca Alpaca `yaml:"alpaca"`
}

// ConnectTimeout returns the session acquisition timeout.
func (b Broker) ConnectTimeout() time.Duration {
	if b.ConnectTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(b.ConnectTimeoutSec) * time.Second
}

// Alpaca holds credentials and endpoint for the Alpaca trading API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
}

// Trading defines order execution behaviour.
type Trading struct {
	// AccountID is attached to submitted orders when the broker supports
	// per-account routing. May be empty.
	AccountID string `yaml:"account_id"`

	// OnUnknownOrderType is the policy for unrecognised order type strings:
	// "default_market" submits the order as MARKET with a warning in the
	// result; "reject" fails that order.
	OnUnknownOrderType string `yaml:"on_unknown_order_type"`

	// StatusPollTimeoutMs and StatusPollIntervalMs bound the post-submit
	// wait for a broker acknowledgement.
	StatusPollTimeoutMs  int `yaml:"status_poll_timeout_ms"`
	StatusPollIntervalMs int `yaml:"status_poll_interval_ms"`
}

// StatusPollTimeout returns the post-submit acknowledgement window.
func (t Trading) StatusPollTimeout() time.Duration {
	if t.StatusPollTimeoutMs <= 0 {
		return 2 * time.Second
	}
	return time.Duration(t.StatusPollTimeoutMs) * time.Millisecond
}

// StatusPollInterval returns the polling interval within the window.
func (t Trading) StatusPollInterval() time.Duration {
	if t.StatusPollIntervalMs <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(t.StatusPollIntervalMs) * time.Millisecond
}

// Symbols controls instrument resolution.
type Symbols struct {
	FuturesPrefixes []string `yaml:"futures_prefixes"`
	EquityExchange  string   `yaml:"equity_exchange"`
	EquityCurrency  string   `yaml:"equity_currency"`
	FuturesExchange string   `yaml:"futures_exchange"`
	FuturesCurrency string   `yaml:"futures_currency"`
}

// Journal holds paths for batch result persistence.
type Journal struct {
	SQLitePath string `yaml:"sqlite_path"`
	DataDir    string `yaml:"data_dir"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, applies environment variable overrides, fills defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks fields whose misconfiguration would only surface at
// request time.
func (c *Config) Validate() error {
	switch c.Broker.Provider {
	case "alpaca", "simulator":
	default:
		return fmt.Errorf("config: unknown broker provider %q", c.Broker.Provider)
	}

	switch c.Trading.OnUnknownOrderType {
	case "default_market", "reject":
	default:
		return fmt.Errorf("config: unknown on_unknown_order_type policy %q", c.Trading.OnUnknownOrderType)
	}

	if c.Server.Port <= 0 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}

	return nil
}

// applyDefaults fills zero values with sensible defaults so a minimal config
// file still produces a working server.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Broker.Provider == "" {
		cfg.Broker.Provider = "simulator"
	}
	if cfg.Trading.OnUnknownOrderType == "" {
		cfg.Trading.OnUnknownOrderType = "default_market"
	}
	if cfg.Symbols.EquityExchange == "" {
		cfg.Symbols.EquityExchange = "SMART"
	}
	if cfg.Symbols.EquityCurrency == "" {
		cfg.Symbols.EquityCurrency = "USD"
	}
	if cfg.Symbols.FuturesExchange == "" {
		cfg.Symbols.FuturesExchange = "CFE"
	}
	if cfg.Symbols.FuturesCurrency == "" {
		cfg.Symbols.FuturesCurrency = "USD"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADEBRIDGE_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("TRADEBRIDGE_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}

	if v := os.Getenv("BROKER_PROVIDER"); v != "" {
		cfg.Broker.Provider = v
	}
	if v := os.Getenv("TRADING_ACCOUNT"); v != "" {
		cfg.Trading.AccountID = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Broker.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Broker.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Broker.Alpaca.BaseURL = v
	}

	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Journal.SQLitePath = v
	}
	if v := os.Getenv("JOURNAL_DIR"); v != "" {
		cfg.Journal.DataDir = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Standard Alpaca env vars (highest priority — canonical names used by SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Broker.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Broker.Alpaca.APISecret = v
	}
}
