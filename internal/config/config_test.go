package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tradebridge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TRADEBRIDGE_HOST", "TRADEBRIDGE_PORT", "BROKER_PROVIDER",
		"TRADING_ACCOUNT", "ALPACA_API_KEY", "ALPACA_API_SECRET",
		"ALPACA_BASE_URL", "APCA_API_KEY_ID", "APCA_API_SECRET_KEY",
		"SQLITE_PATH", "JOURNAL_DIR", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 8090
  grpc_port: 9090
broker:
  provider: "alpaca"
  connect_timeout_sec: 5
  alpaca:
    api_key: "test-key"
    api_secret: "test-secret"
    base_url: "https://paper-api.alpaca.markets"
trading:
  account_id: "PA12345"
  on_unknown_order_type: "default_market"
  status_poll_timeout_ms: 1500
  status_poll_interval_ms: 50
symbols:
  futures_prefixes: ["VX"]
  futures_exchange: "CFE"
journal:
  sqlite_path: "/tmp/tradebridge/journal.db"
  data_dir: "/tmp/tradebridge/data"
logging:
  level: "debug"
  format: "text"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8090)
	}
	if cfg.Server.GRPCPort != 9090 {
		t.Errorf("Server.GRPCPort = %d, want %d", cfg.Server.GRPCPort, 9090)
	}

	if cfg.Broker.Provider != "alpaca" {
		t.Errorf("Broker.Provider = %q, want %q", cfg.Broker.Provider, "alpaca")
	}
	if got := cfg.Broker.ConnectTimeout(); got != 5*time.Second {
		t.Errorf("ConnectTimeout() = %v, want 5s", got)
	}
	if cfg.Broker.Alpaca.APIKey != "test-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q", cfg.Broker.Alpaca.APIKey, "test-key")
	}

	if cfg.Trading.AccountID != "PA12345" {
		t.Errorf("Trading.AccountID = %q, want %q", cfg.Trading.AccountID, "PA12345")
	}
	if got := cfg.Trading.StatusPollTimeout(); got != 1500*time.Millisecond {
		t.Errorf("StatusPollTimeout() = %v, want 1.5s", got)
	}
	if got := cfg.Trading.StatusPollInterval(); got != 50*time.Millisecond {
		t.Errorf("StatusPollInterval() = %v, want 50ms", got)
	}

	if len(cfg.Symbols.FuturesPrefixes) != 1 || cfg.Symbols.FuturesPrefixes[0] != "VX" {
		t.Errorf("Symbols.FuturesPrefixes = %v, want [VX]", cfg.Symbols.FuturesPrefixes)
	}
	// Defaults fill in unset symbol fields.
	if cfg.Symbols.EquityExchange != "SMART" {
		t.Errorf("Symbols.EquityExchange = %q, want default %q", cfg.Symbols.EquityExchange, "SMART")
	}

	if cfg.Journal.SQLitePath != "/tmp/tradebridge/journal.db" {
		t.Errorf("Journal.SQLitePath = %q, want %q", cfg.Journal.SQLitePath, "/tmp/tradebridge/journal.db")
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %q/%q, want debug/text", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(writeConfig(t, `{}`))
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Broker.Provider != "simulator" {
		t.Errorf("default Broker.Provider = %q, want simulator", cfg.Broker.Provider)
	}
	if cfg.Trading.OnUnknownOrderType != "default_market" {
		t.Errorf("default OnUnknownOrderType = %q, want default_market", cfg.Trading.OnUnknownOrderType)
	}
	if got := cfg.Broker.ConnectTimeout(); got != 10*time.Second {
		t.Errorf("default ConnectTimeout() = %v, want 10s", got)
	}
	if got := cfg.Trading.StatusPollTimeout(); got != 2*time.Second {
		t.Errorf("default StatusPollTimeout() = %v, want 2s", got)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
broker:
  provider: "simulator"
  alpaca:
    api_key: "yaml-key"
    api_secret: "yaml-secret"
`)

	t.Setenv("ALPACA_API_KEY", "env-key")
	t.Setenv("TRADING_ACCOUNT", "ENV-ACCT")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Broker.Alpaca.APIKey != "env-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q (env override)", cfg.Broker.Alpaca.APIKey, "env-key")
	}
	// api_secret should remain from YAML since no env override was set.
	if cfg.Broker.Alpaca.APISecret != "yaml-secret" {
		t.Errorf("Alpaca.APISecret = %q, want %q (from YAML)", cfg.Broker.Alpaca.APISecret, "yaml-secret")
	}
	if cfg.Trading.AccountID != "ENV-ACCT" {
		t.Errorf("Trading.AccountID = %q, want %q (env override)", cfg.Trading.AccountID, "ENV-ACCT")
	}
}

func TestLoadRejectsBadPolicy(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeConfig(t, `
trading:
  on_unknown_order_type: "explode"
`))
	if err == nil {
		t.Fatal("Load() accepted unknown on_unknown_order_type policy")
	}
}

func TestLoadRejectsBadProvider(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeConfig(t, `
broker:
  provider: "etrade"
`))
	if err == nil {
		t.Fatal("Load() accepted unknown broker provider")
	}
}
