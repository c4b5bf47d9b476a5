package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func envMap(m map[string]string) Getenv {
	return func(k string) string { return m[k] }
}

func TestLoadDefaultsAreSimulated(t *testing.T) {
	cfg, err := Load("", envMap(nil))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Chain.Simulated() {
		t.Errorf("default config must be simulated")
	}
	if cfg.Chain.ConfirmTimeout != 60*time.Second {
		t.Errorf("ConfirmTimeout = %v, want 60s", cfg.Chain.ConfirmTimeout)
	}
	if cfg.PublicURL != "" {
		t.Errorf("PublicURL = %q, want empty so links follow the request origin", cfg.PublicURL)
	}
	if cfg.RateLimit.Max != 30 || cfg.RateLimit.Window != 5*time.Minute {
		t.Errorf("unexpected rate limit %+v", cfg.RateLimit)
	}
}

func TestChainEnabled(t *testing.T) {
	tests := []struct {
		name  string
		chain ChainConfig
		want  bool
	}{
		{"nothing", ChainConfig{}, false},
		{"only rpc", ChainConfig{RPCURL: "http://localhost:8545"}, false},
		{"zero contract", ChainConfig{RPCURL: "http://localhost:8545", ContractAddress: ZeroAddress}, false},
		{"both", ChainConfig{RPCURL: "http://localhost:8545", ContractAddress: "0x7b7C41cf5bc986F406c7067De6e69f200c27D63f"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.chain.ChainEnabled(); got != tt.want {
				t.Errorf("ChainEnabled() = %v, want %v", got, tt.want)
			}
			if tt.chain.Simulated() == tt.want {
				t.Errorf("Simulated() must be the negation of ChainEnabled() without ForceMock")
			}
		})
	}

	forced := ChainConfig{RPCURL: "http://localhost:8545", ContractAddress: "0x7b7C41cf5bc986F406c7067De6e69f200c27D63f", ForceMock: true}
	if !forced.Simulated() {
		t.Errorf("ForceMock must win over a configured chain")
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "veritas.yaml")
	yml := `
port: "9000"
public_url: https://file.example/
chain:
  network: mainnet
  rpc_url: http://file-rpc
  confirm_timeout: 1s
rate_limit:
  max: 5
  window: 1m
features:
  legal: false
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, envMap(map[string]string{
		"RPC_URL":          "http://env-rpc",
		"CONTRACT_ADDRESS": "0x00000000000000000000000000000000000000ab",
		"CHAIN_ID":         "1",
		"VERITAS_MOCK":     "true",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Port = %s, want 9000 from file", cfg.Port)
	}
	if cfg.PublicURL != "https://file.example" {
		t.Errorf("PublicURL = %s, trailing slash must be trimmed", cfg.PublicURL)
	}
	if cfg.Chain.RPCURL != "http://env-rpc" {
		t.Errorf("RPCURL = %s, env must override file", cfg.Chain.RPCURL)
	}
	if cfg.Chain.Network != "mainnet" || cfg.Chain.ChainID != 1 {
		t.Errorf("unexpected chain %+v", cfg.Chain)
	}
	if cfg.Chain.ConfirmTimeout != 60*time.Second {
		t.Errorf("ConfirmTimeout = %v, the file must not change it", cfg.Chain.ConfirmTimeout)
	}
	if cfg.RateLimit.Max != 5 || cfg.RateLimit.Window != time.Minute {
		t.Errorf("unexpected rate limit %+v", cfg.RateLimit)
	}
	if cfg.Features.Legal || !cfg.Features.Payroll {
		t.Errorf("unexpected features %+v", cfg.Features)
	}
	if !cfg.Chain.Simulated() {
		t.Errorf("VERITAS_MOCK=true must force simulation")
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	if _, err := Load("", envMap(map[string]string{"CHAIN_ID": "sepolia"})); err == nil {
		t.Errorf("Load() must reject a non numeric CHAIN_ID")
	}
	if _, err := Load("", envMap(map[string]string{"VERITAS_MOCK": "perhaps"})); err == nil {
		t.Errorf("Load() must reject a non boolean VERITAS_MOCK")
	}
}

func TestExplorerURLs(t *testing.T) {
	if got := ExplorerAddressURL("sepolia", "0xabc"); got != "https://sepolia.etherscan.io/address/0xabc" {
		t.Errorf("ExplorerAddressURL() = %s", got)
	}
	if got := ExplorerTxURL("Mainnet", "0x01"); got != "https://etherscan.io/tx/0x01" {
		t.Errorf("ExplorerTxURL() = %s", got)
	}
	if got := ExplorerAddressURL("mock", "0xabc"); got != "" {
		t.Errorf("unknown network must have no explorer, got %s", got)
	}
}
