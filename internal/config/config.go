// Package config holds the explicit configuration object built once at startup
// and passed to every component. There are no package-level toggles: anything
// that changes behavior is a field here.
package config

import (
	"net"
	"strings"
	"time"
)

// ZeroAddress is the account identifier the ledger uses to mean "nobody".
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// Config is the configuration of the service.
type Config struct {
	Development bool   `yaml:"development"`
	ListenHost  string `yaml:"listen_host"`
	Port        string `yaml:"port"`

	// PublicURL is the origin the service is reached at. It is the default
	// base of the verification links printed on certificates. When empty,
	// links use the origin of each request.
	PublicURL string `yaml:"public_url"`
	AppName   string `yaml:"app_name"`

	Chain ChainConfig `yaml:"chain"`

	DatabasePath  string `yaml:"database_path"`
	AdminPassword string `yaml:"-"`

	RateLimit      RateLimitConfig `yaml:"rate_limit"`
	MaxUploadBytes int64           `yaml:"max_upload_bytes"`

	Features Features `yaml:"features"`

	// TemplateDir, when set, serves the page templates from disk and reloads
	// them on every request.
	TemplateDir string `yaml:"template_dir"`
}

// ChainConfig configures access to the anchoring contract.
type ChainConfig struct {
	RPCURL          string `yaml:"rpc_url"`
	ContractAddress string `yaml:"contract_address"`
	ChainID         int64  `yaml:"chain_id"`
	Network         string `yaml:"network"`

	// PrivateKey signs anchor transactions on the server-side path.
	// It is never read from the YAML file.
	PrivateKey string `yaml:"-"`

	// ForceMock short-circuits anchoring even if a contract is configured.
	ForceMock bool `yaml:"force_mock"`

	// ConfirmTimeout bounds the wait for a mined receipt. It stays at the
	// 60 s default outside tests.
	ConfirmTimeout time.Duration `yaml:"-"`
}

// RateLimitConfig bounds requests per client IP on the API routes.
type RateLimitConfig struct {
	Max    int           `yaml:"max"`
	Window time.Duration `yaml:"window"`
}

// Features enables the optional parts of the service.
type Features struct {
	Payroll      bool `yaml:"payroll" json:"payroll"`
	Accounting   bool `yaml:"accounting" json:"accounting"`
	Legal        bool `yaml:"legal" json:"legal"`
	Construction bool `yaml:"construction" json:"construction"`
	PDF          bool `yaml:"pdf" json:"pdf"`
	QR           bool `yaml:"qr" json:"qr"`
	Anchoring    bool `yaml:"anchoring" json:"anchoring"`
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	return Config{
		ListenHost: "0.0.0.0",
		Port:       "8080",
		AppName:    "VeritasChain",
		Chain: ChainConfig{
			ChainID:        11155111,
			Network:        "sepolia",
			ConfirmTimeout: 60 * time.Second,
		},
		DatabasePath: "./data/veritas.db",
		RateLimit: RateLimitConfig{
			Max:    30,
			Window: 5 * time.Minute,
		},
		MaxUploadBytes: 10 * 1024 * 1024,
		Features: Features{
			Payroll:      true,
			Accounting:   true,
			Legal:        true,
			Construction: true,
			PDF:          true,
			QR:           true,
			Anchoring:    true,
		},
	}
}

// Addr is the address the HTTP server listens on.
func (c Config) Addr() string {
	return net.JoinHostPort(c.ListenHost, c.Port)
}

// ChainEnabled reports whether a network endpoint and a non-zero contract are configured.
func (c ChainConfig) ChainEnabled() bool {
	addr := strings.TrimSpace(c.ContractAddress)
	return strings.TrimSpace(c.RPCURL) != "" && addr != "" && !strings.EqualFold(addr, ZeroAddress)
}

// Simulated reports whether anchoring must fabricate placeholder attestations.
func (c ChainConfig) Simulated() bool {
	return c.ForceMock || !c.ChainEnabled()
}

// NetworkName returns the configured network, or "mock" in simulated mode
// when no network was named.
func (c ChainConfig) NetworkName() string {
	if c.Network != "" {
		return c.Network
	}
	return "mock"
}

// Mode returns "mock" or "chain", for health reporting.
func (c ChainConfig) Mode() string {
	if c.Simulated() {
		return "mock"
	}
	return "chain"
}
