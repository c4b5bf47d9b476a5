package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/evidenceledger/veritas/internal/errl"
)

// Getenv looks up an environment variable. os.Getenv satisfies it.
type Getenv func(key string) string

// Load builds the configuration from defaults, then the optional YAML file at
// path, then environment variables. Command line flags are applied by the
// caller on top of the result.
func Load(path string, getenv Getenv) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errl.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errl.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	if err := applyEnv(&cfg, getenv); err != nil {
		return cfg, err
	}

	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	return cfg, nil
}

func applyEnv(cfg *Config, getenv Getenv) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}

	str(&cfg.Port, "VERITAS_PORT", "PORT")
	str(&cfg.PublicURL, "VERITAS_PUBLIC_URL", "PUBLIC_SITE_URL")
	str(&cfg.AppName, "VERITAS_APP_NAME")
	str(&cfg.DatabasePath, "VERITAS_DATABASE")
	str(&cfg.AdminPassword, "VERITAS_ADMIN_PASSWORD")
	str(&cfg.TemplateDir, "VERITAS_TEMPLATE_DIR")

	str(&cfg.Chain.RPCURL, "RPC_URL", "VERITAS_RPC_URL")
	str(&cfg.Chain.ContractAddress, "CONTRACT_ADDRESS", "VERITAS_CONTRACT_ADDRESS")
	str(&cfg.Chain.PrivateKey, "PRIVATE_KEY", "VERITAS_PRIVATE_KEY")
	str(&cfg.Chain.Network, "NETWORK", "VERITAS_NETWORK")

	if v := getenv("CHAIN_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errl.Errorf("invalid CHAIN_ID %q: %w", v, err)
		}
		cfg.Chain.ChainID = id
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"VERITAS_DEVELOPMENT", &cfg.Development},
		{"VERITAS_MOCK", &cfg.Chain.ForceMock},
		{"VERITAS_FEATURE_PAYROLL", &cfg.Features.Payroll},
		{"VERITAS_FEATURE_ACCOUNTING", &cfg.Features.Accounting},
		{"VERITAS_FEATURE_LEGAL", &cfg.Features.Legal},
		{"VERITAS_FEATURE_CONSTRUCTION", &cfg.Features.Construction},
		{"VERITAS_FEATURE_PDF", &cfg.Features.PDF},
		{"VERITAS_FEATURE_QR", &cfg.Features.QR},
		{"VERITAS_FEATURE_ANCHORING", &cfg.Features.Anchoring},
	}
	for _, b := range bools {
		v := getenv(b.key)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return errl.Errorf("invalid %s %q: %w", b.key, v, err)
		}
		*b.dst = parsed
	}

	if v := getenv("VERITAS_RATE_LIMIT_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errl.Errorf("invalid VERITAS_RATE_LIMIT_MAX %q: %w", v, err)
		}
		cfg.RateLimit.Max = n
	}
	if v := getenv("VERITAS_RATE_LIMIT_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errl.Errorf("invalid VERITAS_RATE_LIMIT_WINDOW %q: %w", v, err)
		}
		cfg.RateLimit.Window = d
	}

	return nil
}
