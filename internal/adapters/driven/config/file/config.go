// Package file loads application configuration from TOML files in the
// FabreXLens config directory, with optional per-profile overlays and
// environment overrides.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/digitaldataco/fabrexlens/internal/core/domain"
)

const configFile = "config.toml"

// Duration is a time.Duration that marshals as a string ("15s", "1m30s")
// in TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the underlying time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ServiceConfig is the per-service connection configuration.
type ServiceConfig struct {
	BaseURL           string   `toml:"base_url"`
	Timeout           Duration `toml:"timeout"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
}

// Config is the full application configuration.
type Config struct {
	Polling struct {
		Interval Duration `toml:"interval"`
	} `toml:"polling"`

	Worker struct {
		ShutdownGrace   Duration `toml:"shutdown_grace"`
		MutationTimeout Duration `toml:"mutation_timeout"`
	} `toml:"worker"`

	HTTP struct {
		RetryCount int    `toml:"retry_count"`
		UserAgent  string `toml:"user_agent"`
	} `toml:"http"`

	Services struct {
		Fabrex    ServiceConfig `toml:"fabrex"`
		Gryf      ServiceConfig `toml:"gryf"`
		Supernode ServiceConfig `toml:"supernode"`
		Redfish   ServiceConfig `toml:"redfish"`
	} `toml:"services"`
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	cfg.Polling.Interval = Duration(domain.DefaultPollInterval)
	cfg.Worker.ShutdownGrace = Duration(5 * time.Second)
	cfg.Worker.MutationTimeout = Duration(30 * time.Second)
	cfg.HTTP.RetryCount = 2
	cfg.HTTP.UserAgent = "FabreXLens"

	service := func(url string) ServiceConfig {
		return ServiceConfig{
			BaseURL:           url,
			Timeout:           Duration(10 * time.Second),
			RequestsPerSecond: 5,
		}
	}
	cfg.Services.Fabrex = service("https://api.gigaio.com/fabrexfleet")
	cfg.Services.Gryf = service("https://api.gigaio.com/gryf")
	cfg.Services.Supernode = service("https://api.gigaio.com/supernodes")
	cfg.Services.Redfish = service("https://redfish.gigaio.com")
	return cfg
}

// DefaultDir returns the FabreXLens config directory (~/.fabrexlens).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".fabrexlens"), nil
}

// Load reads configuration from dir, applying layers in order: built-in
// defaults, config.toml if present, config.<profile>.toml when a profile
// is named, then FABREXLENS_* environment overrides. A named profile whose
// file is missing is an error; a missing base config.toml is not.
func Load(dir, profile string) (Config, error) {
	cfg := Default()

	if dir == "" {
		resolved, err := DefaultDir()
		if err != nil {
			return cfg, err
		}
		dir = resolved
	}

	if err := mergeFile(&cfg, filepath.Join(dir, configFile), false); err != nil {
		return cfg, err
	}
	if profile != "" {
		overlay := filepath.Join(dir, fmt.Sprintf("config.%s.toml", profile))
		if err := mergeFile(&cfg, overlay, true); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// WriteDefault writes the built-in configuration to dir/config.toml unless
// the file already exists. Returns the file path.
func WriteDefault(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	path := filepath.Join(dir, configFile)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	cfg := Default()
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Service returns the connection configuration for a domain.
func (c Config) Service(d domain.Domain) ServiceConfig {
	switch d {
	case domain.DomainFabrex:
		return c.Services.Fabrex
	case domain.DomainGryf:
		return c.Services.Gryf
	case domain.DomainSupernode:
		return c.Services.Supernode
	case domain.DomainRedfish:
		return c.Services.Redfish
	default:
		return ServiceConfig{}
	}
}

// PollInterval returns the configured polling cadence, clamped to policy.
func (c Config) PollInterval() time.Duration {
	return domain.ClampInterval(c.Polling.Interval.Std())
}

func mergeFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides selected settings from the environment.
func applyEnv(cfg *Config) {
	if v := os.Getenv("FABREXLENS_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Polling.Interval = Duration(d)
		}
	}
	if v := os.Getenv("FABREXLENS_HTTP_RETRY_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RetryCount = n
		}
	}
	if v := os.Getenv("FABREXLENS_FABREX_URL"); v != "" {
		cfg.Services.Fabrex.BaseURL = v
	}
	if v := os.Getenv("FABREXLENS_GRYF_URL"); v != "" {
		cfg.Services.Gryf.BaseURL = v
	}
	if v := os.Getenv("FABREXLENS_SUPERNODE_URL"); v != "" {
		cfg.Services.Supernode.BaseURL = v
	}
	if v := os.Getenv("FABREXLENS_REDFISH_URL"); v != "" {
		cfg.Services.Redfish.BaseURL = v
	}
}
