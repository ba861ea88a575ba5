// Package config loads client configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iudanet/offsync/internal/validation"
)

// Storage backends
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// Transport kinds
const (
	TransportHTTP = "http"
	TransportWS   = "ws"
)

// RetryStrategy bounds delivery of the queue head
type RetryStrategy struct {
	MaxRetries     int     `yaml:"maxRetries"`
	InitialDelayMs int     `yaml:"initialDelayMs"`
	BackoffFactor  float64 `yaml:"backoffFactor"`
}

// Storage selects the local backend
type Storage struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// Encryption enables at-rest encryption; the passphrase is read from PassphraseEnv
// or prompted for when the variable is empty
type Encryption struct {
	PassphraseEnv string `yaml:"passphraseEnv"`
	Enabled       bool   `yaml:"enabled"`
}

// Transport configures the connection to the remote authority
type Transport struct {
	Kind       string `yaml:"kind"`
	ServerURL  string `yaml:"serverUrl"`
	AuthToken  string `yaml:"authToken"`
	SigningKey string `yaml:"signingKey"`
	TimeoutMs  int    `yaml:"timeoutMs"`
	Compress   bool   `yaml:"compress"`
}

// Network configures connectivity probing
type Network struct {
	ProbeURL        string `yaml:"probeUrl"`
	ProbeIntervalMs int    `yaml:"probeIntervalMs"`
}

// Resources configures prefetching
type Resources struct {
	BaseURL string              `yaml:"baseUrl"`
	Routes  map[string][]string `yaml:"routes"`
}

// Log configures logging
type Log struct {
	Level string `yaml:"level"`
}

// Config is the full client configuration
type Config struct {
	Resources        Resources     `yaml:"resources"`
	Transport        Transport     `yaml:"transport"`
	Storage          Storage       `yaml:"storage"`
	Network          Network       `yaml:"network"`
	Encryption       Encryption    `yaml:"encryption"`
	ClientID         string        `yaml:"clientId"`
	ConflictStrategy string        `yaml:"conflictStrategy"`
	Log              Log           `yaml:"log"`
	RetryStrategy    RetryStrategy `yaml:"retryStrategy"`
	SyncIntervalMs   int           `yaml:"syncIntervalMs"`
	StorageQuotaMb   float64       `yaml:"storageQuotaMb"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		SyncIntervalMs: 30000,
		StorageQuotaMb: 50,
		RetryStrategy: RetryStrategy{
			MaxRetries:     5,
			InitialDelayMs: 1000,
			BackoffFactor:  2,
		},
		ConflictStrategy: "lww",
		Storage: Storage{
			Backend: BackendBolt,
			Path:    "offsync-client.db",
		},
		Encryption: Encryption{
			PassphraseEnv: "OFFSYNC_PASSPHRASE",
		},
		Transport: Transport{
			Kind:      TransportHTTP,
			ServerURL: "http://localhost:8080",
			TimeoutMs: 10000,
		},
		Network: Network{
			ProbeIntervalMs: 15000,
		},
		Log: Log{Level: "info"},
	}
}

// Parse applies YAML data on top of the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: invalid YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses a config file. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	var errs []error

	if c.SyncIntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("syncIntervalMs must be positive"))
	}
	if c.StorageQuotaMb <= 0 {
		errs = append(errs, fmt.Errorf("storageQuotaMb must be positive"))
	}
	if c.RetryStrategy.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("retryStrategy.maxRetries must be at least 1"))
	}
	if c.RetryStrategy.InitialDelayMs < 0 {
		errs = append(errs, fmt.Errorf("retryStrategy.initialDelayMs cannot be negative"))
	}
	if c.RetryStrategy.BackoffFactor < 1 {
		errs = append(errs, fmt.Errorf("retryStrategy.backoffFactor must be at least 1"))
	}

	if c.ClientID != "" {
		if err := validation.ValidateClientID(c.ClientID); err != nil {
			errs = append(errs, fmt.Errorf("clientId: %w", err))
		}
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendBolt, BackendSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, fmt.Errorf("storage.path is required for %s backend", c.Storage.Backend))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q is not supported (valid: memory, bolt, sqlite)", c.Storage.Backend))
	}

	switch c.Transport.Kind {
	case TransportHTTP, TransportWS:
	default:
		errs = append(errs, fmt.Errorf("transport.kind %q is not supported (valid: http, ws)", c.Transport.Kind))
	}
	if c.Transport.ServerURL == "" {
		errs = append(errs, fmt.Errorf("transport.serverUrl is required"))
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// SyncInterval returns the periodic sync interval
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalMs) * time.Millisecond
}

// QuotaBytes returns the storage budget in bytes
func (c *Config) QuotaBytes() int64 {
	return int64(c.StorageQuotaMb * 1024 * 1024)
}

// InitialDelay returns the first retry delay
func (r RetryStrategy) InitialDelay() time.Duration {
	return time.Duration(r.InitialDelayMs) * time.Millisecond
}

// Timeout returns the transport request timeout
func (t Transport) Timeout() time.Duration {
	return time.Duration(t.TimeoutMs) * time.Millisecond
}

// ProbeInterval returns the connectivity probe interval
func (n Network) ProbeInterval() time.Duration {
	return time.Duration(n.ProbeIntervalMs) * time.Millisecond
}

// ParseLevel converts a level name into a slog.Level
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level %q is not supported", level)
	}
}
