// ABOUTME: Configuration loading and parsing for vault-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the corresponding fields are absent.
const (
	DefaultSessionTTL    = time.Hour
	DefaultPurgeInterval = 10 * time.Minute
)

// Config represents the complete vault-gateway configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds the listener address, TLS material, and the static
// document root served alongside the API.
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	CertFile string `yaml:"cert_file"` // PEM certificate chain
	KeyFile  string `yaml:"key_file"`  // PEM private key
	Docroot  string `yaml:"docroot"`   // optional static file root
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds session lifetime configuration
type AuthConfig struct {
	SessionTTL    time.Duration `yaml:"-"`
	PurgeInterval time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	SessionTTLRaw    string `yaml:"session_ttl"`
	PurgeIntervalRaw string `yaml:"purge_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
// TLS material is not checked here; serving without it is diagnosed when the
// listener starts so that offline subcommands still work.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Auth.SessionTTL < 0 {
		return fmt.Errorf("auth.session_ttl must not be negative")
	}
	if c.Auth.PurgeInterval < 0 {
		return fmt.Errorf("auth.purge_interval must not be negative")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
// and applies defaults for absent fields.
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Auth.SessionTTLRaw != "" {
		cfg.Auth.SessionTTL, err = time.ParseDuration(cfg.Auth.SessionTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing session_ttl %q: %w", cfg.Auth.SessionTTLRaw, err)
		}
	} else {
		cfg.Auth.SessionTTL = DefaultSessionTTL
	}

	if cfg.Auth.PurgeIntervalRaw != "" {
		cfg.Auth.PurgeInterval, err = time.ParseDuration(cfg.Auth.PurgeIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing purge_interval %q: %w", cfg.Auth.PurgeIntervalRaw, err)
		}
	} else {
		cfg.Auth.PurgeInterval = DefaultPurgeInterval
	}

	return nil
}
