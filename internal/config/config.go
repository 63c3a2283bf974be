// ABOUTME: Configuration loading and parsing for genie-relay
// ABOUTME: YAML with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Session backend names accepted in sessions.backend.
const (
	SessionBackendMemory = "memory"
	SessionBackendSQLite = "sqlite"
)

// Config represents the complete genie-relay configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Genie     GenieConfig     `yaml:"genie"`
	Transport TransportConfig `yaml:"transport"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds listen address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// GenieConfig holds backend connection configuration
type GenieConfig struct {
	Host    string `yaml:"host"`
	Token   string `yaml:"token"`
	SpaceID string `yaml:"space_id"`
}

// TransportConfig holds chat-transport app credentials. When AppSecret is
// empty, inbound request authentication is disabled (local development).
type TransportConfig struct {
	AppID     string `yaml:"app_id"`
	AppSecret string `yaml:"app_secret"`
}

// SessionsConfig holds session registry configuration
type SessionsConfig struct {
	Backend    string `yaml:"backend"`
	Path       string `yaml:"path"` // sqlite backend only
	MaxEntries int    `yaml:"max_entries"`

	TTL time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TTLRaw string `yaml:"ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded.
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

	cfg.applyDefaults()

	if err := cfg.parseDurations(); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in defaults for optional fields.
func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "localhost:3978"
	}
	if c.Sessions.Backend == "" {
		c.Sessions.Backend = SessionBackendMemory
	}
	if c.Sessions.TTLRaw == "" {
		c.Sessions.TTLRaw = "24h"
	}
	if c.Sessions.MaxEntries == 0 {
		c.Sessions.MaxEntries = 10000
	}
}

// Validate checks that all required configuration fields are present and
// valid. Returns an error describing the first validation failure.
func (c *Config) Validate() error {
	if c.Genie.Host == "" {
		return fmt.Errorf("genie.host is required")
	}
	if c.Genie.Token == "" {
		return fmt.Errorf("genie.token is required")
	}
	if c.Genie.SpaceID == "" {
		return fmt.Errorf("genie.space_id is required")
	}

	switch c.Sessions.Backend {
	case SessionBackendMemory:
	case SessionBackendSQLite:
		if c.Sessions.Path == "" {
			return fmt.Errorf("sessions.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("sessions.backend must be %q or %q, got %q",
			SessionBackendMemory, SessionBackendSQLite, c.Sessions.Backend)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func (c *Config) parseDurations() error {
	ttl, err := time.ParseDuration(c.Sessions.TTLRaw)
	if err != nil {
		return fmt.Errorf("parsing sessions.ttl %q: %w", c.Sessions.TTLRaw, err)
	}
	c.Sessions.TTL = ttl
	return nil
}
