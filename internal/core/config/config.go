// Package config handles configuration loading and validation for shopcart.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers understood by the API server.
const (
	DriverMemory    = "memory"
	DriverSQLite    = "sqlite"
	DriverFirestore = "firestore"
)

// DefaultDevOrigins are always allowed by the API server's CORS policy.
var DefaultDevOrigins = []string{
	"http://localhost:5500",
	"http://127.0.0.1:5500",
	"http://localhost:5173",
	"http://localhost:3000",
}

// Config holds the application configuration.
type Config struct {
	API     APIConfig    `yaml:"api"`
	Server  ServerConfig `yaml:"server"`
	TUI     TUIConfig    `yaml:"tui"`
	DataDir string       `yaml:"-"` // set by caller, not from config file
}

// APIConfig configures the client side of the storefront API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig configures `shopcart serve`.
type ServerConfig struct {
	Addr        string        `yaml:"addr"`
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	CORSOrigins []string      `yaml:"cors_origins"`
	BcryptCost  int           `yaml:"bcrypt_cost"`
	// LoginRate is the interval at which one login attempt per client IP is
	// refilled; LoginBurst attempts may be made back to back.
	LoginRate  time.Duration `yaml:"login_rate"`
	LoginBurst int           `yaml:"login_burst"`
	SeedGlob   string        `yaml:"seed_glob"`
	Store      StoreConfig   `yaml:"store"`
}

// StoreConfig selects the document store backing the API server.
type StoreConfig struct {
	Driver    string `yaml:"driver"`
	Path      string `yaml:"path"`
	ProjectID string `yaml:"project_id"`
}

// TUIConfig configures the interactive terminal UI.
type TUIConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:5000",
			Timeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Addr:       ":5000",
			TokenTTL:   7 * 24 * time.Hour,
			BcryptCost: 10,
			LoginRate:  6 * time.Second,
			LoginBurst: 5,
			Store: StoreConfig{
				Driver: DriverMemory,
			},
		},
		TUI: TUIConfig{
			RefreshInterval: 2 * time.Second,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = defaults.API.Timeout
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.TokenTTL == 0 {
		c.Server.TokenTTL = defaults.Server.TokenTTL
	}
	if c.Server.BcryptCost == 0 {
		c.Server.BcryptCost = defaults.Server.BcryptCost
	}
	if c.Server.LoginRate == 0 {
		c.Server.LoginRate = defaults.Server.LoginRate
	}
	if c.Server.LoginBurst == 0 {
		c.Server.LoginBurst = defaults.Server.LoginBurst
	}
	if c.Server.Store.Driver == "" {
		c.Server.Store.Driver = defaults.Server.Store.Driver
	}
	if c.Server.Store.Driver == DriverSQLite && c.Server.Store.Path == "" && c.DataDir != "" {
		c.Server.Store.Path = filepath.Join(c.DataDir, "shopcart.db")
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = defaults.TUI.RefreshInterval
	}
}

// Validate checks the invariants every command relies on. Server specific
// requirements are checked by ValidateServer.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must start with http:// or https://")
	}

	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout cannot be negative")
	}

	if !isValidDriver(c.Server.Store.Driver) {
		return fmt.Errorf("server.store.driver %q is not one of memory, sqlite, firestore", c.Server.Store.Driver)
	}

	return nil
}

// ValidateServer checks the settings `shopcart serve` needs.
func (c *Config) ValidateServer() error {
	if strings.TrimSpace(c.Server.JWTSecret) == "" {
		return fmt.Errorf("server.jwt_secret is required (set JWT_SECRET or --jwt-secret)")
	}

	switch c.Server.Store.Driver {
	case DriverSQLite:
		if c.Server.Store.Path == "" {
			return fmt.Errorf("server.store.path is required for the sqlite driver")
		}
	case DriverFirestore:
		if c.Server.Store.ProjectID == "" {
			return fmt.Errorf("server.store.project_id is required for the firestore driver")
		}
	}

	return nil
}

// StateFile returns the path to the client-durable state file.
func (c *Config) StateFile() string {
	return filepath.Join(c.DataDir, "state.json")
}

// AllowedOrigins returns the configured CORS origins followed by the
// built-in development origins, without duplicates or blanks.
func (c *Config) AllowedOrigins() []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(c.Server.CORSOrigins)+len(DefaultDevOrigins))

	for _, list := range [][]string{c.Server.CORSOrigins, DefaultDevOrigins} {
		for _, o := range list {
			o = strings.TrimRight(strings.TrimSpace(o), "/")
			if o == "" || seen[o] {
				continue
			}
			seen[o] = true
			out = append(out, o)
		}
	}

	return out
}

func isValidDriver(driver string) bool {
	switch driver {
	case DriverMemory, DriverSQLite, DriverFirestore:
		return true
	default:
		return false
	}
}
