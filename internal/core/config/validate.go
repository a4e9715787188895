package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
	"golang.org/x/crypto/bcrypt"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// minJWTSecret is the shortest secret that does not draw a warning. HS256
// keys shorter than the hash output are accepted but weak.
const minJWTSecret = 32

// ValidateDeep performs comprehensive validation of the configuration.
// Unlike Validate(), this checks file access, URLs, glob syntax and ranges.
// It returns criterio.FieldErrors when anything is wrong.
func (c *Config) ValidateDeep(configPath string) error {
	var errs criterio.FieldErrorsBuilder

	errs = c.validateFileAccess(errs, configPath)
	errs = c.validateAPI(errs)
	errs = c.validateServer(errs)
	errs = c.validateTUI(errs)

	return errs.ToError()
}

func (c *Config) validateFileAccess(errs criterio.FieldErrorsBuilder, configPath string) criterio.FieldErrorsBuilder {
	if configPath != "" {
		info, err := os.Stat(configPath)
		switch {
		case err == nil && info.IsDir():
			errs = errs.Append("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
		case err != nil && !os.IsNotExist(err):
			errs = errs.Append("config_file", fmt.Errorf("cannot access %s: %w", configPath, err))
		}
	}

	if c.DataDir != "" {
		info, err := os.Stat(c.DataDir)
		switch {
		case err == nil && !info.IsDir():
			errs = errs.Append("data_dir", fmt.Errorf("%s exists but is not a directory", c.DataDir))
		case err != nil && !os.IsNotExist(err):
			errs = errs.Append("data_dir", fmt.Errorf("cannot access %s: %w", c.DataDir, err))
		}
	}

	return errs
}

func (c *Config) validateAPI(errs criterio.FieldErrorsBuilder) criterio.FieldErrorsBuilder {
	u, err := url.Parse(c.API.BaseURL)
	switch {
	case err != nil:
		errs = errs.Append("api.base_url", fmt.Errorf("invalid url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = errs.Append("api.base_url", fmt.Errorf("scheme must be http or https, got %q", u.Scheme))
	case u.Host == "":
		errs = errs.Append("api.base_url", fmt.Errorf("missing host"))
	}

	if c.API.Timeout <= 0 {
		errs = errs.Append("api.timeout", fmt.Errorf("must be positive"))
	}

	return errs
}

func (c *Config) validateServer(errs criterio.FieldErrorsBuilder) criterio.FieldErrorsBuilder {
	s := c.Server

	if s.BcryptCost < bcrypt.MinCost || s.BcryptCost > bcrypt.MaxCost {
		errs = errs.Append("server.bcrypt_cost", fmt.Errorf("must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}

	if s.TokenTTL <= 0 {
		errs = errs.Append("server.token_ttl", fmt.Errorf("must be positive"))
	}

	if s.LoginRate <= 0 {
		errs = errs.Append("server.login_rate", fmt.Errorf("must be positive"))
	}

	if s.LoginBurst < 1 {
		errs = errs.Append("server.login_burst", fmt.Errorf("must be at least 1"))
	}

	for i, origin := range s.CORSOrigins {
		if err := validateOrigin(origin); err != nil {
			errs = errs.Append(fmt.Sprintf("server.cors_origins[%d]", i), err)
		}
	}

	if s.SeedGlob != "" && !doublestar.ValidatePattern(s.SeedGlob) {
		errs = errs.Append("server.seed_glob", fmt.Errorf("invalid glob pattern %q", s.SeedGlob))
	}

	if !isValidDriver(s.Store.Driver) {
		errs = errs.Append("server.store.driver", fmt.Errorf("unknown driver %q", s.Store.Driver))
	}

	if s.Store.Driver == DriverFirestore && s.Store.ProjectID == "" {
		errs = errs.Append("server.store.project_id", fmt.Errorf("required for the firestore driver"))
	}

	return errs
}

func (c *Config) validateTUI(errs criterio.FieldErrorsBuilder) criterio.FieldErrorsBuilder {
	if c.TUI.RefreshInterval < 250*time.Millisecond {
		errs = errs.Append("tui.refresh_interval", fmt.Errorf("must be at least 250ms"))
	}
	return errs
}

// validateOrigin checks an origin has the scheme://host[:port] form browsers
// send in the Origin header.
func validateOrigin(origin string) error {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("origin %q must be scheme://host[:port]", origin)
	}
	if u.Path != "" && u.Path != "/" {
		return fmt.Errorf("origin %q must not contain a path", origin)
	}
	return nil
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	secret := strings.TrimSpace(c.Server.JWTSecret)
	switch {
	case secret == "":
		warnings = append(warnings, ValidationWarning{
			Category: "Server",
			Item:     "jwt_secret",
			Message:  "not set; `shopcart serve` will refuse to start without JWT_SECRET",
		})
	case len(secret) < minJWTSecret:
		warnings = append(warnings, ValidationWarning{
			Category: "Server",
			Item:     "jwt_secret",
			Message:  fmt.Sprintf("shorter than %d bytes", minJWTSecret),
		})
	}

	if c.Server.Store.Driver == DriverMemory {
		warnings = append(warnings, ValidationWarning{
			Category: "Server",
			Item:     "store.driver",
			Message:  "memory store loses users and products on restart",
		})
	}

	if u, err := url.Parse(c.API.BaseURL); err == nil && u.Scheme == "http" && !isLoopback(u.Hostname()) {
		warnings = append(warnings, ValidationWarning{
			Category: "API",
			Item:     "base_url",
			Message:  "bearer tokens will be sent over plain http",
		})
	}

	if c.API.Timeout > time.Minute {
		warnings = append(warnings, ValidationWarning{
			Category: "API",
			Item:     "timeout",
			Message:  fmt.Sprintf("%s is unusually long; the TUI waits this long on a dead server", c.API.Timeout),
		})
	}

	return warnings
}

func isLoopback(host string) bool {
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}
