package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Server.JWTSecret = strings.Repeat("s", 40)
	return &cfg
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)

	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		names = append(names, fe.Field)
	}
	return names
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)
	cfg.Server.CORSOrigins = []string{"https://shop.example.github.io"}
	cfg.Server.SeedGlob = "catalog/**/*.yaml"

	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_BadBaseURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "scheme", url: "ftp://example.com"},
		{name: "no host", url: "http://"},
		{name: "unparsable", url: "http://[::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.API.BaseURL = tt.url

			assert.Contains(t, fieldNames(t, cfg.ValidateDeep("")), "api.base_url")
		})
	}
}

func TestValidateDeep_ServerRanges(t *testing.T) {
	cfg := validConfig(t)
	cfg.Server.BcryptCost = 2
	cfg.Server.TokenTTL = -time.Hour
	cfg.Server.LoginRate = 0
	cfg.Server.LoginBurst = 0

	names := fieldNames(t, cfg.ValidateDeep(""))
	assert.ElementsMatch(t, []string{
		"server.bcrypt_cost",
		"server.token_ttl",
		"server.login_rate",
		"server.login_burst",
	}, names)
}

func TestValidateDeep_CORSOrigins(t *testing.T) {
	cfg := validConfig(t)
	cfg.Server.CORSOrigins = []string{"https://ok.example.com", "not-an-origin", "https://x.example.com/path"}

	names := fieldNames(t, cfg.ValidateDeep(""))
	assert.Equal(t, []string{"server.cors_origins[1]", "server.cors_origins[2]"}, names)
}

func TestValidateDeep_SeedGlob(t *testing.T) {
	cfg := validConfig(t)
	cfg.Server.SeedGlob = "catalog/[*.yaml"

	assert.Equal(t, []string{"server.seed_glob"}, fieldNames(t, cfg.ValidateDeep("")))
}

func TestValidateDeep_FirestoreNeedsProject(t *testing.T) {
	cfg := validConfig(t)
	cfg.Server.Store.Driver = DriverFirestore

	assert.Equal(t, []string{"server.store.project_id"}, fieldNames(t, cfg.ValidateDeep("")))
}

func TestValidateDeep_DataDirIsFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "notadir")
	require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0o644))

	cfg := validConfig(t)
	cfg.DataDir = tmpFile

	assert.Contains(t, fieldNames(t, cfg.ValidateDeep("")), "data_dir")
}

func TestValidateDeep_ConfigFileIsDirectory(t *testing.T) {
	cfg := validConfig(t)

	assert.Contains(t, fieldNames(t, cfg.ValidateDeep(t.TempDir())), "config_file")
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	cfg.Server.JWTSecret = ""
	cfg.API.BaseURL = "http://shop.example.com"

	warnings := cfg.Warnings()

	items := make([]string, 0, len(warnings))
	for _, w := range warnings {
		items = append(items, w.Category+"/"+w.Item)
	}
	assert.ElementsMatch(t, []string{"Server/jwt_secret", "Server/store.driver", "API/base_url"}, items)
}

func TestWarnings_ShortSecret(t *testing.T) {
	cfg := validConfig(t)
	cfg.Server.JWTSecret = "short"
	cfg.Server.Store.Driver = DriverSQLite

	warnings := cfg.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "shorter than")
}
