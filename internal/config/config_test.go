package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"EVE_CLIENT_ID", "EVE_CLIENT_SECRET", "EVE_REDIRECT_URI", "EVE_SCOPES",
		"EVE_TOKEN_FILE", "ESI_BASE_URL", "EVE_LOGIN_URL", "EVE_HTTP_TIMEOUT",
		"EVE_LOG_LEVEL", "EVE_DATASOURCE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, DefaultRedirectURI, cfg.RedirectURI)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultLoginURL, cfg.LoginURL)
	assert.Equal(t, DefaultDatasource, cfg.Datasource)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Scopes)
	assert.NotEmpty(t, cfg.TokenFile)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("EVE_CLIENT_ID", "client-123")
	t.Setenv("EVE_CLIENT_SECRET", "secret-456")
	t.Setenv("EVE_REDIRECT_URI", "http://localhost:9999/cb")
	t.Setenv("EVE_SCOPES", "esi-wallet.read_character_wallet.v1, esi-fleets.read_fleet.v1")
	t.Setenv("EVE_TOKEN_FILE", "/tmp/tokens.json")
	t.Setenv("ESI_BASE_URL", "https://esi.example.com/")
	t.Setenv("EVE_HTTP_TIMEOUT", "5s")

	cfg := Load()

	assert.Equal(t, "client-123", cfg.ClientID)
	assert.Equal(t, "secret-456", cfg.ClientSecret)
	assert.Equal(t, "http://localhost:9999/cb", cfg.RedirectURI)
	assert.Equal(t, []string{
		"esi-wallet.read_character_wallet.v1",
		"esi-fleets.read_fleet.v1",
	}, cfg.Scopes)
	assert.Equal(t, "/tmp/tokens.json", cfg.TokenFile)
	assert.Equal(t, "https://esi.example.com", cfg.BaseURL, "trailing slash trimmed")
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestParseScopes(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a,b", []string{"a", "b"}},
		{" a , ,b, ", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseScopes(tt.raw))
		})
	}
}

func TestRequireCredentials(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.RequireCredentials())

	cfg.ClientID = "id"
	require.Error(t, cfg.RequireCredentials(), "secret still missing")

	cfg.ClientSecret = "secret"
	require.NoError(t, cfg.RequireCredentials())
}
