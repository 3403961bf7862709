// Package config loads configuration from environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/evetools/esi-cli/internal/output"
)

// Default endpoints for EVE Online SSO and ESI.
const (
	DefaultLoginURL = "https://login.eveonline.com"
	DefaultBaseURL  = "https://esi.evetech.net"

	DefaultRedirectURI = "http://localhost:8000/callback"
	DefaultDatasource  = "tranquility"
	DefaultTimeout     = 30 * time.Second
)

// Config holds the resolved configuration. Values are read once at startup;
// there is no hot reload.
type Config struct {
	// OAuth2 application settings
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string

	// Token storage
	TokenFile string

	// ESI settings
	BaseURL    string
	LoginURL   string
	Datasource string
	Timeout    time.Duration

	// Logging
	LogLevel string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load() // missing .env is not an error

	cfg := &Config{
		ClientID:     os.Getenv("EVE_CLIENT_ID"),
		ClientSecret: os.Getenv("EVE_CLIENT_SECRET"),
		RedirectURI:  envOr("EVE_REDIRECT_URI", DefaultRedirectURI),
		Scopes:       ParseScopes(os.Getenv("EVE_SCOPES")),
		TokenFile:    envOr("EVE_TOKEN_FILE", defaultTokenFile()),
		BaseURL:      strings.TrimRight(envOr("ESI_BASE_URL", DefaultBaseURL), "/"),
		LoginURL:     strings.TrimRight(envOr("EVE_LOGIN_URL", DefaultLoginURL), "/"),
		Datasource:   envOr("EVE_DATASOURCE", DefaultDatasource),
		Timeout:      DefaultTimeout,
		LogLevel:     envOr("EVE_LOG_LEVEL", "info"),
	}

	if v := os.Getenv("EVE_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	return cfg
}

// ParseScopes splits a comma-separated scope list, trimming blanks.
func ParseScopes(raw string) []string {
	if raw == "" {
		return nil
	}
	var scopes []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

// RequireCredentials returns an error unless client id and secret are set.
// Anonymous commands (server-status, public character info) skip this check.
func (c *Config) RequireCredentials() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return output.ErrUsageHint(
			"EVE application credentials not configured",
			"Set EVE_CLIENT_ID and EVE_CLIENT_SECRET in the environment or a .env file",
		)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// defaultTokenFile returns the default token file location, preferring the
// platform config directory with a home-relative fallback.
func defaultTokenFile() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "esi", "tokens.json")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".config", "esi", "tokens.json")
	}
	return "tokens.json"
}
