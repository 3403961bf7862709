package appctx

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/evetools/esi-cli/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("ESI_NO_KEYRING", "1")
	return &config.Config{
		TokenFile:  filepath.Join(t.TempDir(), "tokens.json"),
		BaseURL:    config.DefaultBaseURL,
		LoginURL:   config.DefaultLoginURL,
		Datasource: config.DefaultDatasource,
		Timeout:    5 * time.Second,
	}
}

func TestNewApp(t *testing.T) {
	cfg := testConfig(t)
	app := NewApp(cfg)

	if app == nil {
		t.Fatal("NewApp returned nil")
	}
	if app.Config != cfg {
		t.Error("Config not set correctly")
	}
	if app.Auth == nil {
		t.Error("Auth manager not initialized")
	}
	if app.Client == nil {
		t.Error("ESI client not initialized")
	}
	if app.Output == nil {
		t.Error("Output writer not initialized")
	}
}

func TestWithAppAndFromContext(t *testing.T) {
	app := NewApp(testConfig(t))

	ctx := context.Background()
	ctxWithApp := WithApp(ctx, app)

	retrieved := FromContext(ctxWithApp)
	if retrieved != app {
		t.Error("FromContext did not retrieve the same app")
	}
}

func TestFromContextEmpty(t *testing.T) {
	ctx := context.Background()
	app := FromContext(ctx)
	if app != nil {
		t.Error("expected nil from empty context")
	}
}

func TestApplyFlagsJSON(t *testing.T) {
	app := NewApp(testConfig(t))
	app.Flags.JSON = true

	app.ApplyFlags()
	if app.Output == nil {
		t.Error("Output should be set after ApplyFlags")
	}
}

func TestApplyFlagsQuiet(t *testing.T) {
	app := NewApp(testConfig(t))
	app.Flags.Quiet = true

	app.ApplyFlags()
	if app.Output == nil {
		t.Error("Output should be set after ApplyFlags")
	}
}
