package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evetools/esi-cli/internal/appctx"
	"github.com/evetools/esi-cli/internal/config"
	"github.com/evetools/esi-cli/internal/output"
)

func TestParseCharacterID(t *testing.T) {
	tests := []struct {
		arg     string
		want    int64
		wantErr bool
	}{
		{"2112625428", 2112625428, false},
		{"1", 1, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parseCharacterID(tt.arg)
		if tt.wantErr {
			require.Error(t, err, "arg %q", tt.arg)
			assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
			continue
		}
		require.NoError(t, err, "arg %q", tt.arg)
		assert.Equal(t, tt.want, got)
	}
}

func TestApplyJQ(t *testing.T) {
	input := map[string]any{
		"players": float64(23421),
		"tags":    []any{"a", "b"},
	}

	got, err := applyJQ(".players", input)
	require.NoError(t, err)
	assert.Equal(t, float64(23421), got)

	got, err = applyJQ(".tags[]", input)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, got)

	_, err = applyJQ(".[", input)
	require.Error(t, err)
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
}

// testApp wires an app against a fake ESI server, with JSON output captured
// in a buffer.
func testApp(t *testing.T, handler http.Handler) (*appctx.App, *bytes.Buffer) {
	t.Helper()
	t.Setenv("ESI_NO_KEYRING", "1")

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		TokenFile:  filepath.Join(t.TempDir(), "tokens.json"),
		BaseURL:    srv.URL,
		LoginURL:   srv.URL,
		Datasource: config.DefaultDatasource,
		Timeout:    5 * time.Second,
	}
	app := appctx.NewApp(cfg)

	var buf bytes.Buffer
	app.Output = output.New(output.Options{Format: output.FormatJSON, Writer: &buf})
	return app, &buf
}

func runCommand(t *testing.T, app *appctx.App, cmd *cobra.Command, args ...string) error {
	t.Helper()
	cmd.SetContext(appctx.WithApp(context.Background(), app))
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.Execute()
}

func TestServerStatusCmd(t *testing.T) {
	app, buf := testApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/status/", r.URL.Path)
		w.Write([]byte(`{"players":31337,"server_version":"2649365","start_time":"2026-08-29T11:02:00Z"}`))
	}))

	err := runCommand(t, app, NewServerStatusCmd())
	require.NoError(t, err)

	var resp struct {
		OK      bool           `json:"ok"`
		Data    map[string]any `json:"data"`
		Summary string         `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, float64(31337), resp.Data["players"])
	assert.Equal(t, "31337 players online", resp.Summary)
}

func TestWalletBalanceCmdRejectsBadID(t *testing.T) {
	app, _ := testApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	err := runCommand(t, app, NewWalletBalanceCmd(), "not-a-number")
	require.Error(t, err)
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
}

func TestWalletBalanceCmdWithoutToken(t *testing.T) {
	app, _ := testApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without a stored token")
	}))

	err := runCommand(t, app, NewWalletBalanceCmd(), "91000001")
	require.Error(t, err)
	assert.Equal(t, output.CodeTokenNotFound, output.AsError(err).Code)
}

func TestListTokensEmpty(t *testing.T) {
	app, buf := testApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	err := runCommand(t, app, NewListTokensCmd())
	require.NoError(t, err)

	var resp struct {
		OK      bool   `json:"ok"`
		Data    []any  `json:"data"`
		Summary string `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Empty(t, resp.Data)
	assert.Contains(t, resp.Summary, "No stored tokens")
}

func TestCharacterInfoPublic(t *testing.T) {
	app, buf := testApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/characters/91000001/", r.URL.Path)
		w.Write([]byte(`{"name":"Riva Ataru","corporation_id":98000001,"birthday":"2019-03-01T00:00:00Z","gender":"female","race_id":1,"bloodline_id":2}`))
	}))

	err := runCommand(t, app, NewCharacterInfoCmd(), "91000001", "--public")
	require.NoError(t, err)

	var resp struct {
		OK      bool           `json:"ok"`
		Data    map[string]any `json:"data"`
		Summary string         `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "Riva Ataru", resp.Data["name"])
	assert.Equal(t, "Riva Ataru (91000001)", resp.Summary)
}

func TestAPIGetWithJQ(t *testing.T) {
	app, buf := testApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"players":5,"server_version":"x"}`))
	}))

	err := runCommand(t, app, NewAPICmd(), "get", "/status/", "--jq", ".players")
	require.NoError(t, err)

	var resp struct {
		Data any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, float64(5), resp.Data)
}

func TestAPIPostRequiresData(t *testing.T) {
	app, _ := testApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	err := runCommand(t, app, NewAPICmd(), "post", "/universe/names/")
	require.Error(t, err)
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
}
