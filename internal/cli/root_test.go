package cli

import (
	"testing"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	if cmd.Use != "esi" {
		t.Errorf("Use = %q, want esi", cmd.Use)
	}
	if !cmd.SilenceUsage || !cmd.SilenceErrors {
		t.Error("root command should silence cobra's own error output")
	}
}

func TestRootRegistersSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	want := []string{
		"auth",
		"list-tokens",
		"revoke-token",
		"character-info",
		"wallet-balance",
		"server-status",
		"fleet",
		"api",
	}

	registered := map[string]bool{}
	for _, sub := range cmd.Commands() {
		registered[sub.Name()] = true
	}

	for _, name := range want {
		if !registered[name] {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{"json", "quiet"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag %q not defined", name)
		}
	}
}
