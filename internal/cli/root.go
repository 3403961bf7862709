// Package cli assembles the root command.
package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/evetools/esi-cli/internal/appctx"
	"github.com/evetools/esi-cli/internal/commands"
	"github.com/evetools/esi-cli/internal/config"
	"github.com/evetools/esi-cli/internal/logging"
	"github.com/evetools/esi-cli/internal/output"
	"github.com/evetools/esi-cli/internal/version"
)

// NewRootCmd creates the root cobra command.
func NewRootCmd() *cobra.Command {
	var flags appctx.GlobalFlags

	cmd := &cobra.Command{
		Use:           "esi",
		Short:         "Command-line interface for the EVE Online ESI API",
		Long:          "esi is a CLI for EVE Online's ESI API: SSO authentication, character, wallet and fleet queries, and raw route access.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Help and version need no app wiring.
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}

			cfg := config.Load()
			logging.Setup(cfg.LogLevel)

			app := appctx.NewApp(cfg)
			app.Flags = flags
			app.ApplyFlags()

			cmd.SetContext(appctx.WithApp(cmd.Context(), app))
			return nil
		},
	}

	cmd.Flags().SetInterspersed(true)
	cmd.PersistentFlags().SetInterspersed(true)

	cmd.PersistentFlags().BoolVarP(&flags.JSON, "json", "j", false, "Output as JSON")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Output data only, no envelope")

	cmd.AddCommand(
		commands.NewAuthCmd(),
		commands.NewListTokensCmd(),
		commands.NewRevokeTokenCmd(),
		commands.NewCharacterInfoCmd(),
		commands.NewWalletBalanceCmd(),
		commands.NewServerStatusCmd(),
		commands.NewFleetCmd(),
		commands.NewAPICmd(),
	)

	return cmd
}

// Execute runs the root command and exits with the taxonomy code on error.
func Execute() {
	cmd := NewRootCmd()

	executedCmd, err := cmd.ExecuteC()
	if err == nil {
		return
	}

	if app := appctx.FromContext(executedCmd.Context()); app != nil {
		_ = app.Err(err)
		os.Exit(output.AsError(err).ExitCode())
	}

	// App not wired yet: cobra rejected the flag or command before
	// PersistentPreRunE ran, which is a usage problem.
	var apiErr *output.Error
	if !errors.As(err, &apiErr) {
		apiErr = output.ErrUsage(err.Error())
	}
	w := output.New(output.Options{Format: output.FormatAuto, Writer: os.Stderr})
	_ = w.Err(apiErr)
	os.Exit(apiErr.ExitCode())
}
