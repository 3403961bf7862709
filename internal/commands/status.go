package commands

import (
	"github.com/spf13/cobra"

	"github.com/evetools/esi-cli/internal/output"
)

// NewServerStatusCmd creates the server-status command.
func NewServerStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server-status",
		Short: "Show Tranquility server status",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			status, err := app.Client.ServerStatus(cmd.Context())
			if err != nil {
				return err
			}

			return app.OK(status, output.WithSummary("%d players online", status.Players))
		},
	}
}
