package commands

import (
	"github.com/spf13/cobra"

	"github.com/evetools/esi-cli/internal/esi"
	"github.com/evetools/esi-cli/internal/output"
)

// NewWalletBalanceCmd creates the wallet-balance command.
func NewWalletBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wallet-balance <character-id>",
		Short: "Show a character's wallet balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			characterID, err := parseCharacterID(args[0])
			if err != nil {
				return err
			}

			balance, err := esi.NewWalletAPI(app.Client).Balance(cmd.Context(), characterID)
			if err != nil {
				return err
			}

			return app.OK(map[string]any{
				"character_id": characterID,
				"balance":      balance,
			}, output.WithSummary("%.2f ISK", balance))
		},
	}
}
