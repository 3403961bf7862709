package commands

import (
	"github.com/spf13/cobra"

	"github.com/evetools/esi-cli/internal/esi"
	"github.com/evetools/esi-cli/internal/output"
)

// NewCharacterInfoCmd creates the character-info command.
func NewCharacterInfoCmd() *cobra.Command {
	var public bool

	cmd := &cobra.Command{
		Use:   "character-info <character-id>",
		Short: "Show character information",
		Long:  "Show the public character sheet. Without --public, location, ship and online status are added when a stored token allows it.",
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

			chars := esi.NewCharacterAPI(app.Client)
			info, err := chars.PublicInfo(cmd.Context(), characterID)
			if err != nil {
				return err
			}

			data := map[string]any{
				"character_id": characterID,
				"name":         info.Name,
				"corporation":  info.CorporationID,
				"birthday":     info.Birthday,
				"gender":       info.Gender,
				"security":     info.SecurityStatus,
			}
			if info.AllianceID != 0 {
				data["alliance"] = info.AllianceID
			}

			if !public {
				// Private sections are best-effort: a missing token or scope
				// degrades to public output rather than failing the command.
				if loc, err := chars.Location(cmd.Context(), characterID); err == nil {
					data["location"] = loc
				}
				if ship, err := chars.Ship(cmd.Context(), characterID); err == nil {
					data["ship"] = ship
				}
				if online, err := chars.Online(cmd.Context(), characterID); err == nil {
					data["online"] = online.Online
				}
			}

			return app.OK(data, output.WithSummary("%s (%d)", info.Name, characterID))
		},
	}

	cmd.Flags().BoolVar(&public, "public", false, "Public information only, skip authenticated lookups")

	return cmd
}
