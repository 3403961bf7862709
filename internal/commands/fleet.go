package commands

import (
	"github.com/spf13/cobra"

	"github.com/evetools/esi-cli/internal/esi"
	"github.com/evetools/esi-cli/internal/output"
)

// NewFleetCmd creates the fleet command group.
func NewFleetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fleet <character-id>",
		Short: "Show the character's current fleet",
		Long:  "Show the fleet the character is in, its settings and role. The character must be in a fleet.",
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

			fleets := esi.NewFleetAPI(app.Client)
			current, err := fleets.CharacterFleet(cmd.Context(), characterID)
			if err != nil {
				return err
			}

			data := map[string]any{
				"fleet_id": current.FleetID,
				"role":     current.Role,
				"wing_id":  current.WingID,
				"squad_id": current.SquadID,
			}
			// Settings require fleet boss; show what we have otherwise.
			if info, err := fleets.Fleet(cmd.Context(), current.FleetID, characterID); err == nil {
				data["motd"] = info.MOTD
				data["free_move"] = info.IsFreeMove
			}

			return app.OK(data, output.WithSummary("Fleet %d (%s)", current.FleetID, current.Role))
		},
	}

	cmd.AddCommand(newFleetMembersCmd(), newFleetWingsCmd())

	return cmd
}

func newFleetMembersCmd() *cobra.Command {
	var fleetID int64

	cmd := &cobra.Command{
		Use:   "members <character-id>",
		Short: "List fleet members",
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

			fleets := esi.NewFleetAPI(app.Client)
			id := fleetID
			if id == 0 {
				current, err := fleets.CharacterFleet(cmd.Context(), characterID)
				if err != nil {
					return err
				}
				id = current.FleetID
			}

			members, err := fleets.Members(cmd.Context(), id, characterID)
			if err != nil {
				return err
			}

			return app.OK(members, output.WithSummary("%d member(s) in fleet %d", len(members), id))
		},
	}

	cmd.Flags().Int64Var(&fleetID, "fleet-id", 0, "Fleet id (default: the character's current fleet)")

	return cmd
}

func newFleetWingsCmd() *cobra.Command {
	var fleetID int64

	cmd := &cobra.Command{
		Use:   "wings <character-id>",
		Short: "Show the fleet wing and squad layout",
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

			fleets := esi.NewFleetAPI(app.Client)
			id := fleetID
			if id == 0 {
				current, err := fleets.CharacterFleet(cmd.Context(), characterID)
				if err != nil {
					return err
				}
				id = current.FleetID
			}

			wings, err := fleets.Wings(cmd.Context(), id, characterID)
			if err != nil {
				return err
			}

			return app.OK(wings, output.WithSummary("%d wing(s) in fleet %d", len(wings), id))
		},
	}

	cmd.Flags().Int64Var(&fleetID, "fleet-id", 0, "Fleet id (default: the character's current fleet)")

	return cmd
}
