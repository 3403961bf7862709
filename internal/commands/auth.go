package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/evetools/esi-cli/internal/auth"
	"github.com/evetools/esi-cli/internal/output"
)

// NewAuthCmd creates the auth command.
func NewAuthCmd() *cobra.Command {
	var noBrowser bool
	var manual bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate a character with EVE SSO",
		Long:  "Start the OAuth authorization flow and store the resulting token. Repeat for additional characters.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			if err := app.Config.RequireCredentials(); err != nil {
				return err
			}

			rec, err := app.Auth.Login(cmd.Context(), auth.LoginOptions{
				NoBrowser: noBrowser,
				Manual:    manual,
			})
			if err != nil {
				return err
			}

			return app.OK(map[string]any{
				"character_id":   rec.CharacterID,
				"character_name": rec.CharacterName,
				"expires_at":     time.Unix(rec.ExpiresAt, 0).UTC().Format(time.RFC3339),
				"scopes":         rec.Scopes,
			}, output.WithSummary("Authenticated as %s (%d)", rec.CharacterName, rec.CharacterID))
		},
	}

	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Print the authorization URL instead of opening a browser")
	cmd.Flags().BoolVar(&manual, "manual", false, "Paste the callback URL by hand instead of running a local server")

	return cmd
}

// tokenSummary is one row of the list-tokens output.
type tokenSummary struct {
	CharacterID   int64    `json:"character_id"`
	CharacterName string   `json:"character_name"`
	ExpiresAt     string   `json:"expires_at"`
	Expired       bool     `json:"expired"`
	Scopes        []string `json:"scopes,omitempty"`
}

// NewListTokensCmd creates the list-tokens command.
func NewListTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-tokens",
		Short: "List stored character tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			store := app.Auth.Store()
			ids, err := store.List()
			if err != nil {
				return err
			}

			summaries := make([]tokenSummary, 0, len(ids))
			for _, id := range ids {
				rec, err := store.Get(id)
				if err != nil {
					return err
				}
				summaries = append(summaries, tokenSummary{
					CharacterID:   rec.CharacterID,
					CharacterName: rec.CharacterName,
					ExpiresAt:     time.Unix(rec.ExpiresAt, 0).UTC().Format(time.RFC3339),
					Expired:       rec.Expired(0),
					Scopes:        rec.Scopes,
				})
			}

			summary := fmt.Sprintf("%d stored token(s)", len(summaries))
			if len(summaries) == 0 {
				summary = "No stored tokens. Run: esi auth"
			}
			return app.OK(summaries, output.WithSummary("%s", summary))
		},
	}
}

// NewRevokeTokenCmd creates the revoke-token command.
func NewRevokeTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke-token <character-id>",
		Short: "Revoke and delete a stored token",
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

			if err := app.Auth.Revoke(cmd.Context(), characterID); err != nil {
				return err
			}

			return app.OK(map[string]any{
				"character_id": characterID,
				"status":       "revoked",
			}, output.WithSummary("Revoked token for character %d", characterID))
		},
	}
}
