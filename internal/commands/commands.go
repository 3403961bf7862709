// Package commands implements the CLI commands.
package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/evetools/esi-cli/internal/appctx"
	"github.com/evetools/esi-cli/internal/output"
)

// requireApp fetches the app from the command context.
func requireApp(cmd *cobra.Command) (*appctx.App, error) {
	app := appctx.FromContext(cmd.Context())
	if app == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return app, nil
}

// parseCharacterID parses a positional character id argument.
func parseCharacterID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, output.ErrUsageHint(
			fmt.Sprintf("Invalid character id %q", arg),
			"Character ids are positive integers, e.g. 2112625428",
		)
	}
	return id, nil
}
