package commands

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/evetools/esi-cli/internal/appctx"
	"github.com/evetools/esi-cli/internal/esi"
	"github.com/evetools/esi-cli/internal/output"
)

// NewAPICmd creates the api command for raw ESI access.
func NewAPICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api <verb> <path>",
		Short: "Raw ESI access",
		Long:  "Make raw requests to any ESI route. Useful for endpoints not covered by dedicated commands.",
	}

	cmd.AddCommand(
		newAPIVerbCmd(http.MethodGet, "GET request to ESI", false),
		newAPIVerbCmd(http.MethodPost, "POST request to ESI", true),
		newAPIVerbCmd(http.MethodPut, "PUT request to ESI", true),
		newAPIVerbCmd(http.MethodDelete, "DELETE request to ESI", false),
	)

	return cmd
}

func newAPIVerbCmd(method, short string, requireData bool) *cobra.Command {
	var data string
	var jqExpr string
	var characterID int64

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <path>", lowerMethod(method)),
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			var body any
			if data != "" {
				if err := json.Unmarshal([]byte(data), &body); err != nil {
					return output.ErrUsageHint("Invalid JSON data", fmt.Sprintf("JSON parse error: %v", err))
				}
			} else if requireData {
				return output.ErrUsage("--data is required")
			}

			resp, err := rawRequest(cmd, app, method, args[0], body, characterID)
			if err != nil {
				return err
			}

			var result any
			if len(resp.Data) > 0 {
				if err := resp.UnmarshalData(&result); err != nil {
					return fmt.Errorf("decode response: %w", err)
				}
			}

			if jqExpr != "" {
				if result, err = applyJQ(jqExpr, result); err != nil {
					return err
				}
			}

			return app.OK(result, output.WithSummary("%s %s (HTTP %d)", method, args[0], resp.StatusCode))
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	cmd.Flags().StringVar(&jqExpr, "jq", "", "Filter the response with a jq expression")
	cmd.Flags().Int64VarP(&characterID, "character", "c", 0, "Authenticate as this character")

	return cmd
}

func rawRequest(cmd *cobra.Command, app *appctx.App, method, path string, body any, characterID int64) (*esi.Response, error) {
	var opts []esi.RequestOption
	if characterID != 0 {
		opts = append(opts, esi.WithCharacter(characterID))
	}

	ctx := cmd.Context()
	switch method {
	case http.MethodGet:
		return app.Client.Get(ctx, path, opts...)
	case http.MethodPost:
		return app.Client.Post(ctx, path, body, opts...)
	case http.MethodPut:
		return app.Client.Put(ctx, path, body, opts...)
	case http.MethodDelete:
		return app.Client.Delete(ctx, path, body, opts...)
	default:
		return nil, output.ErrUsage("Unsupported method " + method)
	}
}

// applyJQ runs a jq expression over decoded JSON. A single result is
// returned bare, multiple results as an array.
func applyJQ(expr string, input any) (any, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, output.ErrUsageHint("Invalid jq expression", err.Error())
	}

	var results []any
	iter := query.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, output.ErrUsageHint("jq evaluation failed", err.Error())
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

func lowerMethod(method string) string {
	switch method {
	case http.MethodGet:
		return "get"
	case http.MethodPost:
		return "post"
	case http.MethodPut:
		return "put"
	case http.MethodDelete:
		return "delete"
	}
	return method
}
