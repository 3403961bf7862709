// Package appctx provides application context helpers.
package appctx

import (
	"context"
	"net/http"
	"os"

	"github.com/evetools/esi-cli/internal/auth"
	"github.com/evetools/esi-cli/internal/config"
	"github.com/evetools/esi-cli/internal/esi"
	"github.com/evetools/esi-cli/internal/output"
)

// contextKey is a private type for context keys.
type contextKey string

const appKey contextKey = "app"

// App holds the shared application context for all commands.
type App struct {
	Config *config.Config
	Auth   *auth.Manager
	Client *esi.Client
	Output *output.Writer

	// Flags holds the global flag values
	Flags GlobalFlags
}

// GlobalFlags holds values for global CLI flags.
type GlobalFlags struct {
	JSON  bool
	Quiet bool
}

// NewApp creates a new App with the given configuration.
func NewApp(cfg *config.Config) *App {
	store := auth.NewStore(cfg.TokenFile)
	httpClient := &http.Client{Timeout: cfg.Timeout}
	authMgr := auth.NewManager(cfg, store, httpClient)

	return &App{
		Config: cfg,
		Auth:   authMgr,
		Client: esi.NewClient(cfg, authMgr),
		Output: output.New(output.Options{
			Format: output.FormatAuto,
			Writer: os.Stdout,
		}),
	}
}

// ApplyFlags applies global flag values to the app's output writer.
func (a *App) ApplyFlags() {
	switch {
	case a.Flags.Quiet:
		a.Output = output.New(output.Options{
			Format: output.FormatQuiet,
			Writer: os.Stdout,
		})
	case a.Flags.JSON:
		a.Output = output.New(output.Options{
			Format: output.FormatJSON,
			Writer: os.Stdout,
		})
	}
}

// OK outputs a success response.
func (a *App) OK(data any, opts ...output.ResponseOption) error {
	return a.Output.OK(data, opts...)
}

// Err outputs an error response.
func (a *App) Err(err error) error {
	return a.Output.Err(err)
}

// WithApp stores the app in the context.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey, app)
}

// FromContext retrieves the app from the context, or nil.
func FromContext(ctx context.Context) *App {
	app, _ := ctx.Value(appKey).(*App)
	return app
}
