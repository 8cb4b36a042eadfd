// Package handlers implements the HTTP API for triggering and
// inspecting reconciliation runs.
package handlers

import (
	"github.com/rs/zerolog"

	"github.com/winback/message-service/config"
	"github.com/winback/message-service/internal/appstore"
	"github.com/winback/message-service/internal/history"
	"github.com/winback/message-service/internal/reconcile"
	"github.com/winback/message-service/internal/types"
)

// Deps holds the shared dependencies handlers use.
type Deps struct {
	Config *config.Config
	// Store archives run results; nil when no database is configured.
	Store  *history.Store
	Logger zerolog.Logger
}

var deps Deps

// Configure wires handler dependencies. Must be called before routes
// are registered.
func Configure(d Deps) {
	deps = d
}

// newImporter builds an importer bound to the configured App Store
// credentials for the given environment.
func newImporter(env types.Environment, opts reconcile.ImportOptions) (*reconcile.Importer, error) {
	token, err := deps.Config.APIToken()
	if err != nil {
		return nil, err
	}

	client := appstore.NewClient(
		env,
		appstore.StaticTokenSource(token),
		deps.Config.RateLimit.Resolve(),
		deps.Config.API.BaseURL,
		deps.Logger,
	)

	opts.Environment = env
	opts.Logger = deps.Logger
	return reconcile.NewImporter(client, opts), nil
}
