// Package app is the composition root: it wires configuration, the token
// store, both gateway clients, and the three stateful services together.
// Nothing here is a singleton; callers hold the App and pass its pieces
// down explicitly.
package app

import (
	"github.com/spf13/afero"

	"streamnest/config"
	"streamnest/services/gateway"
	"streamnest/services/search"
	"streamnest/services/state"
	"streamnest/services/tokens"
	"streamnest/services/validate"
	"streamnest/utils/images"
	"streamnest/utils/logging"
)

// App bundles the wired client services.
type App struct {
	Config   *config.Config
	Tokens   *tokens.Store
	Backend  *gateway.BackendClient
	Metadata *gateway.TMDBClient
	Images   *images.Resolver
	Store    *state.Service
	Search   *search.Service
	Validate *validate.Service
}

// New assembles the client from configuration.
func New(cfg *config.Config) (*App, error) {
	logging.Setup(cfg.LogFile)

	fs := afero.NewOsFs()
	tokenStore, err := tokens.NewStore(fs, cfg.DataDir)
	if err != nil {
		return nil, err
	}

	backend := gateway.NewBackendClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, tokenStore)
	metadata := gateway.NewTMDBClient(cfg.Metadata.BaseURL, cfg.Metadata.APIKey, cfg.Metadata.Language)

	store := state.NewService(backend, tokenStore,
		state.WithSessionCache(fs, cfg.DataDir),
	)

	return &App{
		Config:   cfg,
		Tokens:   tokenStore,
		Backend:  backend,
		Metadata: metadata,
		Images:   images.NewResolver(cfg.Metadata.ImageURL),
		Store:    store,
		Search:   search.NewService(metadata, search.WithDebounce(cfg.Search.Debounce)),
		Validate: validate.NewService(metadata, cfg.Search.BatchSize),
	}, nil
}
