package app

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/oauth"

	"github.com/mbolis/branch-portal/config"
	"github.com/mbolis/branch-portal/form"
	"github.com/mbolis/branch-portal/remote"
	"github.com/mbolis/branch-portal/session"
	"github.com/mbolis/branch-portal/web"
)

type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config

	Sessions *session.Manager
	Remote   remote.Store
	Engine   *form.Engine
	Pages    *web.Renderer
}

// New assembles the application around an open database.
func New(db *sql.DB, bearerServer *oauth.BearerServer, cfg config.Config) (App, error) {
	pages, err := web.NewRenderer()
	if err != nil {
		return App{}, err
	}

	store := NewRemote(cfg)
	return App{
		DB:           db,
		BearerServer: bearerServer,
		Config:       cfg,
		Sessions:     session.NewManager(session.NewStore(db), cfg.Transport == config.TransportHTTP, cfg.Endpoint),
		Remote:       store,
		Engine:       form.NewEngine(store),
		Pages:        pages,
	}, nil
}

// NewRemote picks the backend transport. Only the http transport depends on
// the endpoint configured on each device.
func NewRemote(cfg config.Config) remote.Store {
	client := &http.Client{Timeout: cfg.HTTPTimeout}

	switch cfg.Transport {
	case config.TransportBridge:
		if cfg.BridgeURL != "" {
			return remote.NewBridgeStore(remote.NewScriptBridge(cfg.BridgeURL, cfg.BridgeToken, client))
		}
		return remote.NewBridgeStore(nil)
	case config.TransportMock:
		return remote.NewBridgeStore(&remote.MockBridge{Delay: cfg.MockDelay})
	default:
		return &remote.EndpointStore{Default: cfg.Endpoint, Client: client}
	}
}
