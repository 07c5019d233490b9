// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/dispatch/app/services/dispatch-api/handlers/v1/tablegrp"
	"github.com/ardanlabs/dispatch/foundation/dispatch"
	"github.com/ardanlabs/dispatch/foundation/events"
	"github.com/ardanlabs/dispatch/foundation/nameservice"
	"github.com/ardanlabs/dispatch/foundation/tablestore"
	"github.com/ardanlabs/dispatch/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	Store *tablestore.Store
	Evts  *events.Events
	NS    *nameservice.NameService
	Build dispatch.Config
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	tgh := tablegrp.Handlers{
		Log:      cfg.Log,
		Store:    cfg.Store,
		Evts:     cfg.Evts,
		NS:       cfg.NS,
		Defaults: cfg.Build,
	}

	app.Handle(http.MethodPost, version, "/selectors", tgh.Selectors)
	app.Handle(http.MethodGet, version, "/selectors/:selector", tgh.Names)
	app.Handle(http.MethodPost, version, "/tables", tgh.Build)
	app.Handle(http.MethodGet, version, "/tables/:digest", tgh.Query)
	app.Handle(http.MethodGet, version, "/tables/:digest/lookup/:selector", tgh.Lookup)
	app.Handle(http.MethodGet, version, "/tables/:digest/huff", tgh.Huff)
	app.Handle(http.MethodGet, version, "/events", tgh.Events)
}
