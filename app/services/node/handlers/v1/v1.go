// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"
	"time"

	"github.com/ardanlabs/cerocoin/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/state"
	"github.com/ardanlabs/cerocoin/foundation/events"
	"github.com/ardanlabs/cerocoin/foundation/nameservice"
	"github.com/ardanlabs/cerocoin/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log         *zap.SugaredLogger
	State       *state.State
	Evts        *events.Events
	NS          *nameservice.NameService
	DialTimeout time.Duration
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:         cfg.Log,
		State:       cfg.State,
		WS:          websocket.Upgrader{},
		Evts:        cfg.Evts,
		NS:          cfg.NS,
		DialTimeout: cfg.DialTimeout,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/status", pbl.Status)
	app.Handle(http.MethodGet, version, "/names", pbl.Names)
	app.Handle(http.MethodGet, version, "/coins/list", pbl.Coins)
	app.Handle(http.MethodGet, version, "/tx/pending/list", pbl.PendingTransactions)
	app.Handle(http.MethodGet, version, "/tx/received/list", pbl.ReceivedTransactions)
	app.Handle(http.MethodGet, version, "/block/current", pbl.CurrentBlock)
	app.Handle(http.MethodGet, version, "/blocks/list", pbl.Blocks)
	app.Handle(http.MethodGet, version, "/blocks/:num", pbl.BlockByNumber)
	app.Handle(http.MethodPost, version, "/verify", pbl.Verify)
	app.Handle(http.MethodPost, version, "/peers/connect", pbl.ConnectPeer)
}
