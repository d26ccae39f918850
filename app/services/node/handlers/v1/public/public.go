// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/cerocoin/business/web/errs"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/database"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/signature"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/state"
	"github.com/ardanlabs/cerocoin/foundation/events"
	"github.com/ardanlabs/cerocoin/foundation/nameservice"
	"github.com/ardanlabs/cerocoin/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of node endpoints.
type Handlers struct {
	Log         *zap.SugaredLogger
	State       *state.State
	WS          websocket.Upgrader
	Evts        *events.Events
	NS          *nameservice.NameService
	DialTimeout time.Duration
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Status returns a snapshot of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st := toStatus(h.State.QueryStatus())
	st.Name = h.NS.Lookup(st.Key.ID)

	return web.Respond(ctx, w, st, http.StatusOK)
}

// Names returns the node ids the name service knows about.
func (h Handlers) Names(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.NS.Copy(), http.StatusOK)
}

// Coins returns the coins the node owns and has not sold yet.
func (h Handlers) Coins(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, toCoins(h.State.QueryOwnedCoins()), http.StatusOK)
}

// PendingTransactions returns the transactions waiting to be packed.
func (h Handlers) PendingTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, toTxs(h.State.QueryPendingTransactions()), http.StatusOK)
}

// ReceivedTransactions returns the transactions received from peers.
func (h Handlers) ReceivedTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, toTxs(h.State.QueryReceivedTransactions()), http.StatusOK)
}

// CurrentBlock returns the block the node currently mines on.
func (h Handlers) CurrentBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blk, exists := h.State.QueryCurrentBlock()
	if !exists {
		return errs.NotFound("current block")
	}

	return web.Respond(ctx, w, toBlock(blk), http.StatusOK)
}

// Blocks returns every archived block.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks, err := h.State.QueryArchivedBlocks()
	if err != nil {
		return err
	}

	out := make([]block, len(blocks))
	for i, b := range blocks {
		out[i] = toBlock(b)
	}

	return web.Respond(ctx, w, out, http.StatusOK)
}

// BlockByNumber returns the archived block stored under the number.
func (h Handlers) BlockByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	num, err := strconv.ParseUint(web.Param(r, "num"), 10, 64)
	if err != nil || num == 0 {
		return errs.NewTrusted(fmt.Errorf("invalid block number %q", web.Param(r, "num")), http.StatusBadRequest)
	}

	blk, err := h.State.QueryArchivedBlock(num)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return errs.NotFound(fmt.Sprintf("block %d", num))
		}
		return err
	}

	return web.Respond(ctx, w, toBlock(blk), http.StatusOK)
}

// Verify checks a signature against a message and a public key.
func (h Handlers) Verify(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req verifyRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if _, err := signature.ParsePublicKey(req.PubKey); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Valid bool `json:"valid"`
	}{
		Valid: signature.Verify(req.Message, req.Signature, req.PubKey),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ConnectPeer dials a peer and adds it to the peer set.
func (h Handlers) ConnectPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req connectRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("connect peer", "traceid", v.TraceID, "host", req.Host)

	if err := h.State.NetConnectPeer(ctx, req.Host, h.DialTimeout); err != nil {
		return errs.NewTrusted(err, http.StatusBadGateway)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "connected",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
