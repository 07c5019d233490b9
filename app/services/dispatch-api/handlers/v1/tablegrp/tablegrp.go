// Package tablegrp maintains the group of handlers for building and
// querying dispatch tables.
package tablegrp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/dispatch/business/sys/metrics"
	"github.com/ardanlabs/dispatch/business/web/errs"
	"github.com/ardanlabs/dispatch/foundation/dispatch"
	"github.com/ardanlabs/dispatch/foundation/dispatch/huff"
	"github.com/ardanlabs/dispatch/foundation/events"
	"github.com/ardanlabs/dispatch/foundation/nameservice"
	"github.com/ardanlabs/dispatch/foundation/selector"
	"github.com/ardanlabs/dispatch/foundation/tablestore"
	"github.com/ardanlabs/dispatch/foundation/validate"
	"github.com/ardanlabs/dispatch/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of table endpoints.
type Handlers struct {
	Log      *zap.SugaredLogger
	Store    *tablestore.Store
	Evts     *events.Events
	NS       *nameservice.NameService
	WS       websocket.Upgrader
	Defaults dispatch.Config
}

// Selectors canonicalizes the signatures and computes their selectors.
func (h Handlers) Selectors(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req SelectorsRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	infos := make([]SelectorInfo, len(req.Signatures))
	for i, sig := range req.Signatures {
		infos[i].Input = sig

		sel, canonical, err := selector.FromSignature(sig)
		if err != nil {
			infos[i].Error = err.Error()
			continue
		}

		infos[i].Canonical = canonical
		infos[i].Selector = &sel
	}

	return web.Respond(ctx, w, infos, http.StatusOK)
}

// Names returns the known signatures for a selector.
func (h Handlers) Names(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	sel, err := selector.Parse(web.Param(r, "selector"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := NamesResponse{
		Selector:   sel,
		Signatures: h.NS.Lookup(sel),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Build builds a table for the functions, stores it and announces it to
// the event stream.
func (h Handlers) Build(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req BuildRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	cfg := h.Defaults
	if req.Threshold != nil {
		cfg.Threshold = *req.Threshold
	}
	if req.Headroom != nil {
		cfg.Headroom = *req.Headroom
	}

	fns := toFunctions(req.Functions)

	var tbl dispatch.Table
	switch req.Width {
	case nil:
		tbl, err = dispatch.Build(fns, cfg)
	default:
		tbl, err = dispatch.BuildWithWidth(fns, *req.Width, cfg)
	}
	if err != nil {
		h.Evts.Send(events.Event{
			Kind:      events.KindBuildFailed,
			TraceID:   v.TraceID,
			Functions: len(fns),
			Error:     err.Error(),
		})
		return errs.FromDispatch(err)
	}

	digest, err := h.Store.Save(tbl)
	if err != nil {
		if errors.Is(err, tablestore.ErrTooLarge) {
			return errs.FromDispatch(err)
		}
		return fmt.Errorf("saving table: %w", err)
	}

	metrics.TableBuilt(tbl.Search.Satisfied, tbl.Collisions())

	h.Evts.Send(events.Event{
		Kind:       events.KindTableBuilt,
		TraceID:    v.TraceID,
		Digest:     digest,
		Functions:  len(fns),
		Width:      tbl.Width,
		Collisions: tbl.Collisions(),
		Satisfied:  tbl.Search.Satisfied,
	})

	h.Log.Infow("build table", "traceid", v.TraceID, "digest", digest, "functions", len(fns), "width", tbl.Width, "collisions", tbl.Collisions())

	resp := BuildResponse{
		Digest: digest,
		Table:  tbl,
	}

	if warn := tbl.Warning(); warn != nil {
		h.Log.Infow("build table", "traceid", v.TraceID, "digest", digest, "warning", warn)
		resp.Warning = warn.Error()
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Query returns a stored table.
func (h Handlers) Query(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	tbl, err := h.Store.Get(web.Param(r, "digest"))
	if err != nil {
		return errs.FromDispatch(err)
	}

	return web.Respond(ctx, w, tbl, http.StatusOK)
}

// Lookup routes a selector through a stored table. Passing strict=true
// also checks the selector of a direct slot.
func (h Handlers) Lookup(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	sel, err := selector.Parse(web.Param(r, "selector"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tbl, err := h.Store.Get(web.Param(r, "digest"))
	if err != nil {
		return errs.FromDispatch(err)
	}

	lookup := tbl.Lookup
	if r.URL.Query().Get("strict") == "true" {
		lookup = tbl.LookupStrict
	}

	handler, found := lookup(sel)
	metrics.Lookup(found)

	slot := dispatch.SlotIndex(sel, tbl.Mask)
	resp := LookupResponse{
		Selector: sel,
		Slot:     slot,
		Kind:     tbl.Slots[slot].Kind,
		Handler:  handler,
		Found:    found,
	}

	// Name what fell through so a caller can tell a missing function from
	// a selector nobody knows.
	if !found {
		resp.Known = h.NS.Lookup(sel)
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Huff returns the Huff source for a stored table. The fallback query
// parameter names the macro used when no function matches.
func (h Handlers) Huff(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	tbl, err := h.Store.Get(web.Param(r, "digest"))
	if err != nil {
		return errs.FromDispatch(err)
	}

	cfg := huff.DefaultConfig()
	if fallback := r.URL.Query().Get("fallback"); fallback != "" {
		cfg.Fallback = fallback
	}

	var buf bytes.Buffer
	if err := huff.Generate(&buf, tbl, cfg); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.RespondText(ctx, w, buf.Bytes(), http.StatusOK)
}

// Events handles a web socket to provide build events to a client.
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

	// The connection is hijacked so the status is only for the logs.
	web.SetStatusCode(ctx, http.StatusSwitchingProtocols)

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case e, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(e); err != nil {
				if errors.Is(err, websocket.ErrCloseSent) {
					return nil
				}
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
