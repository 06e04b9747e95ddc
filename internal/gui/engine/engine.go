// Package engine runs the GUI loop. All session, cache and binding state is
// owned by a single goroutine; transports inject requests over channels and
// data fetches run on workers that hand their result back the same way.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"warpgate.gg/internal/gui/action"
	"warpgate.gg/internal/gui/icons"
	"warpgate.gg/internal/gui/item"
	"warpgate.gg/internal/gui/paneldef"
	"warpgate.gg/internal/gui/provider"
	"warpgate.gg/internal/gui/render"
	"warpgate.gg/internal/gui/session"
	"warpgate.gg/internal/i18n"
	"warpgate.gg/internal/protocol"
	"warpgate.gg/internal/warps"
)

type Config struct {
	CacheTTL     time.Duration
	SweepEvery   time.Duration
	FetchTimeout time.Duration
	HistoryMax   int
	DetailPanel  string
}

func (c *Config) normalize() {
	if c.CacheTTL <= 0 {
		c.CacheTTL = 2 * time.Minute
	}
	if c.SweepEvery <= 0 {
		c.SweepEvery = 30 * time.Second
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 5 * time.Second
	}
	if c.DetailPanel == "" {
		c.DetailPanel = "warp_detail"
	}
}

// AuditEntry is one line of the panel audit trail.
type AuditEntry struct {
	At      string   `json:"at"`
	Type    string   `json:"type"`
	UserID  string   `json:"user_id"`
	Panel   string   `json:"panel,omitempty"`
	Cell    int      `json:"cell,omitempty"`
	WarpID  string   `json:"warp_id,omitempty"`
	Actions []string `json:"actions,omitempty"`
	Code    string   `json:"code,omitempty"`
}

type AuditSink interface {
	WriteAudit(AuditEntry) error
}

// Deps wires the engine to its collaborators. Audit may be nil.
type Deps struct {
	Defs      *paneldef.Registry
	Icons     *icons.Catalog
	Builder   *item.Builder
	Renderers *render.Registry
	Providers []provider.Provider
	Store     warps.Store
	Locales   *i18n.Bundle
	Audit     AuditSink
	Log       *log.Logger
}

// JoinRequest registers a connected user. Out is the frame queue the
// transport drains; Resp receives the welcome exactly once.
type JoinRequest struct {
	User session.User
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

// LeaveRequest tears down one connection. ConnID is the session id issued at
// join; a leave for a connection that has since been replaced by a rejoin is
// ignored so the stale reader cannot destroy the live session. An empty
// ConnID matches unconditionally, for embedding hosts that track no ids.
type LeaveRequest struct {
	UserID string
	ConnID string
}

type OpenRequest struct {
	UserID string
	Panel  string
}

type ClickEnvelope struct {
	UserID string
	Click  action.Click
}

// fetchResult is the worker-to-engine hand-off for one async fetch.
type fetchResult struct {
	UserID string
	Panel  string
	Seq    uint64
	Warps  []warps.Warp
	Err    error
	Cache  bool
}

type pendingFetch struct {
	Panel string
	Seq   uint64
	Prov  provider.Provider
}

// client is one live connection: its frame queue and the session id minted
// when it joined.
type client struct {
	out    chan []byte
	connID string
}

type Engine struct {
	cfg  Config
	deps Deps

	sessions *session.Tracker
	cache    *provider.Cache

	clients  map[string]client
	bindings map[string]*action.PanelBinding
	pending  map[string]pendingFetch

	join       chan JoinRequest
	leave      chan LeaveRequest
	open       chan OpenRequest
	click      chan ClickEnvelope
	closeReq   chan string
	clearCache chan string
	fetchDone  chan fetchResult
}

func New(cfg Config, deps Deps) *Engine {
	cfg.normalize()
	return &Engine{
		cfg:        cfg,
		deps:       deps,
		sessions:   session.NewTracker(cfg.HistoryMax),
		cache:      provider.NewCache(cfg.CacheTTL),
		clients:    map[string]client{},
		bindings:   map[string]*action.PanelBinding{},
		pending:    map[string]pendingFetch{},
		join:       make(chan JoinRequest, 64),
		leave:      make(chan LeaveRequest, 64),
		open:       make(chan OpenRequest, 256),
		click:      make(chan ClickEnvelope, 256),
		closeReq:   make(chan string, 64),
		clearCache: make(chan string, 64),
		fetchDone:  make(chan fetchResult, 64),
	}
}

// Request channels, for transports and embedding hosts.
func (e *Engine) Join() chan<- JoinRequest    { return e.join }
func (e *Engine) Leave() chan<- LeaveRequest  { return e.leave }
func (e *Engine) Open() chan<- OpenRequest    { return e.open }
func (e *Engine) Click() chan<- ClickEnvelope { return e.click }
func (e *Engine) Close() chan<- string        { return e.closeReq }
func (e *Engine) CacheClear() chan<- string   { return e.clearCache }

// Run drives the loop until the context is canceled. It must be the only
// goroutine calling the handle methods.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.SweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-e.join:
			e.handleJoin(req)
		case req := <-e.leave:
			e.handleLeave(req)
		case req := <-e.open:
			e.handleOpen(req)
		case env := <-e.click:
			e.handleClick(env)
		case id := <-e.closeReq:
			e.handleClose(id)
		case id := <-e.clearCache:
			e.cache.Invalidate(id)
		case res := <-e.fetchDone:
			e.handleFetchDone(res)
		case now := <-ticker.C:
			e.cache.Sweep(now)
		}
	}
}

func (e *Engine) handleJoin(req JoinRequest) {
	e.sessions.Ensure(req.User)
	// A rejoin replaces the previous connection outright. Closing the old
	// queue makes the stale writer exit; its eventual leave carries the old
	// conn id and is ignored.
	if old, ok := e.clients[req.User.ID]; ok && old.out != nil {
		close(old.out)
	}
	connID := uuid.NewString()
	e.clients[req.User.ID] = client{out: req.Out, connID: connID}
	delete(e.bindings, req.User.ID)
	delete(e.pending, req.User.ID)

	w := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       connID,
		Panels:          e.deps.Defs.Names(),
		PanelsDigest:    e.deps.Defs.Digest(),
	}
	if e.deps.Icons != nil {
		w.IconsDigest = e.deps.Icons.Digest
	}
	if req.Resp != nil {
		req.Resp <- JoinResponse{Welcome: w}
	}
	e.auditWrite(AuditEntry{Type: "JOIN", UserID: req.User.ID})
}

func (e *Engine) handleLeave(req LeaveRequest) {
	c, ok := e.clients[req.UserID]
	if !ok {
		return
	}
	if req.ConnID != "" && c.connID != req.ConnID {
		// Leave from a connection that was already replaced by a rejoin.
		return
	}
	delete(e.clients, req.UserID)
	delete(e.bindings, req.UserID)
	delete(e.pending, req.UserID)
	e.cache.Invalidate(req.UserID)
	e.sessions.HandleDisconnect(req.UserID)
	e.auditWrite(AuditEntry{Type: "LEAVE", UserID: req.UserID})
}

func (e *Engine) handleClose(userID string) {
	e.sessions.ClosePanel(userID)
	delete(e.bindings, userID)
	delete(e.pending, userID)
}

func (e *Engine) handleOpen(req OpenRequest) {
	st := e.sessions.Get(req.UserID)
	if st == nil {
		e.notice(req.UserID, protocol.ErrNoSession, "session.missing")
		return
	}
	def := e.deps.Defs.Get(req.Panel)
	if def == nil {
		e.notice(req.UserID, protocol.ErrPanelNotFound, "panel.not_found")
		return
	}
	if !def.Renderable() {
		e.notice(req.UserID, protocol.ErrPanelEmpty, "panel.empty")
		return
	}

	// Bump before any async work so a stale fetch from an earlier open can
	// never clobber this one.
	st.OpenSeq++
	delete(e.pending, req.UserID)

	prov := e.providerFor(req.Panel)
	if prov == nil {
		e.finishRender(st, def, nil)
		return
	}

	forced := st.BoolData(session.KeyRefresh)
	if forced {
		st.ClearData(session.KeyRefresh)
	}
	if !forced && prov.Cacheable() {
		if all, ok := e.cache.Get(st.User.ID, req.Panel, time.Now()); ok {
			md := prov.Paginate(st, all)
			e.finishRender(st, def, &md)
			return
		}
	}

	q := provider.Query{User: st.User}
	if v, ok := st.Data(session.KeySelectedWarp); ok {
		q.WarpID, _ = v.AsWarpID()
	}
	e.pending[st.User.ID] = pendingFetch{Panel: req.Panel, Seq: st.OpenSeq, Prov: prov}

	seq := st.OpenSeq
	cacheable := !forced && prov.Cacheable()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.FetchTimeout)
		defer cancel()
		all, err := prov.Fetch(ctx, e.deps.Store, q)
		e.fetchDone <- fetchResult{
			UserID: q.User.ID,
			Panel:  req.Panel,
			Seq:    seq,
			Warps:  all,
			Err:    err,
			Cache:  cacheable,
		}
	}()
}

func (e *Engine) handleFetchDone(res fetchResult) {
	if res.Err != nil {
		if e.deps.Log != nil {
			e.deps.Log.Printf("fetch %s for %s: %v", res.Panel, res.UserID, res.Err)
		}
		// The panel still renders, just empty.
		res.Warps = nil
		e.notice(res.UserID, protocol.ErrStoreFail, "data.unavailable")
	} else if res.Cache {
		e.cache.Put(res.UserID, res.Panel, res.Warps, time.Now())
	}

	p, ok := e.pending[res.UserID]
	if !ok || p.Seq != res.Seq || p.Panel != res.Panel {
		// A newer open superseded this fetch; the cache write above still
		// counts, the render does not.
		return
	}
	delete(e.pending, res.UserID)

	st := e.sessions.Get(res.UserID)
	if st == nil {
		return
	}
	def := e.deps.Defs.Get(res.Panel)
	if def == nil || !def.Renderable() {
		// The definition set was swapped out mid-fetch.
		e.notice(res.UserID, protocol.ErrPanelUnavailable, "panel.unavailable")
		return
	}
	md := p.Prov.Paginate(st, res.Warps)
	e.finishRender(st, def, &md)
}

func (e *Engine) handleClick(env ClickEnvelope) {
	st := e.sessions.Get(env.UserID)
	if st == nil || st.Panel == "" {
		return
	}
	if env.Click.Cell < 0 || env.Click.Cell >= paneldef.MaxRows*paneldef.Cols {
		e.notice(env.UserID, protocol.ErrBadCell, "click.bad_cell")
		return
	}
	b := e.bindings[env.UserID]
	if b == nil || b.Panel != st.Panel {
		return
	}

	res := action.ResolveClick(b, env.Click)
	switch {
	case res.ClearSearch:
		st.ClearData(session.KeySearch)
		st.SetData(session.KeyPage, session.Int(0))
		e.handleOpen(OpenRequest{UserID: env.UserID, Panel: st.Panel})
	case res.OpenDetail:
		st.SetData(session.KeySelectedWarp, session.WarpID(res.WarpID))
		e.handleOpen(OpenRequest{UserID: env.UserID, Panel: e.cfg.DetailPanel})
	case len(res.Actions) > 0 || res.WarpID != "":
		if e.applyBuiltin(env.UserID, st, res) {
			return
		}
		msg := protocol.ActionsMsg{
			Type:            protocol.TypeActions,
			ProtocolVersion: protocol.Version,
			Panel:           b.Panel,
			Cell:            env.Click.Cell,
			Actions:         res.Actions,
			WarpID:          res.WarpID,
		}
		e.push(env.UserID, marshal(msg))
		e.auditWrite(AuditEntry{
			Type:    "CLICK",
			UserID:  env.UserID,
			Panel:   b.Panel,
			Cell:    env.Click.Cell,
			WarpID:  res.WarpID,
			Actions: res.Actions,
		})
	}
}

// applyBuiltin handles the navigation actions that never leave the engine.
// Everything else is dispatched to the host verbatim.
func (e *Engine) applyBuiltin(userID string, st *session.State, res action.Result) bool {
	if len(res.Actions) != 1 {
		return false
	}
	switch res.Actions[0] {
	case "page_next":
		// Out-of-range pages are clamped during pagination.
		st.SetData(session.KeyPage, session.Int(st.IntData(session.KeyPage)+1))
	case "page_prev":
		p := st.IntData(session.KeyPage) - 1
		if p < 0 {
			p = 0
		}
		st.SetData(session.KeyPage, session.Int(p))
	case "refresh":
		st.SetData(session.KeyRefresh, session.Bool(true))
	case "back":
		e.sessions.PopHistory(userID)
		prev, ok := e.sessions.PopHistory(userID)
		if !ok {
			return true
		}
		e.handleOpen(OpenRequest{UserID: userID, Panel: prev})
		return true
	default:
		return false
	}
	e.handleOpen(OpenRequest{UserID: userID, Panel: st.Panel})
	return true
}

func (e *Engine) finishRender(st *session.State, def *paneldef.Definition, data *provider.MenuData) {
	grid, binding, err := e.render(def, st, data)
	if err != nil {
		if e.deps.Log != nil {
			e.deps.Log.Printf("render %s for %s: %v", def.Name, st.User.ID, err)
		}
		e.notice(st.User.ID, protocol.ErrPanelUnavailable, "panel.unavailable")
		return
	}

	e.bindings[st.User.ID] = binding
	e.sessions.SetCurrentPanel(st.User.ID, def.Name)
	e.sessions.PushHistory(st.User.ID, def.Name)

	msg := protocol.GridMsg{
		Type:            protocol.TypeGrid,
		ProtocolVersion: protocol.Version,
		Panel:           def.Name,
		Title:           grid.Title,
		Rows:            grid.Rows,
		Cols:            grid.Cols,
		Cells:           make([]*protocol.GridCell, len(grid.Cells)),
	}
	for i, v := range grid.Cells {
		if v == nil {
			continue
		}
		msg.Cells[i] = &protocol.GridCell{Icon: v.Icon, Name: v.Name, Lore: v.Lore, Count: v.Count}
	}
	e.push(st.User.ID, marshal(msg))
	e.auditWrite(AuditEntry{Type: "OPEN", UserID: st.User.ID, Panel: def.Name})
}

// render isolates a panicking strategy or builder to the one open request.
func (e *Engine) render(def *paneldef.Definition, st *session.State, data *provider.MenuData) (g *render.Grid, b *action.PanelBinding, err error) {
	defer func() {
		if r := recover(); r != nil {
			g, b = nil, nil
			err = fmt.Errorf("render panic: %v", r)
		}
	}()
	return e.deps.Renderers.Render(&render.Context{Def: def, St: st, Data: data, Builder: e.deps.Builder})
}

func (e *Engine) providerFor(panel string) provider.Provider {
	for _, p := range e.deps.Providers {
		if p.Supports(panel) {
			return p
		}
	}
	return nil
}

func (e *Engine) notice(userID, code, key string) {
	if e.clients[userID].out == nil {
		return
	}
	locale := ""
	if st := e.sessions.Get(userID); st != nil {
		locale = st.User.Locale
	}
	msg := protocol.NoticeMsg{
		Type:            protocol.TypeNotice,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         e.deps.Locales.Resolve(key, locale),
	}
	e.push(userID, marshal(msg))
}

// push delivers without blocking the loop. When the client's queue is full
// the oldest frame is dropped so the freshest state wins.
func (e *Engine) push(userID string, b []byte) {
	if b == nil {
		return
	}
	ch := e.clients[userID].out
	if ch == nil {
		return
	}
	select {
	case ch <- b:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}

func (e *Engine) auditWrite(entry AuditEntry) {
	if e.deps.Audit == nil {
		return
	}
	entry.At = time.Now().UTC().Format(time.RFC3339Nano)
	if err := e.deps.Audit.WriteAudit(entry); err != nil && e.deps.Log != nil {
		e.deps.Log.Printf("audit: %v", err)
	}
}

func marshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
