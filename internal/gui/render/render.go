// Package render assembles the final grid from a layout and built items.
// One strategy per panel type; the first registered strategy that supports
// the render wins, with the standard strategy as the fallback.
package render

import (
	"fmt"

	"warpgate.gg/internal/gui/action"
	"warpgate.gg/internal/gui/item"
	"warpgate.gg/internal/gui/paneldef"
	"warpgate.gg/internal/gui/provider"
	"warpgate.gg/internal/gui/session"
)

// Grid is the produced artifact handed to the host: a fixed row-count by
// nine-column matrix of resolved cells, nil meaning empty.
type Grid struct {
	Title string
	Rows  int
	Cols  int
	Cells []*item.Visual
}

func (g *Grid) At(row, col int) *item.Visual {
	return g.Cells[row*g.Cols+col]
}

// Context is everything a strategy needs for one render cycle.
type Context struct {
	Def     *paneldef.Definition
	St      *session.State
	Data    *provider.MenuData
	Builder *item.Builder
}

type Strategy interface {
	Supports(ctx *Context) bool
	Render(ctx *Context) (*Grid, *action.PanelBinding, error)
}

// Standard places a built item at every non-blank layout cell, independent
// of any data set.
type Standard struct{}

func (Standard) Supports(ctx *Context) bool { return ctx.Data == nil }

func (Standard) Render(ctx *Context) (*Grid, *action.PanelBinding, error) {
	grid, binding := newGrid(ctx)
	walkLayout(ctx.Def, func(idx int, it *paneldef.Item) {
		vis, actions := ctx.Builder.Build(it, ctx.St, ctx.Data, nil)
		grid.Cells[idx] = vis
		binding.Cells[idx] = action.CellBinding{Actions: actions, Search: it.Search}
	})
	return grid, binding, nil
}

// Listing renders like Standard but walks the current data page, placing one
// domain-bound item per warp-item cell in layout order until the slots or
// the page run out; leftover listing slots on the last page stay empty.
type Listing struct{}

func (Listing) Supports(ctx *Context) bool { return ctx.Data != nil }

func (Listing) Render(ctx *Context) (*Grid, *action.PanelBinding, error) {
	grid, binding := newGrid(ctx)
	next := 0
	walkLayout(ctx.Def, func(idx int, it *paneldef.Item) {
		if it.WarpItem {
			if next >= len(ctx.Data.Warps) {
				binding.Cells[idx] = action.CellBinding{WarpSlot: true}
				return
			}
			w := ctx.Data.Warps[next]
			next++
			vis, actions := ctx.Builder.Build(it, ctx.St, ctx.Data, &w)
			grid.Cells[idx] = vis
			binding.Cells[idx] = action.CellBinding{
				Actions:  actions,
				WarpID:   w.ID,
				WarpSlot: true,
			}
			return
		}
		vis, actions := ctx.Builder.Build(it, ctx.St, ctx.Data, nil)
		grid.Cells[idx] = vis
		binding.Cells[idx] = action.CellBinding{Actions: actions, Search: it.Search}
	})
	return grid, binding, nil
}

func newGrid(ctx *Context) (*Grid, *action.PanelBinding) {
	def := ctx.Def
	grid := &Grid{
		Title: ctx.Builder.Title(def.Title, ctx.St, ctx.Data),
		Rows:  def.Rows(),
		Cols:  paneldef.Cols,
		Cells: make([]*item.Visual, def.Rows()*paneldef.Cols),
	}
	binding := &action.PanelBinding{Panel: def.Name, Cells: map[int]action.CellBinding{}}
	return grid, binding
}

// walkLayout visits every layout cell that maps to a defined item, in
// row-major order. Symbols without an item definition were already flagged
// by the loader; here they simply stay empty.
func walkLayout(def *paneldef.Definition, visit func(idx int, it *paneldef.Item)) {
	for r, row := range def.Layout {
		c := 0
		for _, sym := range row {
			if c >= paneldef.Cols {
				break
			}
			if sym != ' ' {
				if it := def.Items[sym]; it != nil {
					visit(r*paneldef.Cols+c, it)
				}
			}
			c++
		}
	}
}

// Registry picks the first supporting strategy in registration order,
// falling back to Standard.
type Registry struct {
	strategies []Strategy
}

func NewRegistry(strategies ...Strategy) *Registry {
	return &Registry{strategies: strategies}
}

func (r *Registry) Render(ctx *Context) (*Grid, *action.PanelBinding, error) {
	if ctx == nil || ctx.Def == nil {
		return nil, nil, fmt.Errorf("nil panel definition")
	}
	if !ctx.Def.Renderable() {
		return nil, nil, fmt.Errorf("panel %s: empty layout", ctx.Def.Name)
	}
	for _, s := range r.strategies {
		if s.Supports(ctx) {
			return s.Render(ctx)
		}
	}
	return Standard{}.Render(ctx)
}
