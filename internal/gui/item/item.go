// Package item turns an ItemDefinition plus runtime state into the concrete
// visual stack a grid cell shows.
package item

import (
	"log"
	"strings"

	"warpgate.gg/internal/gui/action"
	"warpgate.gg/internal/gui/condition"
	"warpgate.gg/internal/gui/icons"
	"warpgate.gg/internal/gui/paneldef"
	"warpgate.gg/internal/gui/placeholder"
	"warpgate.gg/internal/gui/provider"
	"warpgate.gg/internal/gui/session"
	"warpgate.gg/internal/i18n"
	"warpgate.gg/internal/warps"
)

// Visual is a fully resolved cell: safe to hand to the host as-is.
type Visual struct {
	Icon   string
	Name   string
	Lore   []string
	Count  int
	WarpID string
}

type Builder struct {
	cond  *condition.Engine
	icons *icons.Catalog
	loc   *i18n.Bundle
	log   *log.Logger
}

func NewBuilder(cond *condition.Engine, cat *icons.Catalog, loc *i18n.Bundle, logger *log.Logger) *Builder {
	return &Builder{cond: cond, icons: cat, loc: loc, log: logger}
}

// Build resolves variants, inherits missing fields from the base item,
// binds placeholders and returns the visual plus the effective action list.
// w is non-nil only for domain-bound (warp listing) cells. Variants are
// tried in declaration order and the first matching guard wins.
func (b *Builder) Build(it *paneldef.Item, st *session.State, data *provider.MenuData, w *warps.Warp) (*Visual, []string) {
	if it == nil {
		return nil, nil
	}

	locale := ""
	if st != nil {
		locale = st.User.Locale
	}
	name, lore := it.Text(locale)
	icon := it.Icon
	variantActions := []string(nil)

	for i := range it.Variants {
		v := &it.Variants[i]
		if !b.cond.Evaluate(v.Condition, st) {
			continue
		}
		// Field-level inheritance: each override falls back to the base
		// individually, never all-or-nothing.
		if v.Icon != "" {
			icon = v.Icon
		}
		if v.Name != "" {
			name = v.Name
		}
		if v.Lore != nil {
			lore = v.Lore
		}
		variantActions = v.Actions
		break
	}

	ctx := b.placeholderCtx(st, data, w)
	vis := &Visual{
		Icon:  b.resolveIcon(it, icon),
		Name:  placeholder.Render(name, ctx),
		Count: it.Count,
	}
	if len(lore) > 0 {
		vis.Lore = make([]string, len(lore))
		for i, line := range lore {
			vis.Lore[i] = placeholder.Render(line, ctx)
		}
	}
	if it.WarpItem && w != nil {
		vis.WarpID = w.ID
	}

	// Actions are bound now, at build time, so a later click dispatches
	// against the entity and state the grid was built from.
	actions := action.Resolve(it.Actions, variantActions)
	if len(actions) > 0 {
		resolved := make([]string, len(actions))
		for i, a := range actions {
			resolved[i] = placeholder.Substitute(a, ctx)
		}
		actions = resolved
	}
	return vis, actions
}

// Title resolves a panel title template against the same layered sources an
// item sees, minus any bound warp.
func (b *Builder) Title(tmpl string, st *session.State, data *provider.MenuData) string {
	return placeholder.Render(tmpl, b.placeholderCtx(st, data, nil))
}

func (b *Builder) resolveIcon(it *paneldef.Item, id string) string {
	resolved := b.icons.Resolve(id)
	if resolved == icons.Fallback && id != icons.Fallback && b.log != nil &&
		!strings.HasPrefix(id, icons.HeadPrefix) {
		b.log.Printf("item %q: unknown icon %q; using %s", string(it.Symbol), id, icons.Fallback)
	}
	return resolved
}

// placeholderCtx assembles the layered substitution sources for one cell.
func (b *Builder) placeholderCtx(st *session.State, data *provider.MenuData, w *warps.Warp) placeholder.Context {
	ctx := placeholder.Context{Warp: w}
	if st != nil {
		u := st.User
		ctx.User = &u
		ctx.Bag = func(key string) (string, bool) {
			v, ok := st.Data(key)
			if !ok {
				return "", false
			}
			return v.Display(), true
		}
	}
	if w != nil {
		key := "warp.private"
		if w.Public {
			key = "warp.public"
		}
		ctx.PublicState = b.loc.Resolve(key, localeOf(st))
	}
	if data != nil {
		ctx.Dynamic = data.Dynamic
		ctx.Static = data.Static
	}
	return ctx
}

func localeOf(st *session.State) string {
	if st == nil {
		return ""
	}
	return st.User.Locale
}
