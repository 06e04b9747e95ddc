// Package action maps clicks back to the ordered action lists recorded when
// a grid was built. Action execution itself is the host's job; the engine
// only resolves which actions a click means.
package action

// Resolve applies the variant-over-base precedence: a matched variant's own
// action list, when non-empty, wins outright; the base list is never merged
// into it.
func Resolve(base, variant []string) []string {
	if len(variant) > 0 {
		return variant
	}
	return base
}

// CellBinding is the per-cell bookkeeping captured at render time. WarpID is
// the identifier bound when the grid was built, so a click maps to the same
// entity even if the underlying data set has changed since.
type CellBinding struct {
	Actions  []string
	WarpID   string
	WarpSlot bool
	Search   bool
}

// PanelBinding is the click map for one rendered grid.
type PanelBinding struct {
	Panel string
	Cells map[int]CellBinding
}

type Click struct {
	Cell      int
	Secondary bool
	Modifier  bool
}

// Result is what a click resolves to: either a plain action list, or one of
// the two in-engine special cases.
type Result struct {
	Actions []string
	WarpID  string

	// OpenDetail requests the companion detail panel for the bound warp.
	OpenDetail bool
	// ClearSearch requests dropping the active search filter.
	ClearSearch bool
}

// ResolveClick applies the click special cases: modifier+primary on a bound
// warp slot opens the detail panel instead of the slot's default action, and
// a secondary click on the search slot clears the filter. A click on an
// empty listing slot resolves to nothing.
func ResolveClick(b *PanelBinding, c Click) Result {
	if b == nil {
		return Result{}
	}
	cb, ok := b.Cells[c.Cell]
	if !ok {
		return Result{}
	}
	if cb.WarpSlot && cb.WarpID == "" {
		return Result{}
	}
	if cb.WarpSlot && c.Modifier && !c.Secondary {
		return Result{WarpID: cb.WarpID, OpenDetail: true}
	}
	if cb.Search && c.Secondary {
		return Result{ClearSearch: true}
	}
	return Result{Actions: cb.Actions, WarpID: cb.WarpID}
}
