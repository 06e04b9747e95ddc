// Package provider supplies the paginated warp data a listing panel renders.
// Fetching the full set from the store happens off the engine goroutine;
// filtering, pagination and caching happen on it.
package provider

import (
	"context"
	"strconv"
	"strings"

	"warpgate.gg/internal/gui/session"
	"warpgate.gg/internal/warps"
)

// MenuData is one render cycle's worth of listing data.
type MenuData struct {
	Warps      []warps.Warp // current page, in fetch order
	Page       int
	TotalPages int
	Dynamic    map[string]string
	Static     map[string]string
}

// Query is the snapshot a fetch runs against. The engine takes it on its own
// goroutine so workers never read live session state.
type Query struct {
	User   session.User
	WarpID string
}

type Provider interface {
	Supports(panel string) bool
	// Cacheable reports whether a fetched set may be reused for later opens
	// of the same panel within the TTL.
	Cacheable() bool
	// Fetch loads the full unfiltered set; it runs on a worker goroutine.
	Fetch(ctx context.Context, store warps.Store, q Query) ([]warps.Warp, error)
	// Paginate filters and pages a fetched set against the session's search
	// and page state; it runs on the engine goroutine and may write a
	// corrected page index back into the session.
	Paginate(st *session.State, all []warps.Warp) MenuData
}

// ListProvider serves the two canonical listing panel types: a user's own
// warps, and the public directory (which is additionally searchable by
// owner name).
type ListProvider struct {
	panels   map[string]bool
	pageSize int
	public   bool
}

func NewOwned(panels []string, pageSize int) *ListProvider {
	return newList(panels, pageSize, false)
}

func NewPublic(panels []string, pageSize int) *ListProvider {
	return newList(panels, pageSize, true)
}

func newList(panels []string, pageSize int, public bool) *ListProvider {
	m := make(map[string]bool, len(panels))
	for _, p := range panels {
		m[p] = true
	}
	if pageSize <= 0 {
		pageSize = 27
	}
	return &ListProvider{panels: m, pageSize: pageSize, public: public}
}

func (p *ListProvider) Supports(panel string) bool { return p.panels[panel] }

func (p *ListProvider) Cacheable() bool { return true }

func (p *ListProvider) Fetch(ctx context.Context, store warps.Store, q Query) ([]warps.Warp, error) {
	if p.public {
		return store.FindPublic(ctx)
	}
	return store.FindOwned(ctx, q.User.ID)
}

func (p *ListProvider) Paginate(st *session.State, all []warps.Warp) MenuData {
	filter := st.StringData(session.KeySearch)
	matched := filterWarps(all, filter, p.public)

	total := len(matched)
	pages := (total + p.pageSize - 1) / p.pageSize
	if pages < 1 {
		pages = 1
	}
	page := st.IntData(session.KeyPage)
	clamped := page
	if clamped < 0 {
		clamped = 0
	}
	if clamped > pages-1 {
		clamped = pages - 1
	}
	if clamped != page {
		st.SetData(session.KeyPage, session.Int(clamped))
	}

	lo := clamped * p.pageSize
	hi := lo + p.pageSize
	if hi > total {
		hi = total
	}
	var slice []warps.Warp
	if lo < total {
		slice = matched[lo:hi]
	}

	return MenuData{
		Warps:      slice,
		Page:       clamped,
		TotalPages: pages,
		Dynamic: map[string]string{
			"page":    itoa(clamped + 1),
			"pages":   itoa(pages),
			"results": itoa(total),
			"search":  filter,
		},
		Static: map[string]string{
			"total": itoa(len(all)),
		},
	}
}

// filterWarps keeps warps whose name, description or world contains the
// filter, case-insensitively; public listings also match the owner name.
// Original ordering is preserved.
func filterWarps(all []warps.Warp, filter string, withOwner bool) []warps.Warp {
	if strings.TrimSpace(filter) == "" {
		return all
	}
	needle := strings.ToLower(filter)
	out := make([]warps.Warp, 0, len(all))
	for _, w := range all {
		if containsFold(w.Name, needle) ||
			containsFold(w.Description, needle) ||
			containsFold(w.World, needle) ||
			(withOwner && containsFold(w.OwnerName, needle)) {
			out = append(out, w)
		}
	}
	return out
}

func containsFold(haystack, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}

func itoa(n int) string { return strconv.Itoa(n) }
