package provider

import (
	"context"

	"warpgate.gg/internal/gui/session"
	"warpgate.gg/internal/warps"
)

// DetailProvider serves a single-warp detail panel. The warp to show comes
// from the query snapshot, which the engine fills from the session's
// selected-warp key. A missing or deleted warp yields an empty set; the
// panel still renders, with its listing slot blank.
type DetailProvider struct {
	panels map[string]bool
}

func NewDetail(panels []string) *DetailProvider {
	m := make(map[string]bool, len(panels))
	for _, p := range panels {
		m[p] = true
	}
	return &DetailProvider{panels: m}
}

func (p *DetailProvider) Supports(panel string) bool { return p.panels[panel] }

// Detail fetches are never cached: the selection can change between opens
// while a cached set for the panel would still be fresh.
func (p *DetailProvider) Cacheable() bool { return false }

func (p *DetailProvider) Fetch(ctx context.Context, store warps.Store, q Query) ([]warps.Warp, error) {
	if q.WarpID == "" {
		return nil, nil
	}
	w, err := store.FindByID(ctx, q.WarpID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, nil
	}
	return []warps.Warp{*w}, nil
}

func (p *DetailProvider) Paginate(st *session.State, all []warps.Warp) MenuData {
	md := MenuData{
		Warps:      all,
		TotalPages: 1,
		Dynamic:    map[string]string{},
		Static:     map[string]string{},
	}
	if len(all) > 0 {
		md.Dynamic["selected"] = all[0].Name
	}
	return md
}
