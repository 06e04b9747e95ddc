package action

import "testing"

func TestResolve_VariantWinsOutright(t *testing.T) {
	base := []string{"a", "b"}
	if got := Resolve(base, nil); len(got) != 2 {
		t.Fatalf("base should apply: got %v", got)
	}
	got := Resolve(base, []string{"c"})
	if len(got) != 1 || got[0] != "c" {
		t.Fatalf("variant should win outright: got %v", got)
	}
}

func binding() *PanelBinding {
	return &PanelBinding{
		Panel: "warps",
		Cells: map[int]CellBinding{
			0: {Actions: []string{"warp home"}, WarpID: "w-1", WarpSlot: true},
			1: {WarpSlot: true}, // empty listing slot on the last page
			2: {Actions: []string{"search-prompt"}, Search: true},
			3: {Actions: []string{"close"}},
		},
	}
}

func TestResolveClick_Plain(t *testing.T) {
	r := ResolveClick(binding(), Click{Cell: 0})
	if len(r.Actions) != 1 || r.Actions[0] != "warp home" || r.WarpID != "w-1" {
		t.Fatalf("got %+v", r)
	}
}

func TestResolveClick_EmptyListingSlot(t *testing.T) {
	r := ResolveClick(binding(), Click{Cell: 1})
	if len(r.Actions) != 0 || r.OpenDetail || r.ClearSearch {
		t.Fatalf("empty listing slot must resolve to nothing: %+v", r)
	}
}

func TestResolveClick_ModifierOpensDetail(t *testing.T) {
	r := ResolveClick(binding(), Click{Cell: 0, Modifier: true})
	if !r.OpenDetail || r.WarpID != "w-1" || len(r.Actions) != 0 {
		t.Fatalf("got %+v", r)
	}
	// Modifier+secondary is not the detail gesture.
	r = ResolveClick(binding(), Click{Cell: 0, Modifier: true, Secondary: true})
	if r.OpenDetail {
		t.Fatalf("secondary+modifier should not open detail: %+v", r)
	}
}

func TestResolveClick_SecondaryOnSearchClears(t *testing.T) {
	r := ResolveClick(binding(), Click{Cell: 2, Secondary: true})
	if !r.ClearSearch || len(r.Actions) != 0 {
		t.Fatalf("got %+v", r)
	}
	// Primary click keeps the slot's static action.
	r = ResolveClick(binding(), Click{Cell: 2})
	if r.ClearSearch || len(r.Actions) != 1 {
		t.Fatalf("got %+v", r)
	}
}

func TestResolveClick_UnboundCellAndNilBinding(t *testing.T) {
	if r := ResolveClick(binding(), Click{Cell: 50}); len(r.Actions) != 0 {
		t.Fatalf("unbound cell: %+v", r)
	}
	if r := ResolveClick(nil, Click{Cell: 0}); len(r.Actions) != 0 {
		t.Fatalf("nil binding: %+v", r)
	}
}
