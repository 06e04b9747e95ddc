package render

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"warpgate.gg/internal/gui/condition"
	"warpgate.gg/internal/gui/icons"
	"warpgate.gg/internal/gui/item"
	"warpgate.gg/internal/gui/paneldef"
	"warpgate.gg/internal/gui/provider"
	"warpgate.gg/internal/gui/session"
	"warpgate.gg/internal/i18n"
	"warpgate.gg/internal/warps"
)

func testBuilder(t *testing.T) *item.Builder {
	t.Helper()
	logger := log.New(os.Stderr, "[test] ", 0)

	dir := t.TempDir()
	body := `[
	  {"id":"STONE","kind":"BLOCK"},
	  {"id":"GRAY_PANE","kind":"BLOCK"},
	  {"id":"ENDER_PEARL","kind":"ITEM"},
	  {"id":"COMPASS","kind":"ITEM"}
	]`
	p := filepath.Join(dir, "icons.json")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write icons: %v", err)
	}
	cat, err := icons.Load(p, nil)
	if err != nil {
		t.Fatalf("icons: %v", err)
	}
	loc := i18n.Static("en", nil)
	return item.NewBuilder(condition.New(logger), cat, loc, logger)
}

func testState() *session.State {
	tr := session.NewTracker(5)
	return tr.Ensure(session.User{ID: "u1", Name: "alice", Locale: "en"})
}

func listingDef() *paneldef.Definition {
	return &paneldef.Definition{
		Name:   "warps",
		Title:  "Warps {page}/{pages}",
		Layout: []string{"#www#"},
		Items: map[rune]*paneldef.Item{
			'#': {Symbol: '#', Icon: "GRAY_PANE", Name: " ", Count: 1},
			'w': {
				Symbol: 'w', WarpItem: true, Icon: "ENDER_PEARL",
				Name: "{name}", Count: 1, Actions: []string{"warp {name}"},
			},
		},
	}
}

func fiveWarps() []warps.Warp {
	names := []string{"one", "two", "three", "four", "five"}
	out := make([]warps.Warp, 0, len(names))
	for i, n := range names {
		out = append(out, warps.Warp{ID: "w-" + n, Name: n, World: "overworld", X: i})
	}
	return out
}

func TestStandard_PlacesEveryNonBlankCell(t *testing.T) {
	def := &paneldef.Definition{
		Name:   "main",
		Title:  "Main",
		Layout: []string{"a a", " b "},
		Items: map[rune]*paneldef.Item{
			'a': {Symbol: 'a', Icon: "STONE", Name: "A", Count: 1},
			'b': {Symbol: 'b', Icon: "COMPASS", Name: "B", Count: 1, Search: true},
		},
	}
	reg := NewRegistry(Listing{}, Standard{})
	grid, binding, err := reg.Render(&Context{Def: def, St: testState(), Builder: testBuilder(t)})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if grid.Rows != 2 || grid.Cols != 9 {
		t.Fatalf("dims: %dx%d", grid.Rows, grid.Cols)
	}
	if grid.At(0, 0) == nil || grid.At(0, 2) == nil || grid.At(1, 1) == nil {
		t.Fatalf("cells missing")
	}
	if grid.At(0, 1) != nil || grid.At(1, 0) != nil {
		t.Fatalf("blank layout cells must stay empty")
	}
	if !binding.Cells[10].Search {
		t.Fatalf("search flag must carry into the binding")
	}
}

func TestListing_Page0(t *testing.T) {
	p := provider.NewOwned([]string{"warps"}, 3)
	st := testState()
	data := p.Paginate(st, fiveWarps())

	reg := NewRegistry(Listing{}, Standard{})
	grid, binding, err := reg.Render(&Context{Def: listingDef(), St: st, Data: &data, Builder: testBuilder(t)})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	// Listing slots are cells 1..3; page 0 shows entities 1..3.
	for i, want := range []string{"one", "two", "three"} {
		vis := grid.Cells[1+i]
		if vis == nil || vis.Name != want {
			t.Fatalf("slot %d: got %+v want %s", i+1, vis, want)
		}
	}
	if grid.Title != "Warps 1/2" {
		t.Fatalf("title: got %q", grid.Title)
	}
	if binding.Cells[1].WarpID != "w-one" || !binding.Cells[1].WarpSlot {
		t.Fatalf("binding: %+v", binding.Cells[1])
	}
}

func TestListing_OutOfRangePageClampsAndLastPagePartial(t *testing.T) {
	p := provider.NewOwned([]string{"warps"}, 3)
	st := testState()
	st.SetData(session.KeyPage, session.Int(2)) // clamps to 1
	data := p.Paginate(st, fiveWarps())

	reg := NewRegistry(Listing{}, Standard{})
	grid, binding, err := reg.Render(&Context{Def: listingDef(), St: st, Data: &data, Builder: testBuilder(t)})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if grid.Cells[1] == nil || grid.Cells[1].Name != "four" {
		t.Fatalf("slot 1: %+v", grid.Cells[1])
	}
	if grid.Cells[2] == nil || grid.Cells[2].Name != "five" {
		t.Fatalf("slot 2: %+v", grid.Cells[2])
	}
	if grid.Cells[3] != nil {
		t.Fatalf("excess listing slot must stay empty")
	}
	cb := binding.Cells[3]
	if !cb.WarpSlot || cb.WarpID != "" || len(cb.Actions) != 0 {
		t.Fatalf("empty listing binding: %+v", cb)
	}
}

func TestRegistry_FallsBackToStandard(t *testing.T) {
	reg := NewRegistry() // nothing registered
	def := &paneldef.Definition{
		Name:   "x",
		Layout: []string{"a"},
		Items:  map[rune]*paneldef.Item{'a': {Symbol: 'a', Icon: "STONE", Count: 1}},
	}
	grid, _, err := reg.Render(&Context{Def: def, St: testState(), Builder: testBuilder(t)})
	if err != nil || grid.Cells[0] == nil {
		t.Fatalf("fallback render failed: %v", err)
	}
}

func TestRegistry_EmptyLayoutRefused(t *testing.T) {
	reg := NewRegistry(Standard{})
	def := &paneldef.Definition{Name: "empty"}
	if _, _, err := reg.Render(&Context{Def: def, St: testState(), Builder: testBuilder(t)}); err == nil {
		t.Fatalf("empty layout must refuse to render")
	}
}

func TestRender_IdempotentForUnchangedState(t *testing.T) {
	p := provider.NewOwned([]string{"warps"}, 3)
	st := testState()
	data := p.Paginate(st, fiveWarps())
	reg := NewRegistry(Listing{}, Standard{})
	ctx := &Context{Def: listingDef(), St: st, Data: &data, Builder: testBuilder(t)}

	g1, _, err := reg.Render(ctx)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	g2, _, err := reg.Render(ctx)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if g1.Title != g2.Title || len(g1.Cells) != len(g2.Cells) {
		t.Fatalf("grids differ structurally")
	}
	for i := range g1.Cells {
		a, b := g1.Cells[i], g2.Cells[i]
		if (a == nil) != (b == nil) {
			t.Fatalf("cell %d presence differs", i)
		}
		if a != nil && (a.Icon != b.Icon || a.Name != b.Name || a.WarpID != b.WarpID) {
			t.Fatalf("cell %d differs: %+v vs %+v", i, a, b)
		}
	}
}
