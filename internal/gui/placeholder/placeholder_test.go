package placeholder

import (
	"testing"

	"warpgate.gg/internal/gui/session"
	"warpgate.gg/internal/warps"
)

func TestSubstitute_LayerOrder(t *testing.T) {
	u := &session.User{ID: "u1", Name: "Alice", Locale: "en"}
	w := &warps.Warp{Name: "home", OwnerName: "Alice", World: "overworld", X: 1, Y: 64, Z: -3, Description: "base"}

	ctx := Context{
		User:        u,
		Warp:        w,
		PublicState: "Public",
		Dynamic:     map[string]string{"page": "1", "pages": "2"},
		Static:      map[string]string{"total": "5"},
		Bag: func(key string) (string, bool) {
			if key == "search" {
				return "ho", true
			}
			return "", false
		},
	}

	got := Substitute("{player}: {name} @ {world} ({coords}) {public_state} p{page}/{pages} t{total} s={search}", ctx)
	want := "Alice: home @ overworld (1, 64, -3) Public p1/2 t5 s=ho"
	if got != want {
		t.Fatalf("substitute: got %q want %q", got, want)
	}
}

func TestSubstitute_UnresolvedStaysLiteral(t *testing.T) {
	got := Substitute("hello {missing} {player}", Context{User: &session.User{Name: "Bob"}})
	want := "hello {missing} Bob"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSubstitute_MoreSpecificWins(t *testing.T) {
	// A dynamic "name" must not clobber the warp entity's name.
	ctx := Context{
		Warp:    &warps.Warp{Name: "spawn"},
		Dynamic: map[string]string{"name": "WRONG"},
	}
	if got := Substitute("{name}", ctx); got != "spawn" {
		t.Fatalf("got %q want %q", got, "spawn")
	}
}

func TestColorize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"&aGreen", "§aGreen"},
		{"&A&L bold", "§a§l bold"},
		{"fish & chips", "fish & chips"},
		{"&z not a code", "&z not a code"},
	}
	for _, c := range cases {
		if got := Colorize(c.in); got != c.want {
			t.Fatalf("colorize %q: got %q want %q", c.in, got, c.want)
		}
	}
}

func TestRender_MarkupTranslatedAfterSubstitution(t *testing.T) {
	// A substituted value containing & codes must be colorized too, and a
	// value must never be corrupted by colorizing before substitution.
	ctx := Context{Warp: &warps.Warp{Name: "&chot"}}
	if got := Render("&a{name}", ctx); got != "§a§chot" {
		t.Fatalf("got %q want %q", got, "§a§chot")
	}
}
