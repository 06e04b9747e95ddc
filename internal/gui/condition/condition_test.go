package condition

import (
	"log"
	"os"
	"testing"

	"warpgate.gg/internal/gui/session"
)

func testState() *session.State {
	tr := session.NewTracker(5)
	return tr.Ensure(session.User{
		ID:    "u1",
		Name:  "Alice",
		Op:    false,
		Perms: map[string]bool{"warps.admin": true},
	})
}

func newEngine() *Engine {
	return New(log.New(os.Stderr, "[test] ", 0))
}

func TestEvaluate_Builtins(t *testing.T) {
	e := newEngine()
	st := testState()
	st.SetData("flag", session.Bool(true))

	cases := []struct {
		expr string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"perm warps.admin", true},
		{"perm warps.other", false},
		{"!perm warps.other", true},
		{"op", false},
		{"!op", true},
		{"data flag", true},
		{"data missing", false},
		{"!data missing", true},
		{"player alice", true},
		{"player bob", false},
		{"!player bob", true},
	}
	for _, c := range cases {
		if got := e.Evaluate(c.expr, st); got != c.want {
			t.Fatalf("evaluate %q: got %v want %v", c.expr, got, c.want)
		}
	}
}

func TestEvaluate_UnknownPrefixFailsClosed(t *testing.T) {
	e := newEngine()
	st := testState()
	if e.Evaluate("rank vip", st) {
		t.Fatalf("unknown prefix must evaluate false")
	}
}

func TestEvaluate_LongestPrefixWins(t *testing.T) {
	e := newEngine()
	st := testState()

	// A generic "p" checker must not shadow the more specific "perm ".
	e.Register("p", func(string, *session.State) bool { return false })
	if !e.Evaluate("perm warps.admin", st) {
		t.Fatalf("longest prefix should route to perm checker")
	}
}

func TestRegister_ReplacesChecker(t *testing.T) {
	e := newEngine()
	st := testState()

	e.Register("rank ", func(arg string, _ *session.State) bool { return arg == "vip" })
	if !e.Evaluate("rank vip", st) {
		t.Fatalf("registered checker should match")
	}
	e.Register("rank ", func(string, *session.State) bool { return false })
	if e.Evaluate("rank vip", st) {
		t.Fatalf("re-registration must replace the prior checker")
	}
}

func TestEvaluate_DataMismatchedType(t *testing.T) {
	e := newEngine()
	st := testState()
	st.SetData("flag", session.String("yes"))
	// A non-bool bag value reads as false, never panics.
	if e.Evaluate("data flag", st) {
		t.Fatalf("string-typed bag value should not satisfy a data condition")
	}
}
