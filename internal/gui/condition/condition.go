// Package condition evaluates guard expressions attached to icon variants.
// An expression is routed to exactly one checker by its longest matching
// registered prefix. A blank expression is true so unconditioned items always
// show; a non-blank expression with no matching checker is false (an item is
// hidden rather than shown past a gate that failed to parse).
package condition

import (
	"log"
	"strings"

	"warpgate.gg/internal/gui/session"
)

// CheckFunc evaluates the argument after the prefix against a session.
type CheckFunc func(arg string, st *session.State) bool

type Engine struct {
	checkers map[string]CheckFunc
	log      *log.Logger
}

func New(logger *log.Logger) *Engine {
	e := &Engine{checkers: map[string]CheckFunc{}, log: logger}

	e.Register("perm ", func(arg string, st *session.State) bool {
		return st.User.HasPerm(strings.TrimSpace(arg))
	})
	e.Register("!perm ", func(arg string, st *session.State) bool {
		return !st.User.HasPerm(strings.TrimSpace(arg))
	})
	e.Register("op", func(_ string, st *session.State) bool {
		return st.User.Op
	})
	e.Register("!op", func(_ string, st *session.State) bool {
		return !st.User.Op
	})
	e.Register("data ", func(arg string, st *session.State) bool {
		return st.BoolData(strings.TrimSpace(arg))
	})
	e.Register("!data ", func(arg string, st *session.State) bool {
		return !st.BoolData(strings.TrimSpace(arg))
	})
	e.Register("player ", func(arg string, st *session.State) bool {
		return strings.EqualFold(st.User.Name, strings.TrimSpace(arg))
	})
	e.Register("!player ", func(arg string, st *session.State) bool {
		return !strings.EqualFold(st.User.Name, strings.TrimSpace(arg))
	})

	return e
}

// Register adds or replaces the checker for a prefix. Replacing at runtime is
// allowed; panel reloads may bring new checker wiring without a restart.
func (e *Engine) Register(prefix string, f CheckFunc) {
	if prefix == "" || f == nil {
		return
	}
	e.checkers[prefix] = f
}

func (e *Engine) Evaluate(expr string, st *session.State) bool {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return true
	}
	if st == nil {
		return false
	}

	best := ""
	for prefix := range e.checkers {
		if strings.HasPrefix(expr, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		if e.log != nil {
			e.log.Printf("condition: no checker for %q; hiding", expr)
		}
		return false
	}
	return e.checkers[best](expr[len(best):], st)
}
