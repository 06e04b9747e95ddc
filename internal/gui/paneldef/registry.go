package paneldef

import (
	"sort"
	"sync/atomic"
)

// Set is one complete load of all panel definitions.
type Set struct {
	ByName map[string]*Definition
	Digest string
}

// Registry hands out the current Set behind an atomic pointer so reload is
// all-or-nothing: a render in flight keeps the snapshot it started with.
type Registry struct {
	cur atomic.Pointer[Set]
}

func NewRegistry(s *Set) *Registry {
	r := &Registry{}
	if s == nil {
		s = &Set{ByName: map[string]*Definition{}}
	}
	r.cur.Store(s)
	return r
}

func (r *Registry) Swap(s *Set) {
	if s == nil {
		return
	}
	r.cur.Store(s)
}

func (r *Registry) Current() *Set { return r.cur.Load() }

func (r *Registry) Get(name string) *Definition {
	return r.cur.Load().ByName[name]
}

func (r *Registry) Names() []string {
	set := r.cur.Load()
	out := make([]string, 0, len(set.ByName))
	for name := range set.ByName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Digest() string { return r.cur.Load().Digest }
