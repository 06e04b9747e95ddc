// Package session tracks per-user GUI state: the open panel, the typed data
// bag backing placeholders and multi-step input, and a bounded navigation
// history. Everything here is mutated only on the engine goroutine.
package session

// Well-known data bag keys.
const (
	KeySearch       = "search"
	KeyPage         = "page"
	KeyRefresh      = "refresh"
	KeySelectedWarp = "selected_warp"
)

type User struct {
	ID     string
	Name   string
	Locale string
	Op     bool
	Perms  map[string]bool
}

func (u User) HasPerm(node string) bool { return u.Perms[node] }

// State is one user's GUI session. A user with no open panel (Panel == "")
// is a valid steady state.
type State struct {
	User    User
	Panel   string
	OpenSeq uint64

	bag     map[string]Value
	bagKeys []string
	history []string
}

func newState(u User) *State {
	return &State{User: u, bag: map[string]Value{}}
}

func (s *State) Data(key string) (Value, bool) {
	v, ok := s.bag[key]
	return v, ok
}

func (s *State) StringData(key string) string {
	v, _ := s.bag[key]
	str, _ := v.AsString()
	return str
}

func (s *State) IntData(key string) int {
	v, _ := s.bag[key]
	n, _ := v.AsInt()
	return n
}

func (s *State) BoolData(key string) bool {
	v, _ := s.bag[key]
	b, _ := v.AsBool()
	return b
}

func (s *State) SetData(key string, v Value) {
	if _, ok := s.bag[key]; !ok {
		s.bagKeys = append(s.bagKeys, key)
	}
	s.bag[key] = v
}

func (s *State) SetDataAll(m map[string]Value) {
	for k, v := range m {
		s.SetData(k, v)
	}
}

func (s *State) ClearData(key string) {
	if _, ok := s.bag[key]; !ok {
		return
	}
	delete(s.bag, key)
	for i, k := range s.bagKeys {
		if k == key {
			s.bagKeys = append(s.bagKeys[:i], s.bagKeys[i+1:]...)
			break
		}
	}
}

// DataKeys returns bag keys in insertion order.
func (s *State) DataKeys() []string {
	out := make([]string, len(s.bagKeys))
	copy(out, s.bagKeys)
	return out
}

// Tracker holds all live sessions, keyed by user id.
type Tracker struct {
	historyMax int
	byUser     map[string]*State
}

func NewTracker(historyMax int) *Tracker {
	if historyMax <= 0 {
		historyMax = 10
	}
	return &Tracker{historyMax: historyMax, byUser: map[string]*State{}}
}

// Get returns the session for a user, or nil when none is tracked.
func (t *Tracker) Get(userID string) *State { return t.byUser[userID] }

// Ensure returns the existing session or creates one for the user.
func (t *Tracker) Ensure(u User) *State {
	if s := t.byUser[u.ID]; s != nil {
		s.User = u
		return s
	}
	s := newState(u)
	t.byUser[u.ID] = s
	return s
}

func (t *Tracker) SetCurrentPanel(userID, panel string) {
	if s := t.byUser[userID]; s != nil {
		s.Panel = panel
	}
}

func (t *Tracker) CurrentPanel(userID string) string {
	if s := t.byUser[userID]; s != nil {
		return s.Panel
	}
	return ""
}

func (t *Tracker) ClosePanel(userID string) {
	if s := t.byUser[userID]; s != nil {
		s.Panel = ""
	}
}

// PushHistory records a visited panel, most recent first. Adjacent
// duplicates are suppressed and the list is capped.
func (t *Tracker) PushHistory(userID, panel string) {
	s := t.byUser[userID]
	if s == nil || panel == "" {
		return
	}
	if len(s.history) > 0 && s.history[0] == panel {
		return
	}
	s.history = append([]string{panel}, s.history...)
	if len(s.history) > t.historyMax {
		s.history = s.history[:t.historyMax]
	}
}

func (t *Tracker) PopHistory(userID string) (string, bool) {
	s := t.byUser[userID]
	if s == nil || len(s.history) == 0 {
		return "", false
	}
	p := s.history[0]
	s.history = s.history[1:]
	return p, true
}

func (t *Tracker) History(userID string) []string {
	s := t.byUser[userID]
	if s == nil {
		return nil
	}
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// HandleDisconnect drops the user's session entirely. Cache invalidation is
// the engine's job; it hooks this via its own disconnect path.
func (t *Tracker) HandleDisconnect(userID string) {
	delete(t.byUser, userID)
}

func (t *Tracker) Len() int { return len(t.byUser) }
