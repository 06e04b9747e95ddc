package warps

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store used by tests and by the engine's
// integration harness. Insertion order is preserved via CreatedAt.
type MemStore struct {
	byID map[string]Warp
	seq  int
}

func NewMemStore() *MemStore {
	return &MemStore{byID: map[string]Warp{}}
}

func (m *MemStore) list(keep func(Warp) bool) []Warp {
	out := make([]Warp, 0, len(m.byID))
	for _, w := range m.byID {
		if keep(w) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (m *MemStore) FindOwned(_ context.Context, ownerID string) ([]Warp, error) {
	return m.list(func(w Warp) bool { return w.OwnerID == ownerID }), nil
}

func (m *MemStore) FindPublic(context.Context) ([]Warp, error) {
	return m.list(func(w Warp) bool { return w.Public }), nil
}

func (m *MemStore) FindByID(_ context.Context, id string) (*Warp, error) {
	w, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (m *MemStore) FindByNameAndOwner(_ context.Context, name, ownerID string) (*Warp, error) {
	for _, w := range m.byID {
		if w.OwnerID == ownerID && strings.EqualFold(w.Name, name) {
			w := w
			return &w, nil
		}
	}
	return nil, nil
}

func (m *MemStore) FindPublicByName(_ context.Context, name string) (*Warp, error) {
	for _, w := range m.byID {
		if w.Public && strings.EqualFold(w.Name, name) {
			w := w
			return &w, nil
		}
	}
	return nil, nil
}

func (m *MemStore) Create(_ context.Context, w Warp) (Warp, error) {
	if strings.TrimSpace(w.Name) == "" {
		return Warp{}, fmt.Errorf("empty warp name")
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.CreatedAt.IsZero() {
		m.seq++
		w.CreatedAt = time.Unix(0, int64(m.seq)).UTC()
	}
	m.byID[w.ID] = w
	return w, nil
}

func (m *MemStore) mutate(id string, f func(*Warp)) bool {
	w, ok := m.byID[id]
	if !ok {
		return false
	}
	f(&w)
	m.byID[id] = w
	return true
}

func (m *MemStore) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := m.byID[id]; !ok {
		return false, nil
	}
	delete(m.byID, id)
	return true, nil
}

func (m *MemStore) Rename(_ context.Context, id, newName string) (bool, error) {
	if strings.TrimSpace(newName) == "" {
		return false, fmt.Errorf("empty warp name")
	}
	return m.mutate(id, func(w *Warp) { w.Name = newName }), nil
}

func (m *MemStore) SetVisibility(_ context.Context, id string, public bool) (bool, error) {
	return m.mutate(id, func(w *Warp) { w.Public = public }), nil
}

func (m *MemStore) UpdateDescription(_ context.Context, id, text string) (bool, error) {
	return m.mutate(id, func(w *Warp) { w.Description = text }), nil
}

func (m *MemStore) SetIcon(_ context.Context, id, icon string) (bool, error) {
	return m.mutate(id, func(w *Warp) { w.Icon = icon }), nil
}

func (m *MemStore) CountOwned(_ context.Context, ownerID string) (int, error) {
	n := 0
	for _, w := range m.byID {
		if w.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}
