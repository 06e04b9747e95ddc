package warps

import (
	"context"
	"path/filepath"
	"testing"
)

func eachStore(t *testing.T, run func(t *testing.T, s Store)) {
	t.Helper()
	t.Run("mem", func(t *testing.T) {
		run(t, NewMemStore())
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := OpenSQLite(filepath.Join(t.TempDir(), "warps.db"))
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		defer s.Close()
		run(t, s)
	})
}

func create(t *testing.T, s Store, w Warp) Warp {
	t.Helper()
	out, err := s.Create(context.Background(), w)
	if err != nil {
		t.Fatalf("create %q: %v", w.Name, err)
	}
	return out
}

func TestStore_OwnedListingKeepsCreationOrder(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		create(t, s, Warp{Name: "zeta", OwnerID: "u1", OwnerName: "alice", World: "overworld"})
		create(t, s, Warp{Name: "alpha", OwnerID: "u1", OwnerName: "alice", World: "overworld"})
		create(t, s, Warp{Name: "other", OwnerID: "u2", OwnerName: "bob", World: "nether"})

		got, err := s.FindOwned(ctx, "u1")
		if err != nil {
			t.Fatalf("find owned: %v", err)
		}
		if len(got) != 2 || got[0].Name != "zeta" || got[1].Name != "alpha" {
			t.Fatalf("owned order: %v", got)
		}

		n, err := s.CountOwned(ctx, "u1")
		if err != nil || n != 2 {
			t.Fatalf("count: %v %d", err, n)
		}
	})
}

func TestStore_PublicDirectoryAndVisibility(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		w1 := create(t, s, Warp{Name: "home", OwnerID: "u1", OwnerName: "alice", World: "overworld"})
		create(t, s, Warp{Name: "spawn", OwnerID: "u2", OwnerName: "bob", World: "overworld", Public: true})

		pub, err := s.FindPublic(ctx)
		if err != nil || len(pub) != 1 || pub[0].Name != "spawn" {
			t.Fatalf("public: %v %v", err, pub)
		}

		ok, err := s.SetVisibility(ctx, w1.ID, true)
		if err != nil || !ok {
			t.Fatalf("set visibility: %v %v", err, ok)
		}
		pub, err = s.FindPublic(ctx)
		if err != nil || len(pub) != 2 {
			t.Fatalf("public after toggle: %v %v", err, pub)
		}

		if ok, _ := s.SetVisibility(ctx, "missing", true); ok {
			t.Fatalf("unknown id must not report a change")
		}
	})
}

func TestStore_NameLookupsAreCaseInsensitive(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		created := create(t, s, Warp{Name: "Home", OwnerID: "u1", OwnerName: "alice", World: "overworld", Public: true})

		w, err := s.FindByNameAndOwner(ctx, "hOmE", "u1")
		if err != nil || w == nil || w.ID != created.ID {
			t.Fatalf("by name+owner: %v %v", err, w)
		}
		w, err = s.FindPublicByName(ctx, "HOME")
		if err != nil || w == nil || w.ID != created.ID {
			t.Fatalf("public by name: %v %v", err, w)
		}
		w, err = s.FindByNameAndOwner(ctx, "Home", "u2")
		if err != nil || w != nil {
			t.Fatalf("wrong owner must miss: %v %v", err, w)
		}
	})
}

func TestStore_MutationsAndFindByID(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		created := create(t, s, Warp{Name: "home", OwnerID: "u1", OwnerName: "alice", World: "overworld", X: 1, Y: 64, Z: 2})

		if ok, err := s.Rename(ctx, created.ID, "castle"); err != nil || !ok {
			t.Fatalf("rename: %v %v", err, ok)
		}
		if ok, err := s.UpdateDescription(ctx, created.ID, "big"); err != nil || !ok {
			t.Fatalf("description: %v %v", err, ok)
		}
		if ok, err := s.SetIcon(ctx, created.ID, "BOOK"); err != nil || !ok {
			t.Fatalf("icon: %v %v", err, ok)
		}
		if _, err := s.Rename(ctx, created.ID, "  "); err == nil {
			t.Fatalf("blank rename must fail")
		}

		w, err := s.FindByID(ctx, created.ID)
		if err != nil || w == nil {
			t.Fatalf("by id: %v %v", err, w)
		}
		if w.Name != "castle" || w.Description != "big" || w.Icon != "BOOK" {
			t.Fatalf("mutations lost: %+v", w)
		}
		if w.Coords() != "1, 64, 2" {
			t.Fatalf("coords: %q", w.Coords())
		}

		if ok, err := s.Delete(ctx, created.ID); err != nil || !ok {
			t.Fatalf("delete: %v %v", err, ok)
		}
		if w, _ := s.FindByID(ctx, created.ID); w != nil {
			t.Fatalf("deleted warp still found")
		}
		if ok, _ := s.Delete(ctx, created.ID); ok {
			t.Fatalf("double delete must be a no-op")
		}
	})
}

func TestStore_DuplicateNamePerOwnerRejectedBySQLite(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "warps.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	create(t, s, Warp{Name: "home", OwnerID: "u1", OwnerName: "alice", World: "overworld"})
	if _, err := s.Create(ctx, Warp{Name: "home", OwnerID: "u1", OwnerName: "alice", World: "overworld"}); err == nil {
		t.Fatalf("duplicate owner+name must be rejected")
	}
	if _, err := s.Create(ctx, Warp{Name: "home", OwnerID: "u2", OwnerName: "bob", World: "overworld"}); err != nil {
		t.Fatalf("same name under another owner must be fine: %v", err)
	}
}
