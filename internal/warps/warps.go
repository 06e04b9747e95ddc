package warps

import (
	"context"
	"fmt"
	"time"
)

// Warp is a named, owned teleport target.
type Warp struct {
	ID          string
	Name        string
	OwnerID     string
	OwnerName   string
	World       string
	X, Y, Z     int
	Description string
	Public      bool
	Icon        string
	CreatedAt   time.Time
}

func (w Warp) Coords() string {
	return fmt.Sprintf("%d, %d, %d", w.X, w.Y, w.Z)
}

// Store is the persistent warp backend. Implementations must be safe for
// calls from the engine's fetch workers (reads) and the admin surfaces.
type Store interface {
	FindByID(ctx context.Context, id string) (*Warp, error)
	FindOwned(ctx context.Context, ownerID string) ([]Warp, error)
	FindPublic(ctx context.Context) ([]Warp, error)
	FindByNameAndOwner(ctx context.Context, name, ownerID string) (*Warp, error)
	FindPublicByName(ctx context.Context, name string) (*Warp, error)

	Create(ctx context.Context, w Warp) (Warp, error)
	Delete(ctx context.Context, id string) (bool, error)
	Rename(ctx context.Context, id, newName string) (bool, error)
	SetVisibility(ctx context.Context, id string, public bool) (bool, error)
	UpdateDescription(ctx context.Context, id, text string) (bool, error)
	SetIcon(ctx context.Context, id, icon string) (bool, error)
	CountOwned(ctx context.Context, ownerID string) (int, error)
}
