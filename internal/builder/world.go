package builder

import (
	"sync"

	"pathcraft.dev/internal/blocks"
	"pathcraft.dev/internal/geom"
	"pathcraft.dev/internal/terrain"
)

// LockedWorld serializes access to a terrain store shared between the
// generation path (reads) and the placer goroutine (writes). Reads take
// the same exclusive lock because the store materializes chunks lazily.
type LockedWorld struct {
	mu    sync.Mutex
	store *terrain.Store
}

func NewLockedWorld(store *terrain.Store) *LockedWorld {
	return &LockedWorld{store: store}
}

// WithRead runs one generation pass against a consistent view of the
// world. fn must confine its terrain use to the passed handle.
func (w *LockedWorld) WithRead(fn func(t terrain.Terrain) blocks.ChangeSet) blocks.ChangeSet {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(w.store)
}

// Apply performs one placement write. Implements placement.Applier.
func (w *LockedWorld) Apply(p geom.BlockPos, c blocks.Change) (prev string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.Apply(p, c)
}

// Bounds is immutable after construction and safe without the lock.
func (w *LockedWorld) Bounds() (minY, maxY int) {
	return w.store.Bounds()
}
