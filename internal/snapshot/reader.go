package snapshot

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/sitework/leveler/internal/store"
)

// Reader fetches snapshots from the entity store and caches the latest
// one. Concurrent fetches while the cache is cold are deduplicated through
// singleflight so a burst of analysis calls costs one store round trip.
// Invalidate drops the cache; callers do this after every successful Apply.
type Reader struct {
	store store.Store
	group singleflight.Group

	mu     sync.Mutex
	cached *Snapshot
}

func NewReader(st store.Store) *Reader {
	return &Reader{store: st}
}

// Snapshot returns the cached snapshot, fetching a fresh one if the cache
// is empty.
func (r *Reader) Snapshot(ctx context.Context) (*Snapshot, error) {
	r.mu.Lock()
	cached := r.cached
	r.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := r.group.Do("snapshot", func() (any, error) {
		data, err := r.store.FetchSnapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch snapshot: %w", err)
		}
		snap := New(data)
		r.mu.Lock()
		r.cached = snap
		r.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Refresh bypasses the cache and fetches a fresh snapshot.
func (r *Reader) Refresh(ctx context.Context) (*Snapshot, error) {
	r.Invalidate()
	return r.Snapshot(ctx)
}

// Invalidate drops the cached snapshot so the next read re-fetches.
func (r *Reader) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}
