// Package pairing maintains the durable mapping between an origin
// workspace and the isolated checkout opened from it.
//
// The registry backs "switch to partner" and cleanup-on-close. It is the
// sole source of truth for pairings: no component caches pairs beyond a
// single operation. Each path participates in at most one active pair;
// registering a new pair evicts any prior pair sharing either path, which
// implements the documented single-active-partner model (the evicted
// partner is not re-paired to anything).
package pairing

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmr-tortoise/relic/internal/model"
	"github.com/mmr-tortoise/relic/internal/store"
)

// Registry persists window pairs in the shared state store.
type Registry struct {
	store *store.Store
}

// NewRegistry creates a Registry backed by s.
func NewRegistry(s *store.Store) *Registry {
	return &Registry{store: s}
}

// Register records a new pair between originPath and worktreePath. Any
// existing pair touching either path is evicted first, then the new pair
// is appended with a fresh id and timestamp and the full collection is
// persisted.
func (r *Registry) Register(originPath, worktreePath string) (model.WindowPair, error) {
	pairs, err := r.load()
	if err != nil {
		return model.WindowPair{}, err
	}

	kept := pairs[:0]
	for _, pair := range pairs {
		if pair.Touches(originPath) || pair.Touches(worktreePath) {
			continue
		}
		kept = append(kept, pair)
	}

	pair := model.WindowPair{
		ID:              uuid.NewString(),
		OriginalPath:    originPath,
		WorktreePath:    worktreePath,
		CreatedAtMillis: time.Now().UnixMilli(),
	}
	kept = append(kept, pair)

	if err := r.save(kept); err != nil {
		return model.WindowPair{}, err
	}
	return pair, nil
}

// Partner returns the opposite-side path of the first pair in which path
// appears on either side, and whether such a pair exists.
func (r *Registry) Partner(path string) (string, bool, error) {
	pairs, err := r.load()
	if err != nil {
		return "", false, err
	}
	for _, pair := range pairs {
		if partner := pair.PartnerOf(path); partner != "" {
			return partner, true, nil
		}
	}
	return "", false, nil
}

// IsOriginSide reports whether path is registered as the origin workspace
// of some pair.
func (r *Registry) IsOriginSide(path string) (bool, error) {
	pairs, err := r.load()
	if err != nil {
		return false, err
	}
	for _, pair := range pairs {
		if pair.OriginalPath == path {
			return true, nil
		}
	}
	return false, nil
}

// IsCheckoutSide reports whether path is registered as the isolated
// checkout of some pair.
func (r *Registry) IsCheckoutSide(path string) (bool, error) {
	pairs, err := r.load()
	if err != nil {
		return false, err
	}
	for _, pair := range pairs {
		if pair.WorktreePath == path {
			return true, nil
		}
	}
	return false, nil
}

// Unregister removes every pair touching path and persists the remainder.
// It returns the number of pairs removed.
func (r *Registry) Unregister(path string) (int, error) {
	pairs, err := r.load()
	if err != nil {
		return 0, err
	}

	kept := pairs[:0]
	removed := 0
	for _, pair := range pairs {
		if pair.Touches(path) {
			removed++
			continue
		}
		kept = append(kept, pair)
	}
	if removed == 0 {
		return 0, nil
	}

	if err := r.save(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// All returns every registered pair in registration order.
func (r *Registry) All() ([]model.WindowPair, error) {
	return r.load()
}

// load reads the full pair collection. A never-written key is an empty
// collection, not an error.
func (r *Registry) load() ([]model.WindowPair, error) {
	raw, err := r.store.Get(store.KeyPairs)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var pairs []model.WindowPair
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return nil, fmt.Errorf("corrupt pairing registry: %w", err)
	}
	return pairs, nil
}

// save rewrites the full pair collection.
func (r *Registry) save(pairs []model.WindowPair) error {
	raw, err := json.Marshal(pairs)
	if err != nil {
		return fmt.Errorf("failed to encode pairing registry: %w", err)
	}
	return r.store.Put(store.KeyPairs, raw)
}
