// Package catalog holds the in-memory source of truth for the asset
// collection and its derived statistics. Every view (public browse,
// admin management, dashboard) reads from the same snapshot; only the
// asset service and Refresh are allowed to mutate it.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"assetstore-backend/internal/domains/asset/model"
)

// Lister is the persistence collaborator the store refreshes from.
type Lister interface {
	// ListAssets returns the complete collection ordered by created_at
	// descending (most recent first).
	ListAssets(ctx context.Context) ([]model.Asset, error)
}

// Store keeps the full asset list plus derived stats in memory. It is
// not durable: the external store owns persistence, the Store owns the
// working snapshot.
type Store struct {
	lister Lister

	mu     sync.RWMutex
	assets []model.Asset
	stats  model.CatalogStats
	loaded bool

	// Refresh bookkeeping: a fetch that completes after a later fetch
	// has already been applied is discarded, so out-of-order
	// completions never overwrite newer data.
	issuedSeq  uint64
	appliedSeq uint64
}

func NewStore(lister Lister) *Store {
	return &Store{lister: lister}
}

// Refresh fetches the complete collection and replaces the snapshot
// atomically. On failure the previous snapshot is retained and the
// error is surfaced to the caller; there is no automatic retry.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.issuedSeq++
	seq := s.issuedSeq
	s.mu.Unlock()

	assets, err := s.lister.ListAssets(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrCatalogFetch, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A newer refresh already landed; drop this result.
	if seq < s.appliedSeq {
		return nil
	}

	s.appliedSeq = seq
	s.assets = assets
	s.stats = computeStats(assets)
	s.loaded = true
	return nil
}

// Loaded reports whether at least one refresh has succeeded.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Snapshot returns a copy of the current asset list and stats. It
// never blocks on in-flight refreshes and always reflects the last
// successfully applied state.
func (s *Store) Snapshot() ([]model.Asset, model.CatalogStats) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]model.Asset, len(s.assets))
	copy(snapshot, s.assets)
	return snapshot, s.stats
}

// Stats returns the current derived statistics.
func (s *Store) Stats() model.CatalogStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Get looks up one asset by ID in the current snapshot.
func (s *Store) Get(id uuid.UUID) (model.Asset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.assets {
		if a.ID == id {
			return a, true
		}
	}
	return model.Asset{}, false
}

// Prepend inserts a newly created asset at the head of the snapshot,
// consistent with the descending-creation-time ordering.
func (s *Store) Prepend(a model.Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assets = append([]model.Asset{a}, s.assets...)
	s.stats = computeStats(s.assets)
}

// Replace swaps the entry with the same ID in place, preserving order.
// Returns false when the ID is not in the snapshot.
func (s *Store) Replace(a model.Asset) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.assets {
		if s.assets[i].ID == a.ID {
			s.assets[i] = a
			s.stats = computeStats(s.assets)
			return true
		}
	}
	return false
}

// Remove deletes the entry with the given ID from the snapshot.
func (s *Store) Remove(id uuid.UUID) (model.Asset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.assets {
		if s.assets[i].ID == id {
			removed := s.assets[i]
			s.assets = append(s.assets[:i], s.assets[i+1:]...)
			s.stats = computeStats(s.assets)
			return removed, true
		}
	}
	return model.Asset{}, false
}

// computeStats derives the aggregate statistics from a snapshot. The
// top asset tie-break is first-encountered in catalog order.
func computeStats(assets []model.Asset) model.CatalogStats {
	stats := model.CatalogStats{TotalCount: len(assets)}

	for i := range assets {
		switch assets[i].MediaKind {
		case model.MediaKindImage:
			stats.ImageCount++
		case model.MediaKindAudio:
			stats.AudioCount++
		}
		stats.TotalDownloads += assets[i].DownloadCount

		if stats.TopAsset == nil || assets[i].DownloadCount > stats.TopAsset.DownloadCount {
			top := assets[i]
			stats.TopAsset = &top
		}
	}

	return stats
}
