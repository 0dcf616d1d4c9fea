package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/pseudonymizer/internal/errors"
	mappingDomain "github.com/allisson/pseudonymizer/internal/mapping/domain"
)

// MemoryMappingRepository implements mapping persistence in process memory.
// Expiry is enforced lazily on read; mappings do not survive restarts, so this
// backend only serves tests and degraded-mode operation while Redis is down.
type MemoryMappingRepository struct {
	mu       sync.RWMutex
	mappings map[uuid.UUID]*mappingDomain.PseudonymMapping
	ttl      time.Duration
}

// NewMemoryMappingRepository creates a new in-memory mapping repository instance.
func NewMemoryMappingRepository(ttl time.Duration) *MemoryMappingRepository {
	return &MemoryMappingRepository{
		mappings: make(map[uuid.UUID]*mappingDomain.PseudonymMapping),
		ttl:      ttl,
	}
}

// Store persists a mapping in memory.
func (r *MemoryMappingRepository) Store(ctx context.Context, mapping *mappingDomain.PseudonymMapping) error {
	if mapping.Expired(time.Now().UTC()) {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "mapping already expired")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappings[mapping.PseudonymID] = mapping
	return nil
}

// Retrieve loads a mapping by pseudonym ID, treating expired entries as absent.
func (r *MemoryMappingRepository) Retrieve(ctx context.Context, pseudonymID uuid.UUID) (*mappingDomain.PseudonymMapping, error) {
	r.mu.RLock()
	mapping, ok := r.mappings[pseudonymID]
	r.mu.RUnlock()

	if !ok {
		return nil, mappingDomain.ErrMappingNotFound
	}
	if mapping.Expired(time.Now().UTC()) {
		// Evict so the key does not linger after its TTL.
		r.mu.Lock()
		delete(r.mappings, pseudonymID)
		r.mu.Unlock()
		return nil, mappingDomain.ErrMappingNotFound
	}
	return mapping, nil
}

// Delete removes a mapping, reporting whether a live mapping was deleted.
func (r *MemoryMappingRepository) Delete(ctx context.Context, pseudonymID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mapping, ok := r.mappings[pseudonymID]
	if !ok {
		return false, nil
	}
	delete(r.mappings, pseudonymID)
	return !mapping.Expired(time.Now().UTC()), nil
}

// Count returns the number of live mappings in the store.
func (r *MemoryMappingRepository) Count(ctx context.Context) (int64, error) {
	now := time.Now().UTC()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, mapping := range r.mappings {
		if !mapping.Expired(now) {
			count++
		}
	}
	return count, nil
}

// PurgeAll removes every mapping and returns the number of live mappings deleted.
func (r *MemoryMappingRepository) PurgeAll(ctx context.Context) (int64, error) {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	var purged int64
	for id, mapping := range r.mappings {
		if !mapping.Expired(now) {
			purged++
		}
		delete(r.mappings, id)
	}
	return purged, nil
}

// Stats reports backend state and mapping count.
func (r *MemoryMappingRepository) Stats(ctx context.Context) (*mappingDomain.StoreStats, error) {
	count, err := r.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &mappingDomain.StoreStats{
		Backend:      "memory",
		Connected:    true,
		MappingCount: count,
		MappingTTL:   r.ttl,
	}, nil
}
