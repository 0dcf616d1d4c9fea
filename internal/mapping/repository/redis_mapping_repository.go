// Package repository implements persistence for pseudonym mappings.
// The primary backend is Redis with per-key absolute expiry; an in-memory
// repository serves as a degraded-mode fallback when Redis is unreachable.
package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	apperrors "github.com/allisson/pseudonymizer/internal/errors"
	mappingDomain "github.com/allisson/pseudonymizer/internal/mapping/domain"
	"github.com/allisson/pseudonymizer/internal/redis"
)

// mappingKeyPrefix namespaces mapping keys inside the Redis database.
const mappingKeyPrefix = "pseudonymizer:mapping:"

// RedisMappingRepository implements mapping persistence backed by Redis.
// Expiry is delegated to Redis key TTLs, so expired mappings surface as
// not-found without any sweeper.
type RedisMappingRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisMappingRepository creates a new Redis mapping repository instance.
func NewRedisMappingRepository(client *redis.Client, ttl time.Duration) *RedisMappingRepository {
	return &RedisMappingRepository{client: client, ttl: ttl}
}

func mappingKey(pseudonymID uuid.UUID) string {
	return mappingKeyPrefix + pseudonymID.String()
}

// Store persists a mapping with an expiry matching its ExpiresAt timestamp.
func (r *RedisMappingRepository) Store(ctx context.Context, mapping *mappingDomain.PseudonymMapping) error {
	payload, err := json.Marshal(mapping)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal mapping")
	}

	expiry := time.Until(mapping.ExpiresAt)
	if expiry <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "mapping already expired")
	}

	if err := r.client.Set(ctx, mappingKey(mapping.PseudonymID), payload, expiry).Err(); err != nil {
		return apperrors.Wrap(err, "failed to store mapping")
	}
	return nil
}

// Retrieve loads a mapping by pseudonym ID. Expired keys are evicted by Redis
// and surface as ErrMappingNotFound.
func (r *RedisMappingRepository) Retrieve(ctx context.Context, pseudonymID uuid.UUID) (*mappingDomain.PseudonymMapping, error) {
	payload, err := r.client.Get(ctx, mappingKey(pseudonymID)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, mappingDomain.ErrMappingNotFound
		}
		return nil, apperrors.Wrap(err, "failed to retrieve mapping")
	}

	var mapping mappingDomain.PseudonymMapping
	if err := json.Unmarshal(payload, &mapping); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal mapping")
	}
	return &mapping, nil
}

// Delete removes a mapping, reporting whether a live mapping was deleted.
func (r *RedisMappingRepository) Delete(ctx context.Context, pseudonymID uuid.UUID) (bool, error) {
	deleted, err := r.client.Del(ctx, mappingKey(pseudonymID)).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to delete mapping")
	}
	return deleted > 0, nil
}

// Count returns the number of live mappings in the store.
func (r *RedisMappingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	iter := r.client.Scan(ctx, 0, mappingKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, apperrors.Wrap(err, "failed to count mappings")
	}
	return count, nil
}

// PurgeAll removes every mapping and returns the number deleted.
func (r *RedisMappingRepository) PurgeAll(ctx context.Context) (int64, error) {
	var purged int64
	iter := r.client.Scan(ctx, 0, mappingKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		deleted, err := r.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return purged, apperrors.Wrap(err, "failed to purge mappings")
		}
		purged += deleted
	}
	if err := iter.Err(); err != nil {
		return purged, apperrors.Wrap(err, "failed to purge mappings")
	}
	return purged, nil
}

// Stats reports backend health and mapping count.
func (r *RedisMappingRepository) Stats(ctx context.Context) (*mappingDomain.StoreStats, error) {
	stats := &mappingDomain.StoreStats{
		Backend:    "redis",
		MappingTTL: r.ttl,
	}

	if err := r.client.Health(ctx); err != nil {
		return stats, apperrors.Wrap(err, "redis health check failed")
	}
	stats.Connected = true

	count, err := r.Count(ctx)
	if err != nil {
		return stats, err
	}
	stats.MappingCount = count
	return stats, nil
}
