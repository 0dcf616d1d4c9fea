package repository

import (
	"context"
	goerrors "errors"
	"log/slog"

	"github.com/google/uuid"

	apperrors "github.com/allisson/pseudonymizer/internal/errors"
	mappingDomain "github.com/allisson/pseudonymizer/internal/mapping/domain"
)

// MappingRepository is the full persistence surface shared by the Redis and
// in-memory backends.
type MappingRepository interface {
	Store(ctx context.Context, mapping *mappingDomain.PseudonymMapping) error
	Retrieve(ctx context.Context, pseudonymID uuid.UUID) (*mappingDomain.PseudonymMapping, error)
	Delete(ctx context.Context, pseudonymID uuid.UUID) (bool, error)
	Count(ctx context.Context) (int64, error)
	PurgeAll(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*mappingDomain.StoreStats, error)
}

// FailoverMappingRepository routes operations to the primary backend and
// falls back to the secondary when the primary is unreachable. Mappings
// written during degraded operation live only in the fallback, so a Retrieve
// consults the fallback on a primary miss as well as on a primary failure.
type FailoverMappingRepository struct {
	primary  MappingRepository
	fallback MappingRepository
	logger   *slog.Logger
}

// NewFailoverMappingRepository creates a new failover mapping repository instance.
func NewFailoverMappingRepository(primary, fallback MappingRepository, logger *slog.Logger) *FailoverMappingRepository {
	return &FailoverMappingRepository{primary: primary, fallback: fallback, logger: logger}
}

// backendDown reports whether an error indicates the backend itself failed,
// as opposed to a domain outcome like not-found.
func backendDown(err error) bool {
	return err != nil &&
		!goerrors.Is(err, apperrors.ErrNotFound) &&
		!goerrors.Is(err, apperrors.ErrInvalidInput)
}

// Store persists a mapping, falling back to the secondary backend on failure.
func (r *FailoverMappingRepository) Store(ctx context.Context, mapping *mappingDomain.PseudonymMapping) error {
	err := r.primary.Store(ctx, mapping)
	if !backendDown(err) {
		return err
	}

	r.logger.Warn("primary mapping store unavailable, storing in fallback",
		slog.String("pseudonym_id", mapping.PseudonymID.String()),
		slog.String("error", err.Error()),
	)
	return r.fallback.Store(ctx, mapping)
}

// Retrieve loads a mapping, consulting the fallback when the primary fails or
// has no entry.
func (r *FailoverMappingRepository) Retrieve(ctx context.Context, pseudonymID uuid.UUID) (*mappingDomain.PseudonymMapping, error) {
	mapping, err := r.primary.Retrieve(ctx, pseudonymID)
	if err == nil {
		return mapping, nil
	}

	if backendDown(err) {
		r.logger.Warn("primary mapping store unavailable, reading from fallback",
			slog.String("pseudonym_id", pseudonymID.String()),
			slog.String("error", err.Error()),
		)
	}
	return r.fallback.Retrieve(ctx, pseudonymID)
}

// Delete removes a mapping from both backends.
func (r *FailoverMappingRepository) Delete(ctx context.Context, pseudonymID uuid.UUID) (bool, error) {
	deleted, err := r.primary.Delete(ctx, pseudonymID)
	if backendDown(err) {
		r.logger.Warn("primary mapping store unavailable, deleting from fallback",
			slog.String("pseudonym_id", pseudonymID.String()),
			slog.String("error", err.Error()),
		)
		return r.fallback.Delete(ctx, pseudonymID)
	}
	if err != nil {
		return false, err
	}

	fallbackDeleted, fallbackErr := r.fallback.Delete(ctx, pseudonymID)
	if fallbackErr != nil {
		return deleted, fallbackErr
	}
	return deleted || fallbackDeleted, nil
}

// Count returns the number of live mappings across both backends.
func (r *FailoverMappingRepository) Count(ctx context.Context) (int64, error) {
	primaryCount, err := r.primary.Count(ctx)
	if backendDown(err) {
		return r.fallback.Count(ctx)
	}
	if err != nil {
		return 0, err
	}

	fallbackCount, err := r.fallback.Count(ctx)
	if err != nil {
		return primaryCount, err
	}
	return primaryCount + fallbackCount, nil
}

// PurgeAll removes every mapping from both backends.
func (r *FailoverMappingRepository) PurgeAll(ctx context.Context) (int64, error) {
	var purged int64

	primaryPurged, err := r.primary.PurgeAll(ctx)
	purged += primaryPurged
	if backendDown(err) {
		r.logger.Warn("primary mapping store unavailable during purge",
			slog.String("error", err.Error()),
		)
	} else if err != nil {
		return purged, err
	}

	fallbackPurged, err := r.fallback.PurgeAll(ctx)
	purged += fallbackPurged
	return purged, err
}

// Stats reports the stats of whichever backend is currently serving traffic.
func (r *FailoverMappingRepository) Stats(ctx context.Context) (*mappingDomain.StoreStats, error) {
	stats, err := r.primary.Stats(ctx)
	if !backendDown(err) {
		return stats, err
	}

	r.logger.Warn("primary mapping store unavailable, reporting fallback stats",
		slog.String("error", err.Error()),
	)
	fallbackStats, fallbackErr := r.fallback.Stats(ctx)
	if fallbackErr != nil {
		return nil, fallbackErr
	}
	// Surface that the primary is down even though the fallback is serving.
	fallbackStats.Connected = false
	return fallbackStats, nil
}
