package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/pseudonymizer/internal/metrics"
	repersonDomain "github.com/allisson/pseudonymizer/internal/reperson/domain"
)

// repersonUseCaseWithMetrics decorates RepersonUseCase with metrics instrumentation.
type repersonUseCaseWithMetrics struct {
	next    RepersonUseCase
	metrics metrics.BusinessMetrics
}

// NewRepersonUseCaseWithMetrics wraps a RepersonUseCase with metrics recording.
func NewRepersonUseCaseWithMetrics(
	useCase RepersonUseCase,
	m metrics.BusinessMetrics,
) RepersonUseCase {
	return &repersonUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Repersonalize records metrics for single-record recovery.
func (r *repersonUseCaseWithMetrics) Repersonalize(
	ctx context.Context,
	pseudonymID uuid.UUID,
	verify bool,
) (*repersonDomain.Result, error) {
	start := time.Now()
	result, err := r.next.Repersonalize(ctx, pseudonymID, verify)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "reperson", "repersonalize", status)
	r.metrics.RecordDuration(ctx, "reperson", "repersonalize", time.Since(start), status)

	return result, err
}

// BatchRepersonalize records metrics for batch recovery. The batch counts as
// an error when any item failed.
func (r *repersonUseCaseWithMetrics) BatchRepersonalize(
	ctx context.Context,
	pseudonymIDs []uuid.UUID,
	verify, failFast bool,
) []repersonDomain.BatchItem {
	start := time.Now()
	items := r.next.BatchRepersonalize(ctx, pseudonymIDs, verify, failFast)

	status := "success"
	for _, item := range items {
		if item.Err != nil {
			status = "error"
			break
		}
	}

	r.metrics.RecordOperation(ctx, "reperson", "batch_repersonalize", status)
	r.metrics.RecordDuration(ctx, "reperson", "batch_repersonalize", time.Since(start), status)

	return items
}

// Cleanup records metrics for mapping cleanup.
func (r *repersonUseCaseWithMetrics) Cleanup(ctx context.Context, pseudonymID uuid.UUID) (bool, error) {
	start := time.Now()
	deleted, err := r.next.Cleanup(ctx, pseudonymID)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "reperson", "cleanup", status)
	r.metrics.RecordDuration(ctx, "reperson", "cleanup", time.Since(start), status)

	return deleted, err
}
