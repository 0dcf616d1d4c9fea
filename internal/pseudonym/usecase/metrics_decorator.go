package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	mappingDomain "github.com/allisson/pseudonymizer/internal/mapping/domain"
	"github.com/allisson/pseudonymizer/internal/metrics"
	pseudonymDomain "github.com/allisson/pseudonymizer/internal/pseudonym/domain"
	"github.com/allisson/pseudonymizer/internal/record"
)

// pseudonymUseCaseWithMetrics decorates PseudonymUseCase with metrics instrumentation.
type pseudonymUseCaseWithMetrics struct {
	next    PseudonymUseCase
	metrics metrics.BusinessMetrics
}

// NewPseudonymUseCaseWithMetrics wraps a PseudonymUseCase with metrics recording.
func NewPseudonymUseCaseWithMetrics(
	useCase PseudonymUseCase,
	m metrics.BusinessMetrics,
) PseudonymUseCase {
	return &pseudonymUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Pseudonymize records metrics for single-record pseudonymization.
func (p *pseudonymUseCaseWithMetrics) Pseudonymize(ctx context.Context, rec record.Record) (*pseudonymDomain.Result, error) {
	start := time.Now()
	result, err := p.next.Pseudonymize(ctx, rec)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "pseudonym", "pseudonymize", status)
	p.metrics.RecordDuration(ctx, "pseudonym", "pseudonymize", time.Since(start), status)

	return result, err
}

// BatchPseudonymize records metrics for batch pseudonymization. The batch
// counts as an error when any item failed.
func (p *pseudonymUseCaseWithMetrics) BatchPseudonymize(ctx context.Context, recs []record.Record, failFast bool) []pseudonymDomain.BatchItem {
	start := time.Now()
	items := p.next.BatchPseudonymize(ctx, recs, failFast)

	status := "success"
	for _, item := range items {
		if item.Err != nil {
			status = "error"
			break
		}
	}

	p.metrics.RecordOperation(ctx, "pseudonym", "batch_pseudonymize", status)
	p.metrics.RecordDuration(ctx, "pseudonym", "batch_pseudonymize", time.Since(start), status)

	return items
}

// DeleteMapping records metrics for mapping deletion.
func (p *pseudonymUseCaseWithMetrics) DeleteMapping(ctx context.Context, pseudonymID uuid.UUID) (bool, error) {
	start := time.Now()
	deleted, err := p.next.DeleteMapping(ctx, pseudonymID)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "pseudonym", "delete_mapping", status)
	p.metrics.RecordDuration(ctx, "pseudonym", "delete_mapping", time.Since(start), status)

	return deleted, err
}

// PurgeMappings records metrics for mapping purges.
func (p *pseudonymUseCaseWithMetrics) PurgeMappings(ctx context.Context) (int64, error) {
	start := time.Now()
	purged, err := p.next.PurgeMappings(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "pseudonym", "purge_mappings", status)
	p.metrics.RecordDuration(ctx, "pseudonym", "purge_mappings", time.Since(start), status)

	return purged, err
}

// StoreStats records metrics for store stats lookups.
func (p *pseudonymUseCaseWithMetrics) StoreStats(ctx context.Context) (*mappingDomain.StoreStats, error) {
	start := time.Now()
	stats, err := p.next.StoreStats(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "pseudonym", "store_stats", status)
	p.metrics.RecordDuration(ctx, "pseudonym", "store_stats", time.Since(start), status)

	return stats, err
}
