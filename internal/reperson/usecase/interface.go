// Package usecase implements repersonalization business logic.
//
// Recovers original records from the mapping store by pseudonym ID. Expired
// or deleted mappings are indistinguishable from ones that never existed, so
// callers always see a single not-found outcome.
package usecase

import (
	"context"

	"github.com/google/uuid"

	mappingDomain "github.com/allisson/pseudonymizer/internal/mapping/domain"
	repersonDomain "github.com/allisson/pseudonymizer/internal/reperson/domain"
)

// MappingReader defines the mapping persistence operations used by repersonalization.
type MappingReader interface {
	Retrieve(ctx context.Context, pseudonymID uuid.UUID) (*mappingDomain.PseudonymMapping, error)
	Delete(ctx context.Context, pseudonymID uuid.UUID) (bool, error)
}

// RepersonUseCase defines the interface for repersonalization business logic.
type RepersonUseCase interface {
	// Repersonalize recovers the original record for a pseudonym ID,
	// optionally running a structural verification of the recovered payload.
	Repersonalize(ctx context.Context, pseudonymID uuid.UUID, verify bool) (*repersonDomain.Result, error)
	// BatchRepersonalize recovers records sequentially with per-ID failure
	// isolation; the returned slice is index-aligned with the input. When
	// failFast is set the batch stops at the first failure and the returned
	// slice ends with the failed item.
	BatchRepersonalize(ctx context.Context, pseudonymIDs []uuid.UUID, verify, failFast bool) []repersonDomain.BatchItem
	// Cleanup removes a mapping after its consumer is done with it. The
	// operation is idempotent: cleaning an absent mapping is not an error.
	Cleanup(ctx context.Context, pseudonymID uuid.UUID) (bool, error)
}
