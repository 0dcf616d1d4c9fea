// Package usecase implements pseudonymization business logic.
//
// Coordinates PII detection, deterministic tokenization, bounded perturbation
// and reversible mapping storage. A record is transformed as a unit: the
// mapping is persisted before the pseudonymized record is returned, so every
// returned pseudonym ID is guaranteed to be reversible until its TTL elapses.
package usecase

import (
	"context"

	"github.com/google/uuid"

	detectionDomain "github.com/allisson/pseudonymizer/internal/detection/domain"
	keysDomain "github.com/allisson/pseudonymizer/internal/keys/domain"
	mappingDomain "github.com/allisson/pseudonymizer/internal/mapping/domain"
	pseudonymDomain "github.com/allisson/pseudonymizer/internal/pseudonym/domain"
	"github.com/allisson/pseudonymizer/internal/record"
)

// Detector defines the interface for PII detection over nested records.
type Detector interface {
	Detect(rec record.Record) []detectionDomain.Detection
}

// Tokenizer defines the interface for deterministic keyed tokenization.
type Tokenizer interface {
	TokenizeByType(value string, piiType detectionDomain.PIIType, material *keysDomain.KeyMaterial) (string, error)
}

// Perturber defines the interface for bounded value perturbation.
type Perturber interface {
	Amount(amount float64) float64
	Date(date string) string
}

// KeyProvider supplies the active key material snapshot for a request.
type KeyProvider interface {
	Active() (*keysDomain.KeyMaterial, error)
}

// MappingStore defines the mapping persistence operations used by pseudonymization.
type MappingStore interface {
	Store(ctx context.Context, mapping *mappingDomain.PseudonymMapping) error
	Delete(ctx context.Context, pseudonymID uuid.UUID) (bool, error)
	PurgeAll(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*mappingDomain.StoreStats, error)
}

// PseudonymUseCase defines the interface for pseudonymization business logic.
type PseudonymUseCase interface {
	// Pseudonymize transforms a single record and stores its reversible mapping.
	Pseudonymize(ctx context.Context, rec record.Record) (*pseudonymDomain.Result, error)
	// BatchPseudonymize transforms records sequentially with per-record
	// failure isolation; the returned slice is index-aligned with the input.
	// When failFast is set the batch stops at the first failure and the
	// returned slice ends with the failed item.
	BatchPseudonymize(ctx context.Context, recs []record.Record, failFast bool) []pseudonymDomain.BatchItem
	// DeleteMapping removes a stored mapping, making the pseudonym irreversible.
	DeleteMapping(ctx context.Context, pseudonymID uuid.UUID) (bool, error)
	// PurgeMappings removes every stored mapping.
	PurgeMappings(ctx context.Context) (int64, error)
	// StoreStats reports the mapping store backend state.
	StoreStats(ctx context.Context) (*mappingDomain.StoreStats, error)
}
