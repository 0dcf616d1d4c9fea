package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	detectionDomain "github.com/allisson/pseudonymizer/internal/detection/domain"
	mappingDomain "github.com/allisson/pseudonymizer/internal/mapping/domain"
	pseudonymDomain "github.com/allisson/pseudonymizer/internal/pseudonym/domain"
	"github.com/allisson/pseudonymizer/internal/record"
)

// pseudonymUseCase implements PseudonymUseCase.
type pseudonymUseCase struct {
	detector   Detector
	tokenizer  Tokenizer
	perturber  Perturber
	keys       KeyProvider
	store      MappingStore
	mappingTTL time.Duration
	logger     *slog.Logger
}

// NewPseudonymUseCase creates a new PseudonymUseCase with injected dependencies.
func NewPseudonymUseCase(
	detector Detector,
	tokenizer Tokenizer,
	perturber Perturber,
	keys KeyProvider,
	store MappingStore,
	mappingTTL time.Duration,
	logger *slog.Logger,
) PseudonymUseCase {
	return &pseudonymUseCase{
		detector:   detector,
		tokenizer:  tokenizer,
		perturber:  perturber,
		keys:       keys,
		store:      store,
		mappingTTL: mappingTTL,
		logger:     logger,
	}
}

// Pseudonymize transforms a record and persists its reversible mapping.
// Detections are applied first-match-wins per field path; later detections on
// an already transformed path are kept in the audit but not applied. Amounts
// and dates inside transactions are perturbed unconditionally.
func (u *pseudonymUseCase) Pseudonymize(ctx context.Context, rec record.Record) (*pseudonymDomain.Result, error) {
	if len(rec) == 0 {
		return nil, pseudonymDomain.ErrEmptyRecord
	}
	if id, ok := rec["customer_id"].(string); !ok || id == "" {
		return nil, pseudonymDomain.ErrMissingCustomerID
	}

	// Key material is fetched once and reused for the whole record, so a
	// concurrent rotation cannot split a record across key versions.
	material, err := u.keys.Active()
	if err != nil {
		return nil, err
	}

	original := record.Clone(rec)
	working := record.Clone(rec)

	detections := u.detector.Detect(working)

	var applied []mappingDomain.AppliedField
	transformed := make(map[string]bool, len(detections))
	tokenizedByType := make(map[detectionDomain.PIIType]int)
	highConfidence := 0

	for _, det := range detections {
		if det.IsHighConfidence() {
			highConfidence++
		}
		// Dedup on segments, not the rendered path: a literal key that
		// renders like a nested path must not shadow it.
		if transformed[det.Path.Key()] {
			continue
		}

		value, ok := record.Get(working, det.Path)
		if !ok {
			continue
		}
		str, ok := value.(string)
		if !ok {
			// Numeric leaves flagged by field name (e.g. an integer account
			// number) are left to perturbation or kept as-is; tokens only
			// replace string values.
			continue
		}

		token, err := u.tokenizer.TokenizeByType(str, det.Type, material)
		if err != nil {
			u.logger.Warn("tokenization failed, field left untouched",
				slog.String("field_path", det.FieldPath),
				slog.String("pii_type", det.Type.String()),
				slog.String("error", err.Error()),
			)
			continue
		}

		record.Set(working, det.Path, token)
		transformed[det.Path.Key()] = true
		tokenizedByType[det.Type]++
		applied = append(applied, mappingDomain.AppliedField{
			FieldPath:  det.FieldPath,
			Type:       det.Type,
			Confidence: det.Confidence,
			Method:     det.Method,
			Token:      token,
			Action:     mappingDomain.ActionTokenized,
		})
	}

	applied = append(applied, u.perturbTransactions(working, transformed)...)

	perturbed := 0
	for _, f := range applied {
		if f.Action == mappingDomain.ActionPerturbed {
			perturbed++
		}
	}

	now := time.Now().UTC()
	mapping := &mappingDomain.PseudonymMapping{
		PseudonymID:    uuid.New(),
		OriginalRecord: original,
		Fields:         applied,
		KeyVersion:     material.Version,
		CreatedAt:      now,
		ExpiresAt:      now.Add(u.mappingTTL),
	}

	if err := u.store.Store(ctx, mapping); err != nil {
		// Without a stored mapping the pseudonym would be irreversible, so
		// the whole operation fails.
		return nil, err
	}

	return &pseudonymDomain.Result{
		PseudonymID: mapping.PseudonymID,
		Record:      working,
		Detections:  detections,
		Summary: pseudonymDomain.Summary{
			FieldsTokenized:          len(applied) - perturbed,
			FieldsPerturbed:          perturbed,
			TokenizedByType:          tokenizedByType,
			HighConfidenceDetections: highConfidence,
			FieldPaths:               mapping.FieldPaths(),
			KeyVersion:               material.Version,
		},
	}, nil
}

// perturbTransactions shifts the amount and date of every transaction entry.
// Fields already replaced by a token are skipped.
func (u *pseudonymUseCase) perturbTransactions(working record.Record, transformed map[string]bool) []mappingDomain.AppliedField {
	transactions, ok := working["transactions"].([]any)
	if !ok {
		return nil
	}

	var applied []mappingDomain.AppliedField
	base := record.Path{}.Child("transactions")
	for i, item := range transactions {
		tx, ok := item.(map[string]any)
		if !ok {
			continue
		}
		txPath := base.Elem(i)

		if amount, ok := tx["amount"].(float64); ok {
			path := txPath.Child("amount")
			if !transformed[path.Key()] {
				tx["amount"] = u.perturber.Amount(amount)
				transformed[path.Key()] = true
				applied = append(applied, mappingDomain.AppliedField{
					FieldPath: path.String(),
					Action:    mappingDomain.ActionPerturbed,
				})
			}
		}

		if date, ok := tx["date"].(string); ok {
			path := txPath.Child("date")
			if !transformed[path.Key()] {
				shifted := u.perturber.Date(date)
				if shifted != date {
					tx["date"] = shifted
					transformed[path.Key()] = true
					applied = append(applied, mappingDomain.AppliedField{
						FieldPath: path.String(),
						Action:    mappingDomain.ActionPerturbed,
					})
				}
			}
		}
	}
	return applied
}

// BatchPseudonymize processes records sequentially. Each record succeeds or
// fails on its own; the result slice is index-aligned with the input. With
// failFast set, the first failure aborts the batch and the remaining records
// stay unprocessed.
func (u *pseudonymUseCase) BatchPseudonymize(ctx context.Context, recs []record.Record, failFast bool) []pseudonymDomain.BatchItem {
	items := make([]pseudonymDomain.BatchItem, 0, len(recs))
	for i, rec := range recs {
		result, err := u.Pseudonymize(ctx, rec)
		if err != nil {
			u.logger.Warn("batch item failed",
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)
			items = append(items, pseudonymDomain.BatchItem{Err: err})
			if failFast {
				return items
			}
			continue
		}
		items = append(items, pseudonymDomain.BatchItem{Result: result})
	}
	return items
}

// DeleteMapping removes a stored mapping, making the pseudonym irreversible.
func (u *pseudonymUseCase) DeleteMapping(ctx context.Context, pseudonymID uuid.UUID) (bool, error) {
	return u.store.Delete(ctx, pseudonymID)
}

// PurgeMappings removes every stored mapping.
func (u *pseudonymUseCase) PurgeMappings(ctx context.Context) (int64, error) {
	return u.store.PurgeAll(ctx)
}

// StoreStats reports the mapping store backend state.
func (u *pseudonymUseCase) StoreStats(ctx context.Context) (*mappingDomain.StoreStats, error) {
	return u.store.Stats(ctx)
}
