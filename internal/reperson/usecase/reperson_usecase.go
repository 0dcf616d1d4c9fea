package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/pseudonymizer/internal/record"
	repersonDomain "github.com/allisson/pseudonymizer/internal/reperson/domain"
)

// repersonUseCase implements RepersonUseCase.
type repersonUseCase struct {
	store  MappingReader
	logger *slog.Logger
}

// NewRepersonUseCase creates a new RepersonUseCase with injected dependencies.
func NewRepersonUseCase(store MappingReader, logger *slog.Logger) RepersonUseCase {
	return &repersonUseCase{
		store:  store,
		logger: logger,
	}
}

// Repersonalize recovers the original record for a pseudonym ID.
func (u *repersonUseCase) Repersonalize(
	ctx context.Context,
	pseudonymID uuid.UUID,
	verify bool,
) (*repersonDomain.Result, error) {
	mapping, err := u.store.Retrieve(ctx, pseudonymID)
	if err != nil {
		return nil, err
	}

	// The original is cloned so callers can mutate the record without
	// corrupting a mapping that is still cached in memory.
	recovered := record.Clone(mapping.OriginalRecord)

	result := &repersonDomain.Result{
		PseudonymID:    pseudonymID,
		Record:         recovered,
		FieldsRestored: mapping.FieldPaths(),
		StoredAt:       mapping.CreatedAt,
		ExpiresAt:      mapping.ExpiresAt,
	}
	if verify {
		report := verifyStructure(recovered)
		result.Verification = &report
		if !report.Passed {
			u.logger.Warn("recovered record failed structural verification",
				slog.String("pseudonym_id", pseudonymID.String()),
				slog.Any("issues", report.Issues),
			)
		}
	}
	return result, nil
}

// verifyStructure checks that a recovered record has the expected financial
// record shape: customer identifier, balance and transaction array present at
// the top level, and date/amount/type/description on every transaction.
func verifyStructure(rec record.Record) repersonDomain.VerificationReport {
	var issues []string

	if id, ok := rec["customer_id"].(string); !ok || id == "" {
		issues = append(issues, "customer_id must be a non-empty string")
	}

	if balance, ok := rec["account_balance"]; !ok {
		issues = append(issues, "account_balance is required")
	} else if _, isNumber := balance.(float64); !isNumber {
		issues = append(issues, "account_balance must be numeric")
	}

	raw, ok := rec["transactions"]
	if !ok {
		issues = append(issues, "transactions is required")
	} else {
		transactions, isSlice := raw.([]any)
		if !isSlice {
			issues = append(issues, "transactions must be an array")
		}
		for i, item := range transactions {
			tx, isMap := item.(map[string]any)
			if !isMap {
				issues = append(issues, fmt.Sprintf("transactions[%d] must be an object", i))
				continue
			}
			if _, ok := tx["amount"].(float64); !ok {
				issues = append(issues, fmt.Sprintf("transactions[%d].amount must be numeric", i))
			}
			if date, ok := tx["date"].(string); !ok || date == "" {
				issues = append(issues, fmt.Sprintf("transactions[%d].date must be a non-empty string", i))
			}
			if txType, ok := tx["type"].(string); !ok || txType == "" {
				issues = append(issues, fmt.Sprintf("transactions[%d].type must be a non-empty string", i))
			}
			if _, ok := tx["description"].(string); !ok {
				issues = append(issues, fmt.Sprintf("transactions[%d].description must be a string", i))
			}
		}
	}

	return repersonDomain.VerificationReport{
		Passed: len(issues) == 0,
		Issues: issues,
	}
}

// BatchRepersonalize recovers records sequentially. Each ID succeeds or fails
// on its own; the result slice is index-aligned with the input. With failFast
// set, the first failure aborts the batch and the remaining IDs stay
// unprocessed.
func (u *repersonUseCase) BatchRepersonalize(
	ctx context.Context,
	pseudonymIDs []uuid.UUID,
	verify, failFast bool,
) []repersonDomain.BatchItem {
	items := make([]repersonDomain.BatchItem, 0, len(pseudonymIDs))
	for i, id := range pseudonymIDs {
		result, err := u.Repersonalize(ctx, id, verify)
		if err != nil {
			u.logger.Warn("batch item failed",
				slog.Int("index", i),
				slog.String("pseudonym_id", id.String()),
				slog.String("error", err.Error()),
			)
			items = append(items, repersonDomain.BatchItem{PseudonymID: id, Err: err})
			if failFast {
				return items
			}
			continue
		}
		items = append(items, repersonDomain.BatchItem{PseudonymID: id, Result: result})
	}
	return items
}

// Cleanup removes a mapping. Cleaning an already absent mapping succeeds.
func (u *repersonUseCase) Cleanup(ctx context.Context, pseudonymID uuid.UUID) (bool, error) {
	deleted, err := u.store.Delete(ctx, pseudonymID)
	if err != nil {
		return false, err
	}
	if deleted {
		u.logger.Info("mapping cleaned up",
			slog.String("pseudonym_id", pseudonymID.String()),
			slog.Time("deleted_at", time.Now().UTC()),
		)
	}
	return deleted, nil
}
