package usecase

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	detectionService "github.com/allisson/pseudonymizer/internal/detection/service"
	apperrors "github.com/allisson/pseudonymizer/internal/errors"
	keysDomain "github.com/allisson/pseudonymizer/internal/keys/domain"
	mappingDomain "github.com/allisson/pseudonymizer/internal/mapping/domain"
	mappingRepository "github.com/allisson/pseudonymizer/internal/mapping/repository"
	perturbationService "github.com/allisson/pseudonymizer/internal/perturbation/service"
	pseudonymDomain "github.com/allisson/pseudonymizer/internal/pseudonym/domain"
	"github.com/allisson/pseudonymizer/internal/record"
	tokenizationService "github.com/allisson/pseudonymizer/internal/tokenization/service"
)

// staticKeys serves a fixed key material snapshot.
type staticKeys struct {
	material *keysDomain.KeyMaterial
}

func (s *staticKeys) Active() (*keysDomain.KeyMaterial, error) {
	return s.material, nil
}

// failingStore simulates an unreachable mapping store.
type failingStore struct{}

func (f *failingStore) Store(ctx context.Context, mapping *mappingDomain.PseudonymMapping) error {
	return apperrors.Wrap(apperrors.ErrUnavailable, "store down")
}

func (f *failingStore) Delete(ctx context.Context, pseudonymID uuid.UUID) (bool, error) {
	return false, apperrors.Wrap(apperrors.ErrUnavailable, "store down")
}

func (f *failingStore) PurgeAll(ctx context.Context) (int64, error) {
	return 0, apperrors.Wrap(apperrors.ErrUnavailable, "store down")
}

func (f *failingStore) Stats(ctx context.Context) (*mappingDomain.StoreStats, error) {
	return nil, apperrors.Wrap(apperrors.ErrUnavailable, "store down")
}

func testKeyMaterial() *keysDomain.KeyMaterial {
	return &keysDomain.KeyMaterial{
		Version:   "v1_1735689600",
		Key:       bytes.Repeat([]byte{0x42}, keysDomain.KeySize),
		CreatedAt: time.Now().UTC(),
	}
}

func newTestUseCase(store MappingStore) PseudonymUseCase {
	logger := slog.New(slog.DiscardHandler)
	return NewPseudonymUseCase(
		detectionService.NewDetector(),
		tokenizationService.NewTokenizer(),
		perturbationService.NewPerturber(logger),
		&staticKeys{material: testKeyMaterial()},
		store,
		time.Hour,
		logger,
	)
}

func sampleRecord() record.Record {
	return record.Record{
		"customer_id":     "CUST-12345",
		"name":            "John Smith",
		"email":           "john.smith@example.com",
		"account_balance": 15000.50,
		"transactions": []any{
			map[string]any{
				"amount":      1500.00,
				"date":        "2025-01-15",
				"type":        "deposit",
				"description": "Salary payment",
			},
			map[string]any{
				"amount":      -89.99,
				"date":        "2025-01-17",
				"type":        "withdrawal",
				"description": "Grocery store",
			},
		},
	}
}

func TestPseudonymUseCase_Pseudonymize(t *testing.T) {
	store := mappingRepository.NewMemoryMappingRepository(time.Hour)
	uc := newTestUseCase(store)
	ctx := context.Background()

	result, err := uc.Pseudonymize(ctx, sampleRecord())
	require.NoError(t, err)

	// Identifying string fields are replaced with typed tokens.
	customerID := result.Record["customer_id"].(string)
	assert.True(t, strings.HasPrefix(customerID, "CUST_"), "got %q", customerID)
	assert.NotEqual(t, "CUST-12345", customerID)

	name := result.Record["name"].(string)
	assert.True(t, strings.HasPrefix(name, "USER_"), "got %q", name)

	email := result.Record["email"].(string)
	assert.True(t, strings.HasPrefix(email, "EMAIL_"), "got %q", email)
	assert.True(t, strings.HasSuffix(email, "@anon.example.com"), "got %q", email)

	// Non-identifying fields survive untouched.
	assert.Equal(t, 15000.50, result.Record["account_balance"])
	transactions := result.Record["transactions"].([]any)
	require.Len(t, transactions, 2)
	first := transactions[0].(map[string]any)
	assert.Equal(t, "deposit", first["type"])
	assert.Equal(t, "Salary payment", first["description"])

	// Amounts stay within ten percent of the original, sign preserved.
	amount := first["amount"].(float64)
	assert.InDelta(t, 1500.00, amount, 150.01)
	assert.Positive(t, amount)

	second := transactions[1].(map[string]any)
	secondAmount := second["amount"].(float64)
	assert.InDelta(t, -89.99, secondAmount, 9.01)
	assert.Negative(t, secondAmount)

	// Dates keep their layout and shift by at most thirty days.
	for i, expected := range []string{"2025-01-15", "2025-01-17"} {
		tx := transactions[i].(map[string]any)
		shifted, err := time.Parse("2006-01-02", tx["date"].(string))
		require.NoError(t, err)
		original, err := time.Parse("2006-01-02", expected)
		require.NoError(t, err)
		assert.LessOrEqual(t, shifted.Sub(original).Abs(), 30*24*time.Hour)
	}

	// The stored mapping holds the untouched original record.
	mapping, err := store.Retrieve(ctx, result.PseudonymID)
	require.NoError(t, err)
	assert.Equal(t, sampleRecord(), mapping.OriginalRecord)
	assert.Equal(t, "v1_1735689600", mapping.KeyVersion)
	assert.NotEmpty(t, mapping.Fields)

	// Summary reflects the applied transforms.
	assert.Equal(t, 3, result.Summary.FieldsTokenized)
	assert.GreaterOrEqual(t, result.Summary.FieldsPerturbed, 2)
	assert.Equal(t, "v1_1735689600", result.Summary.KeyVersion)
	assert.NotEmpty(t, result.Detections)
}

func TestPseudonymUseCase_PseudonymizeDoesNotMutateInput(t *testing.T) {
	uc := newTestUseCase(mappingRepository.NewMemoryMappingRepository(time.Hour))

	input := sampleRecord()
	_, err := uc.Pseudonymize(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, sampleRecord(), input)
}

func TestPseudonymUseCase_PseudonymizeDeterministic(t *testing.T) {
	uc := newTestUseCase(mappingRepository.NewMemoryMappingRepository(time.Hour))
	ctx := context.Background()

	first, err := uc.Pseudonymize(ctx, sampleRecord())
	require.NoError(t, err)
	second, err := uc.Pseudonymize(ctx, sampleRecord())
	require.NoError(t, err)

	// Same value under the same key yields the same token, but each call
	// gets a fresh pseudonym ID.
	assert.Equal(t, first.Record["customer_id"], second.Record["customer_id"])
	assert.Equal(t, first.Record["email"], second.Record["email"])
	assert.NotEqual(t, first.PseudonymID, second.PseudonymID)
}

func TestPseudonymUseCase_FirstMatchWinsPerField(t *testing.T) {
	store := mappingRepository.NewMemoryMappingRepository(time.Hour)
	uc := newTestUseCase(store)
	ctx := context.Background()

	// The email field fires both the field-name and the pattern mechanism.
	result, err := uc.Pseudonymize(ctx, record.Record{
		"customer_id": "CUST-1",
		"email":       "jane@example.com",
	})
	require.NoError(t, err)

	var emailDetections int
	for _, det := range result.Detections {
		if det.FieldPath == "email" {
			emailDetections++
		}
	}
	assert.GreaterOrEqual(t, emailDetections, 2)

	// Only one transform is applied to the field.
	mapping, err := store.Retrieve(ctx, result.PseudonymID)
	require.NoError(t, err)
	var emailFields int
	for _, f := range mapping.Fields {
		if f.FieldPath == "email" {
			emailFields++
		}
	}
	assert.Equal(t, 1, emailFields)
}

func TestPseudonymUseCase_MissingCustomerID(t *testing.T) {
	uc := newTestUseCase(mappingRepository.NewMemoryMappingRepository(time.Hour))
	ctx := context.Background()

	tests := []struct {
		name string
		rec  record.Record
		err  error
	}{
		{"nil record", nil, pseudonymDomain.ErrEmptyRecord},
		{"empty record", record.Record{}, pseudonymDomain.ErrEmptyRecord},
		{"missing customer_id", record.Record{"email": "a@b.com"}, pseudonymDomain.ErrMissingCustomerID},
		{"empty customer_id", record.Record{"customer_id": ""}, pseudonymDomain.ErrMissingCustomerID},
		{"non-string customer_id", record.Record{"customer_id": 42.0}, pseudonymDomain.ErrMissingCustomerID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Pseudonymize(ctx, tt.rec)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestPseudonymUseCase_StoreFailureAbortsOperation(t *testing.T) {
	uc := newTestUseCase(&failingStore{})

	_, err := uc.Pseudonymize(context.Background(), sampleRecord())
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestPseudonymUseCase_BatchPseudonymize(t *testing.T) {
	uc := newTestUseCase(mappingRepository.NewMemoryMappingRepository(time.Hour))
	ctx := context.Background()

	recs := []record.Record{
		sampleRecord(),
		{"email": "no-customer-id@example.com"},
		{"customer_id": "CUST-2", "email": "b@example.com"},
	}

	items := uc.BatchPseudonymize(ctx, recs, false)
	require.Len(t, items, 3)

	assert.NotNil(t, items[0].Result)
	assert.NoError(t, items[0].Err)

	assert.Nil(t, items[1].Result)
	assert.ErrorIs(t, items[1].Err, pseudonymDomain.ErrMissingCustomerID)

	// A failing record does not abort its siblings.
	assert.NotNil(t, items[2].Result)
	assert.NoError(t, items[2].Err)
}

func TestPseudonymUseCase_BatchPseudonymizeFailFast(t *testing.T) {
	uc := newTestUseCase(mappingRepository.NewMemoryMappingRepository(time.Hour))
	ctx := context.Background()

	recs := []record.Record{
		sampleRecord(),
		{"email": "no-customer-id@example.com"},
		{"customer_id": "CUST-2", "email": "b@example.com"},
	}

	items := uc.BatchPseudonymize(ctx, recs, true)

	// The batch stops at the failing record; the last record is never processed.
	require.Len(t, items, 2)
	assert.NoError(t, items[0].Err)
	assert.ErrorIs(t, items[1].Err, pseudonymDomain.ErrMissingCustomerID)
}

func TestPseudonymUseCase_DeleteMapping(t *testing.T) {
	store := mappingRepository.NewMemoryMappingRepository(time.Hour)
	uc := newTestUseCase(store)
	ctx := context.Background()

	result, err := uc.Pseudonymize(ctx, sampleRecord())
	require.NoError(t, err)

	deleted, err := uc.DeleteMapping(ctx, result.PseudonymID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = store.Retrieve(ctx, result.PseudonymID)
	assert.ErrorIs(t, err, mappingDomain.ErrMappingNotFound)
}

func TestPseudonymUseCase_PurgeAndStats(t *testing.T) {
	store := mappingRepository.NewMemoryMappingRepository(time.Hour)
	uc := newTestUseCase(store)
	ctx := context.Background()

	_, err := uc.Pseudonymize(ctx, sampleRecord())
	require.NoError(t, err)

	stats, err := uc.StoreStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.MappingCount)

	purged, err := uc.PurgeMappings(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestPseudonymUseCase_AmountPerturbationBounds(t *testing.T) {
	uc := newTestUseCase(mappingRepository.NewMemoryMappingRepository(time.Hour))
	ctx := context.Background()

	rec := record.Record{
		"customer_id": "CUST-1",
		"transactions": []any{
			map[string]any{"amount": 250000.0, "date": "2024-06-01"},
		},
	}

	result, err := uc.Pseudonymize(ctx, rec)
	require.NoError(t, err)

	amount := result.Record["transactions"].([]any)[0].(map[string]any)["amount"].(float64)
	assert.GreaterOrEqual(t, amount, 250000.0*0.9-0.005)
	assert.LessOrEqual(t, amount, 250000.0*1.1+0.005)
	assert.False(t, math.Signbit(amount))
}
