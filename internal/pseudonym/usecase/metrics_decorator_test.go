package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	mappingDomain "github.com/allisson/pseudonymizer/internal/mapping/domain"
	pseudonymDomain "github.com/allisson/pseudonymizer/internal/pseudonym/domain"
	"github.com/allisson/pseudonymizer/internal/record"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

// stubPseudonymUseCase returns canned values for decorator tests.
type stubPseudonymUseCase struct {
	result *pseudonymDomain.Result
	items  []pseudonymDomain.BatchItem
	err    error
}

func (s *stubPseudonymUseCase) Pseudonymize(ctx context.Context, rec record.Record) (*pseudonymDomain.Result, error) {
	return s.result, s.err
}

func (s *stubPseudonymUseCase) BatchPseudonymize(ctx context.Context, recs []record.Record, failFast bool) []pseudonymDomain.BatchItem {
	return s.items
}

func (s *stubPseudonymUseCase) DeleteMapping(ctx context.Context, pseudonymID uuid.UUID) (bool, error) {
	return s.err == nil, s.err
}

func (s *stubPseudonymUseCase) PurgeMappings(ctx context.Context) (int64, error) {
	return 0, s.err
}

func (s *stubPseudonymUseCase) StoreStats(ctx context.Context) (*mappingDomain.StoreStats, error) {
	return nil, s.err
}

func TestPseudonymUseCaseWithMetrics_Pseudonymize(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus string
	}{
		{"Success_RecordsSuccessMetrics", nil, "success"},
		{"Error_RecordsErrorMetrics", errors.New("boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubPseudonymUseCase{result: &pseudonymDomain.Result{}, err: tt.err}
			mockMetrics := &mockBusinessMetrics{}
			mockMetrics.On("RecordOperation", mock.Anything, "pseudonym", "pseudonymize", tt.expectedStatus).Once()
			mockMetrics.On("RecordDuration", mock.Anything, "pseudonym", "pseudonymize", mock.AnythingOfType("time.Duration"), tt.expectedStatus).
				Once()

			decorator := NewPseudonymUseCaseWithMetrics(stub, mockMetrics)
			_, err := decorator.Pseudonymize(context.Background(), record.Record{"customer_id": "CUST-1"})

			assert.Equal(t, tt.err, err)
			mockMetrics.AssertExpectations(t)
		})
	}
}

func TestPseudonymUseCaseWithMetrics_BatchPseudonymize(t *testing.T) {
	tests := []struct {
		name           string
		items          []pseudonymDomain.BatchItem
		expectedStatus string
	}{
		{
			name:           "AllItemsSucceed",
			items:          []pseudonymDomain.BatchItem{{Result: &pseudonymDomain.Result{}}},
			expectedStatus: "success",
		},
		{
			name: "OneItemFails",
			items: []pseudonymDomain.BatchItem{
				{Result: &pseudonymDomain.Result{}},
				{Err: errors.New("boom")},
			},
			expectedStatus: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubPseudonymUseCase{items: tt.items}
			mockMetrics := &mockBusinessMetrics{}
			mockMetrics.On("RecordOperation", mock.Anything, "pseudonym", "batch_pseudonymize", tt.expectedStatus).Once()
			mockMetrics.On("RecordDuration", mock.Anything, "pseudonym", "batch_pseudonymize", mock.AnythingOfType("time.Duration"), tt.expectedStatus).
				Once()

			decorator := NewPseudonymUseCaseWithMetrics(stub, mockMetrics)
			items := decorator.BatchPseudonymize(context.Background(), nil, false)

			assert.Len(t, items, len(tt.items))
			mockMetrics.AssertExpectations(t)
		})
	}
}

func TestPseudonymUseCaseWithMetrics_StoreOperations(t *testing.T) {
	operations := []struct {
		name      string
		operation string
		call      func(uc PseudonymUseCase) error
	}{
		{
			name:      "DeleteMapping",
			operation: "delete_mapping",
			call: func(uc PseudonymUseCase) error {
				_, err := uc.DeleteMapping(context.Background(), uuid.New())
				return err
			},
		},
		{
			name:      "PurgeMappings",
			operation: "purge_mappings",
			call: func(uc PseudonymUseCase) error {
				_, err := uc.PurgeMappings(context.Background())
				return err
			},
		},
		{
			name:      "StoreStats",
			operation: "store_stats",
			call: func(uc PseudonymUseCase) error {
				_, err := uc.StoreStats(context.Background())
				return err
			},
		},
	}

	for _, op := range operations {
		t.Run(op.name, func(t *testing.T) {
			stub := &stubPseudonymUseCase{}
			mockMetrics := &mockBusinessMetrics{}
			mockMetrics.On("RecordOperation", mock.Anything, "pseudonym", op.operation, "success").Once()
			mockMetrics.On("RecordDuration", mock.Anything, "pseudonym", op.operation, mock.AnythingOfType("time.Duration"), "success").
				Once()

			decorator := NewPseudonymUseCaseWithMetrics(stub, mockMetrics)
			assert.NoError(t, op.call(decorator))
			mockMetrics.AssertExpectations(t)
		})
	}
}
