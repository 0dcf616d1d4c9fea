package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mappingDomain "github.com/allisson/pseudonymizer/internal/mapping/domain"
	"github.com/allisson/pseudonymizer/internal/record"
	repersonDomain "github.com/allisson/pseudonymizer/internal/reperson/domain"
	"github.com/allisson/pseudonymizer/internal/reperson/http/dto"
)

// fakeRepersonUseCase implements usecase.RepersonUseCase with function fields.
type fakeRepersonUseCase struct {
	repersonalizeFn func(ctx context.Context, pseudonymID uuid.UUID, verify bool) (*repersonDomain.Result, error)
	batchFn         func(ctx context.Context, pseudonymIDs []uuid.UUID, verify, failFast bool) []repersonDomain.BatchItem
	cleanupFn       func(ctx context.Context, pseudonymID uuid.UUID) (bool, error)
}

func (f *fakeRepersonUseCase) Repersonalize(ctx context.Context, pseudonymID uuid.UUID, verify bool) (*repersonDomain.Result, error) {
	return f.repersonalizeFn(ctx, pseudonymID, verify)
}

func (f *fakeRepersonUseCase) BatchRepersonalize(ctx context.Context, pseudonymIDs []uuid.UUID, verify, failFast bool) []repersonDomain.BatchItem {
	return f.batchFn(ctx, pseudonymIDs, verify, failFast)
}

func (f *fakeRepersonUseCase) Cleanup(ctx context.Context, pseudonymID uuid.UUID) (bool, error) {
	return f.cleanupFn(ctx, pseudonymID)
}

// createTestContext builds a Gin test context with an optional JSON body.
func createTestContext(method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func setupTestRepersonHandler(uc *fakeRepersonUseCase) *RepersonHandler {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRepersonHandler(uc, logger)
}

func TestRepersonHandler_RepersonalizeHandler(t *testing.T) {
	t.Run("Success_ReturnsOriginalRecord", func(t *testing.T) {
		pseudonymID := uuid.New()
		now := time.Now().UTC()
		uc := &fakeRepersonUseCase{
			repersonalizeFn: func(ctx context.Context, id uuid.UUID, verify bool) (*repersonDomain.Result, error) {
				return &repersonDomain.Result{
					PseudonymID:    id,
					Record:         record.Record{"customer_id": "CUST-12345"},
					FieldsRestored: []string{"customer_id"},
					StoredAt:       now,
					ExpiresAt:      now.Add(time.Hour),
				}, nil
			},
		}
		handler := setupTestRepersonHandler(uc)

		c, w := createTestContext(http.MethodPost, "/v1/repersonalize", dto.RepersonalizeRequest{
			PseudonymID: pseudonymID.String(),
		})
		handler.RepersonalizeHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.RepersonalizeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, pseudonymID.String(), response.PseudonymID)
		assert.Equal(t, "CUST-12345", response.Record["customer_id"])
		assert.Equal(t, []string{"customer_id"}, response.FieldsRestored)
		assert.Nil(t, response.Verification)
	})

	t.Run("Success_VerificationIncluded", func(t *testing.T) {
		uc := &fakeRepersonUseCase{
			repersonalizeFn: func(ctx context.Context, id uuid.UUID, verify bool) (*repersonDomain.Result, error) {
				assert.True(t, verify)
				return &repersonDomain.Result{
					PseudonymID:  id,
					Record:       record.Record{"customer_id": "CUST-1"},
					Verification: &repersonDomain.VerificationReport{Passed: true},
				}, nil
			},
		}
		handler := setupTestRepersonHandler(uc)

		c, w := createTestContext(http.MethodPost, "/v1/repersonalize", dto.RepersonalizeRequest{
			PseudonymID: uuid.New().String(),
			Verify:      true,
		})
		handler.RepersonalizeHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.RepersonalizeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.NotNil(t, response.Verification)
		assert.True(t, response.Verification.Passed)
	})

	t.Run("Error_UnknownMappingReturns404", func(t *testing.T) {
		uc := &fakeRepersonUseCase{
			repersonalizeFn: func(ctx context.Context, id uuid.UUID, verify bool) (*repersonDomain.Result, error) {
				return nil, mappingDomain.ErrMappingNotFound
			},
		}
		handler := setupTestRepersonHandler(uc)

		c, w := createTestContext(http.MethodPost, "/v1/repersonalize", dto.RepersonalizeRequest{
			PseudonymID: uuid.New().String(),
		})
		handler.RepersonalizeHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_InvalidUUIDReturns422", func(t *testing.T) {
		handler := setupTestRepersonHandler(&fakeRepersonUseCase{})

		c, w := createTestContext(http.MethodPost, "/v1/repersonalize", dto.RepersonalizeRequest{
			PseudonymID: "not-a-uuid",
		})
		handler.RepersonalizeHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestRepersonHandler_BatchRepersonalizeHandler(t *testing.T) {
	t.Run("Success_MixedOutcomes", func(t *testing.T) {
		found := uuid.New()
		missing := uuid.New()
		uc := &fakeRepersonUseCase{
			batchFn: func(ctx context.Context, ids []uuid.UUID, verify, failFast bool) []repersonDomain.BatchItem {
				return []repersonDomain.BatchItem{
					{PseudonymID: found, Result: &repersonDomain.Result{PseudonymID: found, Record: record.Record{"customer_id": "CUST-1"}}},
					{PseudonymID: missing, Err: mappingDomain.ErrMappingNotFound},
				}
			},
		}
		handler := setupTestRepersonHandler(uc)

		c, w := createTestContext(http.MethodPost, "/v1/repersonalize/batch", dto.BatchRepersonalizeRequest{
			PseudonymIDs: []string{found.String(), missing.String()},
		})
		handler.BatchRepersonalizeHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.BatchRepersonalizeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Results, 2)
		assert.True(t, response.Results[0].Success)
		assert.False(t, response.Results[1].Success)
		assert.Equal(t, 1, response.Succeeded)
		assert.Equal(t, 1, response.Failed)
	})

	t.Run("Success_ForwardsFailFast", func(t *testing.T) {
		id := uuid.New()
		var gotFailFast bool
		uc := &fakeRepersonUseCase{
			batchFn: func(ctx context.Context, ids []uuid.UUID, verify, failFast bool) []repersonDomain.BatchItem {
				gotFailFast = failFast
				return []repersonDomain.BatchItem{{PseudonymID: id, Err: mappingDomain.ErrMappingNotFound}}
			},
		}
		handler := setupTestRepersonHandler(uc)

		c, w := createTestContext(http.MethodPost, "/v1/repersonalize/batch", dto.BatchRepersonalizeRequest{
			PseudonymIDs: []string{id.String()},
			FailFast:     true,
		})
		handler.BatchRepersonalizeHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, gotFailFast)
	})

	t.Run("Error_EmptyBatchReturns422", func(t *testing.T) {
		handler := setupTestRepersonHandler(&fakeRepersonUseCase{})

		c, w := createTestContext(http.MethodPost, "/v1/repersonalize/batch", dto.BatchRepersonalizeRequest{})
		handler.BatchRepersonalizeHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestRepersonHandler_CleanupHandler(t *testing.T) {
	t.Run("Success_Returns204", func(t *testing.T) {
		uc := &fakeRepersonUseCase{
			cleanupFn: func(ctx context.Context, id uuid.UUID) (bool, error) {
				return true, nil
			},
		}
		handler := setupTestRepersonHandler(uc)

		id := uuid.New()
		c, w := createTestContext(http.MethodDelete, "/v1/repersonalize/"+id.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: id.String()}}
		handler.CleanupHandler(c)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Success_AbsentMappingStillReturns204", func(t *testing.T) {
		uc := &fakeRepersonUseCase{
			cleanupFn: func(ctx context.Context, id uuid.UUID) (bool, error) {
				return false, nil
			},
		}
		handler := setupTestRepersonHandler(uc)

		id := uuid.New()
		c, w := createTestContext(http.MethodDelete, "/v1/repersonalize/"+id.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: id.String()}}
		handler.CleanupHandler(c)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Error_InvalidUUIDReturns400", func(t *testing.T) {
		handler := setupTestRepersonHandler(&fakeRepersonUseCase{})

		c, w := createTestContext(http.MethodDelete, "/v1/repersonalize/bogus", nil)
		c.Params = gin.Params{{Key: "id", Value: "bogus"}}
		handler.CleanupHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
