// Package http provides HTTP handlers for pseudonymization and mapping management.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/pseudonymizer/internal/httputil"
	mappingDomain "github.com/allisson/pseudonymizer/internal/mapping/domain"
	"github.com/allisson/pseudonymizer/internal/pseudonym/http/dto"
	pseudonymUseCase "github.com/allisson/pseudonymizer/internal/pseudonym/usecase"
	customValidation "github.com/allisson/pseudonymizer/internal/validation"
)

// PseudonymHandler handles HTTP requests for pseudonymization operations.
type PseudonymHandler struct {
	pseudonymUseCase pseudonymUseCase.PseudonymUseCase
	logger           *slog.Logger
}

// NewPseudonymHandler creates a new pseudonymization handler with required dependencies.
func NewPseudonymHandler(
	useCase pseudonymUseCase.PseudonymUseCase,
	logger *slog.Logger,
) *PseudonymHandler {
	return &PseudonymHandler{
		pseudonymUseCase: useCase,
		logger:           logger,
	}
}

// PseudonymizeHandler transforms a single record.
// POST /v1/pseudonymize
// Returns 200 OK with the pseudonymized record, detections, and summary.
func (h *PseudonymHandler) PseudonymizeHandler(c *gin.Context) {
	var req dto.PseudonymizeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.pseudonymUseCase.Pseudonymize(c.Request.Context(), req.Record)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapResultToPseudonymizeResponse(result))
}

// BatchPseudonymizeHandler transforms a batch of records with per-record
// failure isolation, or aborting at the first failure when fail_fast is
// requested.
// POST /v1/pseudonymize/batch
// Returns 200 OK with index-aligned per-record outcomes.
func (h *PseudonymHandler) BatchPseudonymizeHandler(c *gin.Context) {
	var req dto.BatchPseudonymizeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	items := h.pseudonymUseCase.BatchPseudonymize(c.Request.Context(), req.Records, req.FailFast)

	c.JSON(http.StatusOK, dto.MapBatchItemsToResponse(items))
}

// DeleteMappingHandler removes a stored mapping, making its pseudonym irreversible.
// DELETE /v1/mappings/:id
// Returns 204 No Content on success, 404 when no live mapping exists.
func (h *PseudonymHandler) DeleteMappingHandler(c *gin.Context) {
	pseudonymID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c,
			fmt.Errorf("mapping id must be a valid UUID"),
			h.logger)
		return
	}

	deleted, err := h.pseudonymUseCase.DeleteMapping(c.Request.Context(), pseudonymID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	if !deleted {
		httputil.HandleErrorGin(c, mappingDomain.ErrMappingNotFound, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// StoreStatsHandler reports the mapping store backend state.
// GET /v1/store/stats
// Returns 200 OK with backend, connectivity, count, and TTL.
func (h *PseudonymHandler) StoreStatsHandler(c *gin.Context) {
	stats, err := h.pseudonymUseCase.StoreStats(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapStoreStatsToResponse(stats))
}
