// Package http provides HTTP handlers for repersonalization operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/pseudonymizer/internal/httputil"
	"github.com/allisson/pseudonymizer/internal/reperson/http/dto"
	repersonUseCase "github.com/allisson/pseudonymizer/internal/reperson/usecase"
	customValidation "github.com/allisson/pseudonymizer/internal/validation"
)

// RepersonHandler handles HTTP requests for repersonalization operations.
type RepersonHandler struct {
	repersonUseCase repersonUseCase.RepersonUseCase
	logger          *slog.Logger
}

// NewRepersonHandler creates a new repersonalization handler with required dependencies.
func NewRepersonHandler(
	useCase repersonUseCase.RepersonUseCase,
	logger *slog.Logger,
) *RepersonHandler {
	return &RepersonHandler{
		repersonUseCase: useCase,
		logger:          logger,
	}
}

// RepersonalizeHandler recovers the original record for a pseudonym ID.
// POST /v1/repersonalize
// Returns 200 OK with the original record; 404 when the mapping is unknown
// or expired.
func (h *RepersonHandler) RepersonalizeHandler(c *gin.Context) {
	var req dto.RepersonalizeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	pseudonymID, err := uuid.Parse(req.PseudonymID)
	if err != nil {
		httputil.HandleBadRequestGin(c,
			fmt.Errorf("pseudonym_id must be a valid UUID"),
			h.logger)
		return
	}

	result, err := h.repersonUseCase.Repersonalize(c.Request.Context(), pseudonymID, req.Verify)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapResultToRepersonalizeResponse(result))
}

// BatchRepersonalizeHandler recovers a batch of records with per-ID failure
// isolation, or aborting at the first failure when fail_fast is requested.
// POST /v1/repersonalize/batch
// Returns 200 OK with index-aligned per-ID outcomes.
func (h *RepersonHandler) BatchRepersonalizeHandler(c *gin.Context) {
	var req dto.BatchRepersonalizeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	pseudonymIDs := make([]uuid.UUID, len(req.PseudonymIDs))
	for i, raw := range req.PseudonymIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.HandleBadRequestGin(c,
				fmt.Errorf("pseudonym_ids[%d] must be a valid UUID", i),
				h.logger)
			return
		}
		pseudonymIDs[i] = id
	}

	items := h.repersonUseCase.BatchRepersonalize(c.Request.Context(), pseudonymIDs, req.Verify, req.FailFast)

	c.JSON(http.StatusOK, dto.MapBatchItemsToResponse(items))
}

// CleanupHandler removes a mapping once its consumer is done with it.
// DELETE /v1/repersonalize/:id
// Returns 204 No Content whether or not a live mapping existed.
func (h *RepersonHandler) CleanupHandler(c *gin.Context) {
	pseudonymID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c,
			fmt.Errorf("pseudonym id must be a valid UUID"),
			h.logger)
		return
	}

	if _, err := h.repersonUseCase.Cleanup(c.Request.Context(), pseudonymID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
