package v1

import (
	"net/http"

	"github.com/flexprice/tariff/internal/api/dto"
	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/logger"
	"github.com/flexprice/tariff/internal/service"
	"github.com/gin-gonic/gin"
)

type EstimateHandler struct {
	service service.EstimateService
	log     *logger.Logger
}

func NewEstimateHandler(service service.EstimateService, log *logger.Logger) *EstimateHandler {
	return &EstimateHandler{service: service, log: log}
}

// @Summary Estimate the cost of usage on an inline plan
// @Tags Estimates
// @Accept json
// @Produce json
// @Param request body dto.EstimateRequest true "Plan definition and usage"
// @Success 200 {object} dto.EstimateResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Router /estimates [post]
func (h *EstimateHandler) Estimate(c *gin.Context) {
	var req dto.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.EstimateInline(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Estimate the cost of usage on a stored plan
// @Tags Estimates
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param request body dto.EstimatePlanRequest true "Usage"
// @Success 200 {object} dto.EstimateResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Router /plans/{id}/estimate [post]
func (h *EstimateHandler) EstimatePlan(c *gin.Context) {
	var req dto.EstimatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	usage, err := req.Usage.Decimal()
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.service.EstimatePlan(c.Request.Context(), c.Param("id"), usage)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Preview the cost of several usage lines
// @Tags Estimates
// @Accept json
// @Produce json
// @Param request body dto.PreviewRequest true "Preview lines"
// @Success 200 {object} dto.PreviewResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Router /estimates/preview [post]
func (h *EstimateHandler) Preview(c *gin.Context) {
	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Preview(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
