package v1

import (
	"net/http"

	"github.com/flexprice/tariff/internal/api/dto"
	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/logger"
	"github.com/flexprice/tariff/internal/service"
	"github.com/flexprice/tariff/internal/types"
	"github.com/gin-gonic/gin"
)

type TariffPlanHandler struct {
	service service.TariffPlanService
	log     *logger.Logger
}

func NewTariffPlanHandler(service service.TariffPlanService, log *logger.Logger) *TariffPlanHandler {
	return &TariffPlanHandler{service: service, log: log}
}

// @Summary Create a tariff plan
// @Tags TariffPlans
// @Accept json
// @Produce json
// @Param plan body dto.CreateTariffPlanRequest true "Plan definition"
// @Success 201 {object} dto.TariffPlanResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Router /plans [post]
func (h *TariffPlanHandler) CreateTariffPlan(c *gin.Context) {
	var req dto.CreateTariffPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateTariffPlan(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a tariff plan by ID
// @Tags TariffPlans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} dto.TariffPlanResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /plans/{id} [get]
func (h *TariffPlanHandler) GetTariffPlan(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Plan ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetTariffPlan(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List tariff plans
// @Tags TariffPlans
// @Produce json
// @Param filter query types.TariffPlanFilter false "Filter"
// @Success 200 {object} dto.ListTariffPlansResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /plans [get]
func (h *TariffPlanHandler) GetTariffPlans(c *gin.Context) {
	filter := types.NewTariffPlanFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetTariffPlans(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update a tariff plan
// @Tags TariffPlans
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param plan body dto.UpdateTariffPlanRequest true "Fields to change"
// @Success 200 {object} dto.TariffPlanResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /plans/{id} [put]
func (h *TariffPlanHandler) UpdateTariffPlan(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Plan ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.UpdateTariffPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateTariffPlan(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a tariff plan
// @Tags TariffPlans
// @Param id path string true "Plan ID"
// @Success 204
// @Failure 404 {object} ierr.ErrorResponse
// @Router /plans/{id} [delete]
func (h *TariffPlanHandler) DeleteTariffPlan(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Plan ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.service.DeleteTariffPlan(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
