package handler

import (
	"net/http"
	"strconv"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/apierror"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/dto"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/repository"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PricingHandler serves the per-variant config API, the product/store batch
// toggles with undo, and the price-change history.
type PricingHandler struct {
	configs service.ConfigService
	toggles service.ToggleService
	history repository.PricingHistoryRepository
}

func NewPricingHandler(
	configs service.ConfigService,
	toggles service.ToggleService,
	history repository.PricingHistoryRepository,
) *PricingHandler {
	return &PricingHandler{configs: configs, toggles: toggles, history: history}
}

// GetConfig godoc
// @Summary      Pricing configuration of a variant
// @Tags         pricing
// @Param        id path string true "Variant UUID"
// @Success      200 {object} dto.PricingConfigResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/variants/{id}/pricing [get]
func (h *PricingHandler) GetConfig(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid variant ID"))
		return
	}
	resp, err := h.configs.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateConfig godoc
// @Summary      Update pricing configuration
// @Description  Accepts one of three shapes: parameter edits, an auto_pricing_enabled toggle, or a resume_option.
// @Tags         pricing
// @Param        id path string true "Variant UUID"
// @Param        body body dto.UpdatePricingRequest true "Changes"
// @Success      200 {object} dto.PricingConfigResponse
// @Failure      400 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/variants/{id}/pricing [patch]
func (h *PricingHandler) UpdateConfig(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid variant ID"))
		return
	}
	var req dto.UpdatePricingRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.configs.Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ToggleProduct enables or disables smart pricing for every variant of a
// product. The response carries pre-mutation snapshots for undo.
func (h *PricingHandler) ToggleProduct(enable bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid product ID"))
			return
		}
		resp, err := h.toggles.ToggleProduct(c.Request.Context(), id, enable)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ToggleStore enables or disables smart pricing for every variant of a store.
func (h *PricingHandler) ToggleStore(enable bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid store ID"))
			return
		}
		resp, err := h.toggles.ToggleStore(c.Request.Context(), id, enable)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// Undo godoc
// @Summary      Undo a batch toggle
// @Description  Replays the snapshots returned by a previous batch toggle as compensating mutations.
// @Tags         pricing
// @Param        body body dto.UndoRequest true "Snapshots to replay"
// @Success      200 {object} dto.UndoResponse
// @Router       /v1/pricing/undo [post]
func (h *PricingHandler) Undo(c *gin.Context) {
	var req dto.UndoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.toggles.Undo(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListHistory godoc
// @Summary      Price-change history of a variant
// @Tags         pricing
// @Param        id    path  string true  "Variant UUID"
// @Param        page  query int    false "Page (default 1)"
// @Param        limit query int    false "Rows per page (default 50)"
// @Success      200 {object} dto.HistoryListResponse
// @Router       /v1/variants/{id}/pricing/history [get]
func (h *PricingHandler) ListHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid variant ID"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	rows, total, err := h.history.ListByVariant(c.Request.Context(), id, page, limit)
	if err != nil {
		c.Error(err)
		return
	}

	data := make([]dto.HistoryItem, 0, len(rows))
	for i := range rows {
		data = append(data, historyToDTO(&rows[i]))
	}
	c.JSON(http.StatusOK, dto.HistoryListResponse{
		Data:  data,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func historyToDTO(e *model.PricingHistoryEntry) dto.HistoryItem {
	return dto.HistoryItem{
		ID:                    e.ID.String(),
		VariantID:             e.VariantID.String(),
		OldPrice:              e.OldPrice,
		NewPrice:              e.NewPrice,
		Action:                string(e.Action),
		Reason:                e.Reason,
		RevenuePreviousPeriod: e.RevenuePreviousPeriod,
		RevenueCurrentPeriod:  e.RevenueCurrentPeriod,
		RevenueChangePercent:  e.RevenueChangePercent,
		CreatedAt:             e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
