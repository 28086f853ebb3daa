package handler

import (
	"net/http"
	"time"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/apierror"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/dto"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RevenueHandler ingests daily revenue figures from the order stream.
type RevenueHandler struct {
	revenue repository.RevenueRepository
}

func NewRevenueHandler(revenue repository.RevenueRepository) *RevenueHandler {
	return &RevenueHandler{revenue: revenue}
}

// Upsert godoc
// @Summary      Record daily revenue for a variant
// @Description  Idempotent per variant and day; a repeated call overwrites the amount.
// @Tags         revenue
// @Param        body body dto.UpsertRevenueRequest true "Revenue row"
// @Success      200 {object} map[string]bool
// @Router       /v1/revenue [post]
func (h *RevenueHandler) Upsert(c *gin.Context) {
	var req dto.UpsertRevenueRequest
	if !bindAndValidate(c, &req) {
		return
	}

	variantID, err := uuid.Parse(req.VariantID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid variant ID"))
		return
	}
	day, err := time.Parse("2006-01-02", req.Day)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid day, expected YYYY-MM-DD"))
		return
	}
	if req.Amount.IsNegative() {
		c.JSON(http.StatusBadRequest, apierror.New("Amount must not be negative"))
		return
	}

	row := &model.DailyRevenue{
		VariantID: variantID,
		Day:       day,
		Amount:    req.Amount,
	}
	if err := h.revenue.Upsert(c.Request.Context(), row); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
