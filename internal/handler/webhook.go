package handler

import (
	"encoding/json"
	"net/http"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/apierror"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/dto"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// WebhookHandler receives product-update notifications from the commerce
// platform. The raw body is kept for the idempotency ledger's payload hash,
// so binding happens by hand instead of through ShouldBindJSON.
type WebhookHandler struct {
	webhooks service.WebhookService
}

func NewWebhookHandler(webhooks service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks}
}

// ProductUpdate godoc
// @Summary      Product update webhook
// @Description  Resets the evaluation clock of manually edited variants. Duplicate deliveries are acknowledged without reprocessing.
// @Tags         webhooks
// @Param        body body dto.ProductUpdateEvent true "Event payload"
// @Success      200 {object} map[string]bool
// @Failure      400 {object} apierror.APIError
// @Router       /v1/webhooks/products/update [post]
func (h *WebhookHandler) ProductUpdate(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Unable to read request body"))
		return
	}

	var evt dto.ProductUpdateEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return
	}
	if err := validate.Struct(&evt); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return
	}

	if err := h.webhooks.ProcessProductUpdate(c.Request.Context(), evt, raw); err != nil {
		respondServiceError(c, err)
		return
	}
	// Duplicates and unknown products both land here: the platform only needs
	// an acknowledgement to stop redelivering.
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
