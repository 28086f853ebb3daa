package handler

import (
	"net/http"
	"strconv"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/apierror"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/dto"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/service"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RunsHandler triggers pricing runs and serves the run audit trail.
// Triggering enqueues a job; the worker pool executes it asynchronously.
type RunsHandler struct {
	runs       service.RunService
	dispatcher *worker.Dispatcher
}

func NewRunsHandler(runs service.RunService, dispatcher *worker.Dispatcher) *RunsHandler {
	return &RunsHandler{runs: runs, dispatcher: dispatcher}
}

// Trigger godoc
// @Summary      Trigger a pricing run
// @Description  Enqueues one evaluation pass over a store's enabled variants.
// @Tags         runs
// @Param        body body dto.TriggerRunRequest true "Store"
// @Success      202 {object} map[string]bool
// @Router       /v1/runs [post]
func (h *RunsHandler) Trigger(c *gin.Context) {
	var req dto.TriggerRunRequest
	if !bindAndValidate(c, &req) {
		return
	}
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid store ID"))
		return
	}
	if err := h.dispatcher.EnqueueRun(c.Request.Context(), storeID); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": true})
}

// ListByStore godoc
// @Summary      Run history of a store
// @Tags         runs
// @Param        id    path  string true  "Store UUID"
// @Param        page  query int    false "Page (default 1)"
// @Param        limit query int    false "Rows per page (default 50)"
// @Success      200 {object} dto.RunListResponse
// @Router       /v1/stores/{id}/runs [get]
func (h *RunsHandler) ListByStore(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid store ID"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	rows, total, err := h.runs.ListRuns(c.Request.Context(), id, page, limit)
	if err != nil {
		c.Error(err)
		return
	}

	data := make([]dto.RunRecordItem, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		errs := r.Errors
		if errs == nil {
			errs = []string{}
		}
		data = append(data, dto.RunRecordItem{
			ID:        r.ID.String(),
			StoreID:   r.StoreID.String(),
			Processed: r.Processed,
			Increased: r.Increased,
			Reverted:  r.Reverted,
			Waiting:   r.Waiting,
			Errors:    errs,
			CreatedAt: r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	c.JSON(http.StatusOK, dto.RunListResponse{
		Data:  data,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
