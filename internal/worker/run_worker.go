package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/service"

	"github.com/rs/zerolog/log"
)

// RunWorker executes queued pricing runs. The run itself owns error
// isolation and audit recording; the worker only decodes and dispatches.
type RunWorker struct {
	runs service.RunService
}

func NewRunWorker(runs service.RunService) *RunWorker {
	return &RunWorker{runs: runs}
}

func (w *RunWorker) Handle(ctx context.Context, payload json.RawMessage) error {
	var job RunJobPayload
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("decode pricing_run payload: %w", err)
	}

	record, err := w.runs.ExecuteRun(ctx, job.StoreID)
	if err != nil {
		return fmt.Errorf("execute run for store %s: %w", job.StoreID, err)
	}

	if len(record.Errors) > 0 {
		log.Warn().
			Str("store_id", job.StoreID.String()).
			Int("error_count", len(record.Errors)).
			Msg("pricing run finished with per-variant errors")
	}
	return nil
}
