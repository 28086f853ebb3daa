package infra

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ── Per-store push queue ──────────────────────────────────────────────────────
// The commerce platform enforces a request-rate ceiling per shop, so every
// outbound price push — regardless of whether it originates from the periodic
// run, an operator toggle, or an undo — is funneled through one serialized
// lane per store with a minimum interval between dispatches.

// PushQueue serializes external price mutations per store.
type PushQueue struct {
	minInterval time.Duration

	mu    sync.Mutex
	lanes map[uuid.UUID]*pushLane
}

// pushLane is the serialization point for one store. Holding lane.mu while
// dispatching guarantees at most one in-flight call per store.
type pushLane struct {
	mu           sync.Mutex
	lastDispatch time.Time
}

func NewPushQueue(minInterval time.Duration) *PushQueue {
	if minInterval <= 0 {
		minInterval = 500 * time.Millisecond
	}
	return &PushQueue{
		minInterval: minInterval,
		lanes:       make(map[uuid.UUID]*pushLane),
	}
}

func (q *PushQueue) lane(storeID uuid.UUID) *pushLane {
	q.mu.Lock()
	defer q.mu.Unlock()
	l, ok := q.lanes[storeID]
	if !ok {
		l = &pushLane{}
		q.lanes[storeID] = l
	}
	return l
}

// Do runs fn on the store's lane, waiting out the minimum interval since the
// previous dispatch. Returns ctx.Err() if the context expires while queued.
func (q *PushQueue) Do(ctx context.Context, storeID uuid.UUID, fn func() error) error {
	l := q.lane(storeID)

	l.mu.Lock()
	defer l.mu.Unlock()

	if wait := q.minInterval - time.Since(l.lastDispatch); wait > 0 {
		log.Debug().
			Str("store_id", storeID.String()).
			Dur("wait", wait).
			Msg("push queue: throttling dispatch")
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	l.lastDispatch = time.Now()
	return fn()
}
