package model

import (
	"time"

	"github.com/google/uuid"
)

// ProcessedEventRecord is the webhook idempotency ledger. The composite
// unique index on (event_id, store_id) makes duplicate inserts fail at the
// database, which is what turns a replayed delivery into a no-op.
type ProcessedEventRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventID     string    `gorm:"uniqueIndex:idx_event_store;not null"`
	StoreID     uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_event_store;not null"`
	Topic       string    `gorm:"not null"`
	PayloadHash string    `gorm:"not null"`
	ProcessedAt time.Time `gorm:"not null"`
}
