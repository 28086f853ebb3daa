package model

import (
	"time"

	"github.com/google/uuid"
)

// AlgorithmRunRecord is the audit record of one Run Coordinator pass over a
// store. Periodic runs are otherwise invisible to operators.
type AlgorithmRunRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Processed int       `gorm:"not null;default:0"`
	Increased int       `gorm:"not null;default:0"`
	Reverted  int       `gorm:"not null;default:0"`
	Waiting   int       `gorm:"not null;default:0"`
	Errors    []string  `gorm:"serializer:json"`
	CreatedAt time.Time
}
