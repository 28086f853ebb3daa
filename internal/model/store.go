package model

import (
	"time"

	"github.com/google/uuid"
)

// Store is the local mirror of a connected commerce shop. The admin token is
// provisioned by the OAuth flow, which lives outside this service.
type Store struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShopDomain  string    `gorm:"uniqueIndex;not null"`
	AccessToken string    `gorm:"not null"`
	Active      bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
