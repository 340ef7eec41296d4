// internal/models/common.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model for UUID-keyed entities
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// Enums
type TopupStatus string

const (
	TopupStatusWaiting       TopupStatus = "waiting"
	TopupStatusConfirming    TopupStatus = "confirming"
	TopupStatusPartiallyPaid TopupStatus = "partially_paid"
	TopupStatusFinished      TopupStatus = "finished"
	TopupStatusFailed        TopupStatus = "failed"
	TopupStatusExpired       TopupStatus = "expired"
)

// IsTerminalPaid reports whether a gateway status means funds were actually
// received and a balance credit may be applied for the callback.
func (s TopupStatus) IsTerminalPaid() bool {
	return s == TopupStatusFinished || s == TopupStatusPartiallyPaid
}
