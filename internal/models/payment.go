// internal/models/payment.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TopupInvoice tracks one gateway invoice per top-up request. CreditedAmount
// is the cumulative USD already applied to the user's balance for this
// invoice, so replayed or follow-up callbacks only ever credit the delta.
type TopupInvoice struct {
	BaseModel
	UserID         uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	InvoiceID      string          `json:"invoice_id" gorm:"size:64;uniqueIndex"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	CreditedAmount decimal.Decimal `json:"credited_amount" gorm:"type:decimal(10,2);not null;default:0"`
	Status         TopupStatus     `json:"status" gorm:"type:varchar(20);default:'waiting';index"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
