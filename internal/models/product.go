// internal/models/product.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:50;not null"`

	Products []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

// Product is a single sellable item. IDs are sequential integers because the
// storage name of the attached file is prefixed with them.
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	SellerID    uuid.UUID       `json:"seller_id" gorm:"type:uuid;not null;index"`
	CategoryID  uint            `json:"category_id" gorm:"not null;index"`
	Description string          `json:"description" gorm:"size:400;not null"`
	Number      string          `json:"number" gorm:"size:8"`
	Score       string          `json:"score" gorm:"size:2"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	SupportCode string          `json:"support_code" gorm:"size:4;index"`
	FileName    string          `json:"-" gorm:"size:255"`
	ProducedAt  time.Time       `json:"produced_at"`
	AddedAt     time.Time       `json:"added_at" gorm:"autoCreateTime"`
	PurchasedAt *time.Time      `json:"purchased_at"`

	// Invariant: PurchasedByID is set iff PurchasedAt is set.
	PurchasedByID *uuid.UUID `json:"purchased_by" gorm:"type:uuid;index"`

	Seller      User     `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Category    Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	PurchasedBy *User    `json:"-" gorm:"foreignKey:PurchasedByID"`
}

// IsPurchased reports whether the product has been sold.
func (p *Product) IsPurchased() bool {
	return p.PurchasedByID != nil
}

// HasFileReference reports whether a stored file is recorded for the product.
// The blob itself may still be missing; callers that sell or serve the file
// must confirm presence through the file manager.
func (p *Product) HasFileReference() bool {
	return p.FileName != ""
}
