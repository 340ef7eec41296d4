// internal/models/content.go
package models

// ContentEntry is a key-value lookup for operator-tunable values such as the
// default seller percent.
type ContentEntry struct {
	Key   string `json:"key" gorm:"primaryKey;size:64"`
	Value string `json:"value" gorm:"size:400;not null"`
}

const (
	ContentKeySellerPercentDefault = "seller_percent_default"
)
