// internal/models/user.go
package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string          `json:"username" gorm:"uniqueIndex;size:50;not null"`
	PasswordHash string          `json:"-" gorm:"size:255;not null"`
	SecretPhrase string          `json:"-" gorm:"size:128"`
	Balance      decimal.Decimal `json:"balance" gorm:"type:decimal(10,2);not null;default:0"`
	IsSeller     bool            `json:"is_seller" gorm:"default:false"`
	IsAdmin      bool            `json:"is_admin" gorm:"default:false"`

	// Relationships
	Seller            *Seller   `json:"seller,omitempty" gorm:"foreignKey:UserID"`
	SellingProducts   []Product `json:"selling_products,omitempty" gorm:"foreignKey:SellerID"`
	PurchasedProducts []Product `json:"purchased_products,omitempty" gorm:"foreignKey:PurchasedByID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// CheckSecretPhrase compares the stored second-factor phrase with the one
// supplied at login. An account without a phrase accepts any input; an
// account with one requires a case-insensitive match.
func (u *User) CheckSecretPhrase(phrase string) bool {
	if u.SecretPhrase == "" {
		return true
	}
	if phrase == "" {
		return false
	}
	return strings.EqualFold(u.SecretPhrase, phrase)
}

// Seller is the one-to-one payout ledger of a selling user. Percent is the
// share kept by the platform; the seller retains 100-percent of each sale.
type Seller struct {
	UserID      uuid.UUID       `json:"user_id" gorm:"type:uuid;primary_key"`
	Percent     decimal.Decimal `json:"percent" gorm:"type:decimal(5,2);not null;default:0"`
	TotalEarned decimal.Decimal `json:"total_earned" gorm:"type:decimal(10,2);not null;default:0"`
	ToPay       decimal.Decimal `json:"to_pay" gorm:"type:decimal(10,2);not null;default:0"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
