// internal/services/seller_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/horizonglow/marketplace-backend/internal/models"
)

var oneHundred = decimal.NewFromInt(100)

// SellerService owns the seller economy ledger: payout share computation and
// the earned/owed totals accumulated on each purchase.
type SellerService struct {
	db *gorm.DB
}

func NewSellerService(db *gorm.DB) *SellerService {
	return &SellerService{db: db}
}

// Earn is the seller's share of a sale: price * (100 - percent) / 100.
// Returned unrounded; rounding to cents happens when the ledger is updated.
func Earn(seller *models.Seller, product *models.Product) decimal.Decimal {
	return product.Price.Mul(oneHundred.Sub(seller.Percent)).Div(oneHundred)
}

// AlreadyPaid is the amount the platform has paid out to the seller so far.
func AlreadyPaid(seller *models.Seller) decimal.Decimal {
	return seller.TotalEarned.Sub(seller.ToPay)
}

// OnProductPurchased credits the seller ledger for a completed sale. Both
// totals move together; ToPay is only ever decreased by the external payout
// process. Runs on the caller's transaction handle so the credit commits
// with the rest of the purchase.
func (s *SellerService) OnProductPurchased(tx *gorm.DB, seller *models.Seller, product *models.Product) error {
	earn := Earn(seller, product).Round(2)

	seller.TotalEarned = seller.TotalEarned.Add(earn)
	seller.ToPay = seller.ToPay.Add(earn)

	if err := tx.Model(&models.Seller{}).Where("user_id = ?", seller.UserID).
		Updates(map[string]interface{}{
			"total_earned": seller.TotalEarned,
			"to_pay":       seller.ToPay,
		}).Error; err != nil {
		return fmt.Errorf("failed to credit seller ledger: %w", err)
	}
	return nil
}

// GetOrCreate returns the user's seller record, creating it with the default
// percent from the content store on first use.
func (s *SellerService) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Seller, error) {
	var seller models.Seller
	err := s.db.WithContext(ctx).First(&seller, "user_id = ?", userID).Error
	if err == nil {
		return &seller, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	percent, err := s.defaultPercent(ctx)
	if err != nil {
		return nil, err
	}

	seller = models.Seller{
		UserID:      userID,
		Percent:     percent,
		TotalEarned: decimal.Zero,
		ToPay:       decimal.Zero,
	}
	if err := s.db.WithContext(ctx).Create(&seller).Error; err != nil {
		return nil, fmt.Errorf("failed to create seller: %w", err)
	}
	return &seller, nil
}

func (s *SellerService) defaultPercent(ctx context.Context) (decimal.Decimal, error) {
	var entry models.ContentEntry
	if err := s.db.WithContext(ctx).
		First(&entry, "key = ?", models.ContentKeySellerPercentDefault).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to load default seller percent: %w", err)
	}

	percent, err := decimal.NewFromString(entry.Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid default seller percent %q: %w", entry.Value, err)
	}
	return percent, nil
}

// TotalOnSale sums the prices of the seller's currently unsold products.
func (s *SellerService) TotalOnSale(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("seller_id = ? AND purchased_by_id IS NULL", sellerID).
		Select("SUM(price)").Scan(&total).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum products on sale: %w", err)
	}

	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
