// internal/services/purchase_service.go
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/horizonglow/marketplace-backend/internal/models"
)

// pgSerializationFailure is the SQLSTATE Postgres reports when serializable
// concurrency control aborts one of two conflicting transactions.
const pgSerializationFailure = "40001"

// PurchaseService executes the atomic buy: ownership transfer, buyer debit
// and seller ledger credit commit together or not at all.
type PurchaseService struct {
	db      *gorm.DB
	files   *ProductFileService
	sellers *SellerService
}

func NewPurchaseService(db *gorm.DB, files *ProductFileService, sellers *SellerService) *PurchaseService {
	return &PurchaseService{
		db:      db,
		files:   files,
		sellers: sellers,
	}
}

// Buy purchases the product for the buyer under a serializable transaction.
// Product and buyer are loaded fresh inside the transaction so the isolation
// level actually governs the reads. A concurrent conflicting purchase or
// top-up aborts with ErrTransactionConflict, which callers may retry.
func (s *PurchaseService) Buy(ctx context.Context, productID uint, buyerID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		var buyer models.User
		if err := tx.First(&buyer, "id = ?", buyerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := s.assertCanBuy(ctx, &product, &buyer); err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).
			Updates(map[string]interface{}{
				"purchased_by_id": buyerID,
				"purchased_at":    now,
			}).Error; err != nil {
			return fmt.Errorf("failed to mark product purchased: %w", err)
		}

		buyer.Balance = buyer.Balance.Sub(product.Price)
		if err := tx.Model(&models.User{}).Where("id = ?", buyerID).
			Update("balance", buyer.Balance).Error; err != nil {
			return fmt.Errorf("failed to debit buyer balance: %w", err)
		}

		var seller models.Seller
		if err := tx.First(&seller, "user_id = ?", product.SellerID).Error; err != nil {
			return fmt.Errorf("failed to load seller ledger: %w", err)
		}

		return s.sellers.OnProductPurchased(tx, &seller, &product)
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})

	if err != nil {
		if isSerializationFailure(err) {
			logrus.WithField("product_id", productID).
				Info("Purchase aborted by serialization conflict")
			return ErrTransactionConflict
		}
		return err
	}
	return nil
}

// assertCanBuy evaluates eligibility in a fixed order; the first failing
// check wins.
func (s *PurchaseService) assertCanBuy(ctx context.Context, product *models.Product, buyer *models.User) error {
	hasFile, err := s.files.HasFile(ctx, product)
	if err != nil {
		return err
	}
	if !hasFile {
		return ErrNoFile
	}

	if product.SellerID == buyer.ID {
		return ErrBuyingBySeller
	}

	if product.IsPurchased() {
		return ErrAlreadyBought
	}

	if buyer.Balance.LessThan(product.Price) {
		return ErrInsufficientBalance
	}

	return nil
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgSerializationFailure
}
