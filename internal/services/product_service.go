// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/horizonglow/marketplace-backend/internal/models"
	"github.com/horizonglow/marketplace-backend/internal/utils"
)

type ProductService struct {
	db            *gorm.DB
	files         *ProductFileService
	sellers       *SellerService
	supportPeriod time.Duration
}

type CreateProductRequest struct {
	CategoryID  uint      `json:"category_id" validate:"required"`
	Description string    `json:"description" validate:"required,max=400"`
	Number      string    `json:"number" validate:"omitempty,max=4,product_number"`
	Score       string    `json:"score" validate:"omitempty,max=2,product_score"`
	Price       float64   `json:"price" validate:"required,gte=0.1,lte=1000"`
	ProducedAt  time.Time `json:"produced_at" validate:"required"`
}

// ProductSupportInfo is the data shape handed to the support-ticket bot when
// a buyer presents a support code.
type ProductSupportInfo struct {
	ID                     uint            `json:"id"`
	Description            string          `json:"description"`
	Category               uint            `json:"category"`
	Number                 string          `json:"number"`
	Score                  string          `json:"score"`
	ProducedAt             time.Time       `json:"producedAt"`
	Price                  decimal.Decimal `json:"price"`
	SupportCode            string          `json:"supportCode"`
	IsSupportPeriodExpired bool            `json:"isSupportPeriodExpired"`
	PurchasedAt            *time.Time      `json:"purchasedAt"`
	PurchasedBy            *uuid.UUID      `json:"purchasedBy"`
}

func NewProductService(db *gorm.DB, files *ProductFileService, sellers *SellerService, supportPeriod time.Duration) *ProductService {
	return &ProductService{
		db:            db,
		files:         files,
		sellers:       sellers,
		supportPeriod: supportPeriod,
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, sellerID uuid.UUID, req *CreateProductRequest) (*models.Product, error) {
	req.Number = strings.ToLower(req.Number)
	req.Score = strings.ToUpper(req.Score)

	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("category not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// The seller ledger must exist before the first sale can credit it.
	if _, err := s.sellers.GetOrCreate(ctx, sellerID); err != nil {
		return nil, err
	}

	supportCode, err := utils.GenerateSupportCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate support code: %w", err)
	}

	product := &models.Product{
		SellerID:    sellerID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Number:      req.Number,
		Score:       req.Score,
		Price:       decimal.NewFromFloat(req.Price).Round(2),
		SupportCode: supportCode,
		ProducedAt:  req.ProducedAt,
	}

	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_seller = false", sellerID).
		Update("is_seller", true).Error; err != nil {
		return nil, fmt.Errorf("failed to flag seller: %w", err)
	}

	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Preload("Category").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

// ListAvailable returns unsold products that have a file reference,
// optionally filtered by category. Blob presence is re-verified at purchase
// and download time, not per listing row.
func (s *ProductService) ListAvailable(ctx context.Context, categoryID *uint, params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{}).Preload("Category").
		Where("purchased_by_id IS NULL AND file_name <> ''")

	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"added_at", "price", "produced_at"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, total, nil
}

// DeleteProduct removes an unsold product and force-deletes its file. The
// file bypasses the usual delete-permission gate because the product itself
// is being destroyed.
func (s *ProductService) DeleteProduct(ctx context.Context, product *models.Product) error {
	if product.IsPurchased() {
		return ErrAlreadyBought
	}

	if err := s.files.UpdateFile(ctx, product, nil, UpdateFileOptions{
		AllowDelete:      true,
		BypassValidation: true,
		Commit:           true,
	}); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&models.Product{}, product.ID).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// SupportInfo resolves a buyer's support code to the purchased product it
// belongs to. Support codes are not unique; the most recent purchase wins.
func (s *ProductService) SupportInfo(ctx context.Context, supportCode string) (*ProductSupportInfo, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).
		Where("support_code = ?", supportCode).
		Order("purchased_at DESC NULLS LAST").
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	expired := false
	if product.PurchasedAt != nil {
		expired = time.Since(*product.PurchasedAt) > s.supportPeriod
	}

	return &ProductSupportInfo{
		ID:                     product.ID,
		Description:            product.Description,
		Category:               product.CategoryID,
		Number:                 product.Number,
		Score:                  product.Score,
		ProducedAt:             product.ProducedAt,
		Price:                  product.Price,
		SupportCode:            product.SupportCode,
		IsSupportPeriodExpired: expired,
		PurchasedAt:            product.PurchasedAt,
		PurchasedBy:            product.PurchasedByID,
	}, nil
}

// CategoryListing is a category with its current available-product count.
type CategoryListing struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// ListCategories returns only categories that currently have available
// products, with their counts.
func (s *ProductService) ListCategories(ctx context.Context) ([]CategoryListing, error) {
	var listings []CategoryListing
	err := s.db.WithContext(ctx).Model(&models.Category{}).
		Select("categories.id, categories.name, COUNT(products.id) AS count").
		Joins("JOIN products ON products.category_id = categories.id").
		Where("products.purchased_by_id IS NULL AND products.file_name <> ''").
		Group("categories.id, categories.name").
		Scan(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return listings, nil
}
