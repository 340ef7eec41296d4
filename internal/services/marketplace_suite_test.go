// internal/services/marketplace_suite_test.go
package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/horizonglow/marketplace-backend/internal/config"
	"github.com/horizonglow/marketplace-backend/internal/database"
	"github.com/horizonglow/marketplace-backend/internal/models"
	"github.com/horizonglow/marketplace-backend/internal/payments"
	"github.com/horizonglow/marketplace-backend/internal/storage"
)

// MarketplaceSuite runs the purchase, top-up and retention flows against a
// real Postgres instance. Set TEST_DATABASE_URL to run it.
type MarketplaceSuite struct {
	suite.Suite
	db        *gorm.DB
	backend   storage.Backend
	files     *ProductFileService
	sellers   *SellerService
	purchases *PurchaseService
	paymentsS *PaymentService
	category  models.Category
}

func TestMarketplaceSuite(t *testing.T) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	suite.Run(t, new(MarketplaceSuite))
}

func (s *MarketplaceSuite) SetupSuite() {
	db, err := gorm.Open(postgres.Open(os.Getenv("TEST_DATABASE_URL")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	s.Require().NoError(database.RunMigrations(db))
	s.Require().NoError(database.SeedInitialData(db))
	s.db = db
}

func (s *MarketplaceSuite) SetupTest() {
	for _, table := range []string{"topup_invoices", "products", "sellers", "categories", "users"} {
		s.Require().NoError(s.db.Exec("DELETE FROM " + table).Error)
	}

	backend, err := storage.NewLocalBackend(s.T().TempDir())
	s.Require().NoError(err)

	s.backend = backend
	s.files = NewProductFileService(s.db, backend)
	s.sellers = NewSellerService(s.db)
	s.purchases = NewPurchaseService(s.db, s.files, s.sellers)
	s.paymentsS = NewPaymentService(s.db, nil, config.PaymentConfig{MinAmount: 10}, "http://localhost:8080")

	s.category = models.Category{Name: "Books"}
	s.Require().NoError(s.db.Create(&s.category).Error)
}

func (s *MarketplaceSuite) createUser(balance string) *models.User {
	user := &models.User{
		Username: "u_" + uuid.NewString()[:8],
		Balance:  dec(balance),
	}
	s.Require().NoError(user.SetPassword("testpass123"))
	s.Require().NoError(s.db.Create(user).Error)
	return user
}

func (s *MarketplaceSuite) createProduct(seller *models.User, price string, withFile bool) *models.Product {
	_, err := s.sellers.GetOrCreate(context.Background(), seller.ID)
	s.Require().NoError(err)

	product := &models.Product{
		SellerID:    seller.ID,
		CategoryID:  s.category.ID,
		Description: "test product",
		Price:       dec(price),
		SupportCode: "AB23",
		ProducedAt:  time.Now(),
	}
	s.Require().NoError(s.db.Create(product).Error)

	if withFile {
		err := s.files.UpdateFile(context.Background(), product, &FileUpload{
			Name:    "archive.zip",
			Size:    4,
			Content: strings.NewReader("data"),
		}, UpdateFileOptions{Commit: true})
		s.Require().NoError(err)
	}
	return product
}

func (s *MarketplaceSuite) TestBuyHappyPath() {
	ctx := context.Background()
	seller := s.createUser("0")
	buyer := s.createUser("50")
	product := s.createProduct(seller, "19.99", true)

	s.Require().NoError(s.purchases.Buy(ctx, product.ID, buyer.ID))

	var got models.Product
	s.Require().NoError(s.db.First(&got, product.ID).Error)
	s.Require().NotNil(got.PurchasedByID)
	s.Equal(buyer.ID, *got.PurchasedByID)
	s.NotNil(got.PurchasedAt)

	var gotBuyer models.User
	s.Require().NoError(s.db.First(&gotBuyer, "id = ?", buyer.ID).Error)
	s.True(dec("30.01").Equal(gotBuyer.Balance), "balance %s", gotBuyer.Balance)

	// Default platform cut is 30 percent: 19.99 * 0.7 rounds to 13.99.
	var ledger models.Seller
	s.Require().NoError(s.db.First(&ledger, "user_id = ?", seller.ID).Error)
	s.True(dec("13.99").Equal(ledger.TotalEarned), "earned %s", ledger.TotalEarned)
	s.True(dec("13.99").Equal(ledger.ToPay))
}

func (s *MarketplaceSuite) TestBuyEligibility() {
	ctx := context.Background()
	seller := s.createUser("100")
	buyer := s.createUser("5")

	noFile := s.createProduct(seller, "10", false)
	s.ErrorIs(s.purchases.Buy(ctx, noFile.ID, buyer.ID), ErrNoFile)

	product := s.createProduct(seller, "10", true)
	s.ErrorIs(s.purchases.Buy(ctx, product.ID, seller.ID), ErrBuyingBySeller)
	s.ErrorIs(s.purchases.Buy(ctx, product.ID, buyer.ID), ErrInsufficientBalance)

	rich := s.createUser("100")
	s.Require().NoError(s.purchases.Buy(ctx, product.ID, rich.ID))
	s.ErrorIs(s.purchases.Buy(ctx, product.ID, rich.ID), ErrAlreadyBought)

	s.ErrorIs(s.purchases.Buy(ctx, 999999, buyer.ID), ErrProductNotFound)
}

// Two buyers race for one product: exactly one purchase commits, the loser
// sees either the already-bought answer or a retryable conflict, and only the
// winner's balance moves.
func (s *MarketplaceSuite) TestConcurrentBuySingleWinner() {
	ctx := context.Background()
	seller := s.createUser("0")
	first := s.createUser("100")
	second := s.createUser("100")
	product := s.createProduct(seller, "10", true)

	results := make(chan error, 2)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for _, buyer := range []*models.User{first, second} {
		wg.Add(1)
		go func(buyerID uuid.UUID) {
			defer wg.Done()
			<-start
			results <- s.purchases.Buy(ctx, product.ID, buyerID)
		}(buyer.ID)
	}
	close(start)
	wg.Wait()
	close(results)

	won, lost := 0, 0
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrAlreadyBought) || errors.Is(err, ErrTransactionConflict):
			lost++
		default:
			s.FailNowf("unexpected purchase error", "%v", err)
		}
	}
	s.Equal(1, won)
	s.Equal(1, lost)

	var got models.Product
	s.Require().NoError(s.db.First(&got, product.ID).Error)
	s.Require().NotNil(got.PurchasedByID)
	winnerID := *got.PurchasedByID

	// Only the winner is debited, and only once.
	for _, buyer := range []*models.User{first, second} {
		var reloaded models.User
		s.Require().NoError(s.db.First(&reloaded, "id = ?", buyer.ID).Error)
		if buyer.ID == winnerID {
			s.True(dec("90").Equal(reloaded.Balance), "winner balance %s", reloaded.Balance)
		} else {
			s.True(dec("100").Equal(reloaded.Balance), "loser balance %s", reloaded.Balance)
		}
	}

	// The seller ledger is credited for exactly one sale.
	var ledger models.Seller
	s.Require().NoError(s.db.First(&ledger, "user_id = ?", seller.ID).Error)
	s.True(dec("7").Equal(ledger.TotalEarned), "earned %s", ledger.TotalEarned)
}

func (s *MarketplaceSuite) TestBuyDanglingFileReference() {
	ctx := context.Background()
	seller := s.createUser("0")
	buyer := s.createUser("100")
	product := s.createProduct(seller, "10", true)

	// Reference present, blob gone: the product must not sell.
	s.Require().NoError(s.backend.Delete(ctx, product.FileName))
	s.ErrorIs(s.purchases.Buy(ctx, product.ID, buyer.ID), ErrNoFile)
}

func (s *MarketplaceSuite) TestFileReplaceDropsStaleObject() {
	ctx := context.Background()
	seller := s.createUser("0")
	product := s.createProduct(seller, "10", true)
	oldName := product.FileName

	err := s.files.UpdateFile(ctx, product, &FileUpload{
		Name:    "revised.zip",
		Size:    7,
		Content: strings.NewReader("revised"),
	}, UpdateFileOptions{Commit: true})
	s.Require().NoError(err)

	exists, err := s.backend.Exists(ctx, oldName)
	s.Require().NoError(err)
	s.False(exists)

	opened, err := s.files.Open(ctx, product)
	s.Require().NoError(err)
	defer opened.Content.Close()
	s.Equal("revised.zip", opened.Name)
}

func (s *MarketplaceSuite) TestRetentionPrune() {
	ctx := context.Background()
	seller := s.createUser("0")
	buyer := s.createUser("100")

	oldSale := s.createProduct(seller, "10", true)
	recentSale := s.createProduct(seller, "10", true)
	unsold := s.createProduct(seller, "10", true)

	s.Require().NoError(s.purchases.Buy(ctx, oldSale.ID, buyer.ID))
	s.Require().NoError(s.purchases.Buy(ctx, recentSale.ID, buyer.ID))

	longAgo := time.Now().Add(-100 * time.Hour)
	s.Require().NoError(s.db.Model(&models.Product{}).Where("id = ?", oldSale.ID).
		Update("purchased_at", longAgo).Error)

	retention := NewRetentionService(s.db, s.files, 72*time.Hour)
	deleted, err := retention.PruneOutdatedFiles(ctx)
	s.Require().NoError(err)
	s.Equal([]string{oldSale.FileName}, deleted)

	var got models.Product
	s.Require().NoError(s.db.First(&got, oldSale.ID).Error)
	s.False(got.HasFileReference())
	s.NotNil(got.PurchasedAt)

	exists, err := s.backend.Exists(ctx, unsold.FileName)
	s.Require().NoError(err)
	s.True(exists)

	// Second sweep finds nothing left to prune.
	deleted, err = retention.PruneOutdatedFiles(ctx)
	s.Require().NoError(err)
	s.Empty(deleted)
}

func (s *MarketplaceSuite) TestTopupCredit() {
	ctx := context.Background()
	user := s.createUser("0")

	partial := &payments.IPNPayload{
		InvoiceID:     "5001",
		OrderID:       user.ID.String(),
		PaymentStatus: string(models.TopupStatusPartiallyPaid),
		ActuallyPaid:  50,
		PayAmount:     100,
		PriceAmount:   200,
	}
	s.Require().NoError(s.paymentsS.UpdateTopupStatus(ctx, partial))

	var got models.User
	s.Require().NoError(s.db.First(&got, "id = ?", user.ID).Error)
	s.True(dec("100").Equal(got.Balance), "balance %s", got.Balance)

	finished := &payments.IPNPayload{
		InvoiceID:     "5001",
		OrderID:       user.ID.String(),
		PaymentStatus: string(models.TopupStatusFinished),
		ActuallyPaid:  100,
		PayAmount:     100,
		PriceAmount:   200,
	}
	s.Require().NoError(s.paymentsS.UpdateTopupStatus(ctx, finished))

	s.Require().NoError(s.db.First(&got, "id = ?", user.ID).Error)
	s.True(dec("200").Equal(got.Balance), "balance %s", got.Balance)

	// A replayed callback credits nothing further.
	s.Require().NoError(s.paymentsS.UpdateTopupStatus(ctx, finished))
	s.Require().NoError(s.db.First(&got, "id = ?", user.ID).Error)
	s.True(dec("200").Equal(got.Balance), "balance %s", got.Balance)

	var invoice models.TopupInvoice
	s.Require().NoError(s.db.First(&invoice, "invoice_id = ?", "5001").Error)
	s.True(dec("200").Equal(invoice.CreditedAmount))
	s.Equal(models.TopupStatusFinished, invoice.Status)
}

func (s *MarketplaceSuite) TestTopupRejectsForeignOrder() {
	ctx := context.Background()
	owner := s.createUser("0")
	other := s.createUser("0")

	first := &payments.IPNPayload{
		InvoiceID:     "5002",
		OrderID:       owner.ID.String(),
		PaymentStatus: string(models.TopupStatusFinished),
		ActuallyPaid:  10,
		PayAmount:     10,
		PriceAmount:   25,
	}
	s.Require().NoError(s.paymentsS.UpdateTopupStatus(ctx, first))

	// Same invoice re-announced under another user's order id.
	hijack := &payments.IPNPayload{
		InvoiceID:     "5002",
		OrderID:       other.ID.String(),
		PaymentStatus: string(models.TopupStatusFinished),
		ActuallyPaid:  10,
		PayAmount:     10,
		PriceAmount:   25,
	}
	s.ErrorIs(s.paymentsS.UpdateTopupStatus(ctx, hijack), ErrInvalidOrderID)

	s.ErrorIs(s.paymentsS.UpdateTopupStatus(ctx, &payments.IPNPayload{
		InvoiceID:     "5003",
		OrderID:       "not-a-uuid",
		PaymentStatus: string(models.TopupStatusFinished),
	}), ErrInvalidOrderID)
}
