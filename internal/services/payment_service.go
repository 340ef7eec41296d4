// internal/services/payment_service.go
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/horizonglow/marketplace-backend/internal/config"
	"github.com/horizonglow/marketplace-backend/internal/models"
	"github.com/horizonglow/marketplace-backend/internal/payments"
)

// PaymentService reconciles balance top-ups with the external crypto payment
// gateway: it requests invoices and credits verified callbacks exactly once.
type PaymentService struct {
	db      *gorm.DB
	gateway *payments.Client
	cfg     config.PaymentConfig
	baseURL string
}

func NewPaymentService(db *gorm.DB, gateway *payments.Client, cfg config.PaymentConfig, baseURL string) *PaymentService {
	return &PaymentService{
		db:      db,
		gateway: gateway,
		cfg:     cfg,
		baseURL: baseURL,
	}
}

func (s *PaymentService) MinAmount() float64 {
	return s.cfg.MinAmount
}

// RequestTopup creates a gateway invoice for the user and returns its hosted
// payment URL. The gateway call runs outside any database transaction; a
// timeout or gateway error surfaces as ErrPaymentServiceInteraction.
func (s *PaymentService) RequestTopup(ctx context.Context, user *models.User, amount float64) (string, error) {
	if amount < s.cfg.MinAmount {
		return "", ErrInvalidAmount
	}

	invoice, err := s.gateway.CreateInvoice(ctx, payments.InvoiceRequest{
		PriceAmount:    amount,
		PriceCurrency:  "usd",
		IPNCallbackURL: s.baseURL + "/v1/payments/ipn",
		OrderID:        user.ID.String(),
		SuccessURL:     s.baseURL + "/topup/success",
		CancelURL:      s.baseURL + "/topup/fail",
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to create top-up invoice")
		return "", fmt.Errorf("%w: %v", ErrPaymentServiceInteraction, err)
	}

	record := &models.TopupInvoice{
		UserID:         user.ID,
		InvoiceID:      invoice.ID.String(),
		Amount:         decimal.NewFromFloat(amount).Round(2),
		CreditedAmount: decimal.Zero,
		Status:         models.TopupStatusWaiting,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return "", fmt.Errorf("failed to record top-up invoice: %w", err)
	}

	return invoice.InvoiceURL, nil
}

// UpdateTopupStatus applies a verified gateway callback. Non-terminal states
// only update the invoice record. Terminal paid states credit the user with
// the USD value actually received, proportional to the invoiced pay-currency
// amount: price * paid / pay. Credits are keyed by invoice: each callback
// applies only the delta over what this invoice already credited, so a
// finished callback after a partial one adds exactly the remainder and a
// replay adds nothing. Runs serializable; conflicts surface as
// ErrTransactionConflict for the caller to retry.
func (s *PaymentService) UpdateTopupStatus(ctx context.Context, ipn *payments.IPNPayload) error {
	status := models.TopupStatus(ipn.PaymentStatus)

	userID, err := uuid.Parse(ipn.OrderID)
	if err != nil {
		return ErrInvalidOrderID
	}

	if !status.IsTerminalPaid() {
		return s.recordStatus(ctx, userID, ipn, status)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidOrderID
			}
			return fmt.Errorf("database error: %w", err)
		}

		invoice, err := s.loadOrCreateInvoice(tx, userID, ipn)
		if err != nil {
			return err
		}

		due := cumulativeCredit(ipn)
		delta := due.Sub(invoice.CreditedAmount)
		if delta.IsPositive() {
			user.Balance = user.Balance.Add(delta)
			if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
				Update("balance", user.Balance).Error; err != nil {
				return fmt.Errorf("failed to credit balance: %w", err)
			}
		}

		if err := tx.Model(&models.TopupInvoice{}).Where("id = ?", invoice.ID).
			Updates(map[string]interface{}{
				"credited_amount": invoice.CreditedAmount.Add(decimal.Max(delta, decimal.Zero)),
				"status":          status,
			}).Error; err != nil {
			return fmt.Errorf("failed to update top-up invoice: %w", err)
		}

		logrus.WithFields(logrus.Fields{
			"user_id":    user.ID,
			"invoice_id": invoice.InvoiceID,
			"credited":   delta,
			"balance":    user.Balance,
		}).Info("Applied top-up credit")
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})

	if err != nil {
		if isSerializationFailure(err) {
			return ErrTransactionConflict
		}
		return err
	}
	return nil
}

// cumulativeCredit is the USD value the invoice has earned so far:
// price_amount * actually_paid / pay_amount, rounded to cents.
func cumulativeCredit(ipn *payments.IPNPayload) decimal.Decimal {
	if ipn.PayAmount <= 0 {
		return decimal.Zero
	}
	price := decimal.NewFromFloat(ipn.PriceAmount)
	paid := decimal.NewFromFloat(ipn.ActuallyPaid)
	pay := decimal.NewFromFloat(ipn.PayAmount)
	return price.Mul(paid).Div(pay).Round(2)
}

func (s *PaymentService) recordStatus(ctx context.Context, userID uuid.UUID, ipn *payments.IPNPayload, status models.TopupStatus) error {
	result := s.db.WithContext(ctx).Model(&models.TopupInvoice{}).
		Where("invoice_id = ? AND user_id = ?", ipn.InvoiceID.String(), userID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update top-up status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvalidOrderID
	}
	return nil
}

// loadOrCreateInvoice fetches the idempotency record for the invoice,
// creating it if the request-time insert never landed. The callback has
// already passed signature verification, so a missing record means lost
// local state, not a forged invoice.
func (s *PaymentService) loadOrCreateInvoice(tx *gorm.DB, userID uuid.UUID, ipn *payments.IPNPayload) (*models.TopupInvoice, error) {
	var invoice models.TopupInvoice
	err := tx.First(&invoice, "invoice_id = ?", ipn.InvoiceID.String()).Error
	if err == nil {
		if invoice.UserID != userID {
			return nil, ErrInvalidOrderID
		}
		return &invoice, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	invoice = models.TopupInvoice{
		UserID:         userID,
		InvoiceID:      ipn.InvoiceID.String(),
		Amount:         decimal.NewFromFloat(ipn.PriceAmount).Round(2),
		CreditedAmount: decimal.Zero,
		Status:         models.TopupStatusWaiting,
	}
	if err := tx.Create(&invoice).Error; err != nil {
		return nil, fmt.Errorf("failed to create top-up invoice record: %w", err)
	}
	return &invoice, nil
}
