// internal/handlers/payment.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/horizonglow/marketplace-backend/internal/payments"
	"github.com/horizonglow/marketplace-backend/internal/services"
	"github.com/horizonglow/marketplace-backend/internal/utils"
)

const ipnSignatureHeader = "x-nowpayments-sig"

type PaymentHandler struct {
	paymentService *services.PaymentService
	authService    *services.AuthService
	ipnSecret      string
}

func NewPaymentHandler(paymentService *services.PaymentService, authService *services.AuthService, ipnSecret string) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		authService:    authService,
		ipnSecret:      ipnSecret,
	}
}

// GET /payments/info
func (h *PaymentHandler) GetPaymentInfo(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"min_amount": h.paymentService.MinAmount(),
	})
}

type TopupRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// POST /payments/topup
func (h *PaymentHandler) RequestTopup(c *gin.Context) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req TopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userIDStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	url, err := h.paymentService.RequestTopup(c.Request.Context(), user, req.Amount)
	switch {
	case err == nil:
		utils.CreatedResponse(c, gin.H{"payment_url": url})
	case errors.Is(err, services.ErrInvalidAmount):
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid_amount", "Invalid amount", nil)
	case errors.Is(err, services.ErrPaymentServiceInteraction):
		utils.ErrorResponse(c, http.StatusInternalServerError, "payment_service_interaction",
			"An error occurred while interacting with the payment service. Please, try again.", nil)
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}

// POST /payments/ipn — gateway webhook. Signature verification happens
// before the payload is even parsed; a bad signature terminates the request
// with no state change.
func (h *PaymentHandler) HandleIPN(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.BadRequestResponse(c, "Failed to read payload", nil)
		return
	}

	signature := c.GetHeader(ipnSignatureHeader)
	if signature == "" || !payments.VerifyIPNSignature(body, signature, h.ipnSecret) {
		logrus.WithField("ip", c.ClientIP()).Warn("Rejected IPN with invalid signature")
		utils.ForbiddenResponse(c, "Invalid signature")
		return
	}

	var ipn payments.IPNPayload
	if err := json.Unmarshal(body, &ipn); err != nil {
		utils.BadRequestResponse(c, "Invalid payload", nil)
		return
	}

	err = h.paymentService.UpdateTopupStatus(c.Request.Context(), &ipn)
	switch {
	case err == nil:
		utils.SuccessResponse(c, gin.H{})
	case errors.Is(err, services.ErrInvalidOrderID):
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid_order_id", "Unknown order id", nil)
	case errors.Is(err, services.ErrTransactionConflict):
		// 5xx makes the gateway retry the callback
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "topup_conflict", "Conflicting transaction, retry", nil)
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}
