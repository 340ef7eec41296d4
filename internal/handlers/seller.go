// internal/handlers/seller.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/horizonglow/marketplace-backend/internal/services"
	"github.com/horizonglow/marketplace-backend/internal/utils"
)

type SellerHandler struct {
	sellerService *services.SellerService
}

func NewSellerHandler(sellerService *services.SellerService) *SellerHandler {
	return &SellerHandler{
		sellerService: sellerService,
	}
}

type SellerStats struct {
	Percent     decimal.Decimal `json:"percent"`
	TotalEarned decimal.Decimal `json:"total_earned"`
	ToPay       decimal.Decimal `json:"to_pay"`
	AlreadyPaid decimal.Decimal `json:"already_paid"`
	TotalOnSale decimal.Decimal `json:"total_on_sale"`
}

// GET /seller/stats
func (h *SellerHandler) GetStats(c *gin.Context) {
	userID, _, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	seller, err := h.sellerService.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to load seller account")
		return
	}

	onSale, err := h.sellerService.TotalOnSale(c.Request.Context(), userID)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to load seller account")
		return
	}

	utils.SuccessResponse(c, SellerStats{
		Percent:     seller.Percent,
		TotalEarned: seller.TotalEarned,
		ToPay:       seller.ToPay,
		AlreadyPaid: services.AlreadyPaid(seller),
		TotalOnSale: onSale,
	})
}
