// internal/handlers/support.go
package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/horizonglow/marketplace-backend/internal/services"
	"github.com/horizonglow/marketplace-backend/internal/utils"
)

// SupportHandler serves the support-ticket bot boundary: it resolves a
// buyer-presented support code to the purchased product behind it.
type SupportHandler struct {
	productService *services.ProductService
}

func NewSupportHandler(productService *services.ProductService) *SupportHandler {
	return &SupportHandler{
		productService: productService,
	}
}

// GET /support/products/:code
func (h *SupportHandler) GetProductByCode(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if code == "" {
		utils.BadRequestResponse(c, "Support code is required", nil)
		return
	}

	info, err := h.productService.SupportInfo(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "Product")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, info)
}
