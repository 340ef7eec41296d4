// internal/handlers/product.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/horizonglow/marketplace-backend/internal/models"
	"github.com/horizonglow/marketplace-backend/internal/services"
	"github.com/horizonglow/marketplace-backend/internal/utils"
)

type ProductHandler struct {
	productService  *services.ProductService
	fileService     *services.ProductFileService
	purchaseService *services.PurchaseService
}

func NewProductHandler(productService *services.ProductService, fileService *services.ProductFileService, purchaseService *services.PurchaseService) *ProductHandler {
	return &ProductHandler{
		productService:  productService,
		fileService:     fileService,
		purchaseService: purchaseService,
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	var categoryID *uint
	if categoryStr := c.Query("category"); categoryStr != "" {
		if id, err := strconv.ParseUint(categoryStr, 10, 64); err == nil {
			cid := uint(id)
			categoryID = &cid
		}
	}

	products, total, err := h.productService.ListAvailable(c.Request.Context(), categoryID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /products/categories
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.productService.ListCategories(c.Request.Context())
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, categories)
}

// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	actorID, _, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), actorID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, product)
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, ok := h.loadProduct(c)
	if !ok {
		return
	}
	utils.SuccessResponse(c, product)
}

// DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	actorID, grants, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	product, ok := h.loadProduct(c)
	if !ok {
		return
	}

	if !services.CanDeleteProduct(product, actorID, grants) {
		utils.ForbiddenResponse(c, "")
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), product); err != nil {
		if errors.Is(err, services.ErrAlreadyBought) {
			utils.ConflictResponse(c, "already_bought", "Product already bought")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{})
}

// POST /products/:id/buy
func (h *ProductHandler) BuyProduct(c *gin.Context) {
	actorID, _, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	product, ok := h.loadProduct(c)
	if !ok {
		return
	}

	err := h.purchaseService.Buy(c.Request.Context(), product.ID, actorID)
	switch {
	case err == nil:
		utils.SuccessResponse(c, gin.H{})
	case errors.Is(err, services.ErrNoFile):
		utils.ConflictResponse(c, "no_file", "File for this product hasn't been added yet or has already been deleted")
	case errors.Is(err, services.ErrBuyingBySeller):
		utils.ConflictResponse(c, "buying_by_seller", "You can't buy the product you are selling")
	case errors.Is(err, services.ErrAlreadyBought):
		utils.ConflictResponse(c, "already_bought", "Product already bought")
	case errors.Is(err, services.ErrInsufficientBalance):
		utils.ConflictResponse(c, "insufficient_balance", "Insufficient balance")
	case errors.Is(err, services.ErrTransactionConflict):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "purchase_conflict", "Purchase conflicted with a concurrent operation, please retry", nil)
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}

// GET /products/:id/file
func (h *ProductHandler) DownloadFile(c *gin.Context) {
	actorID, grants, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	product, ok := h.loadProduct(c)
	if !ok {
		return
	}

	if !services.CanDownload(product, actorID, grants) {
		utils.ForbiddenResponse(c, "")
		return
	}

	file, err := h.fileService.Open(c.Request.Context(), product)
	if err != nil {
		if errors.Is(err, services.ErrNoFile) {
			utils.ConflictResponse(c, "no_file", "File for this product hasn't been added yet or has already been deleted")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	defer file.Content.Close()

	// The client sees the original name, never the storage name.
	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", file.Name),
	}
	c.DataFromReader(http.StatusOK, file.Size, "application/octet-stream", file.Content, extraHeaders)
}

// PUT /products/:id/file
func (h *ProductHandler) UploadFile(c *gin.Context) {
	actorID, grants, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	product, ok := h.loadProduct(c)
	if !ok {
		return
	}

	if !services.CanUpdateFile(product, actorID, grants) {
		utils.ForbiddenResponse(c, "")
		return
	}

	// A missing file field is a delete request; only admins pass the
	// validator's allow-delete gate.
	var upload *services.FileUpload
	fileHeader, err := c.FormFile("file")
	if err == nil {
		f, err := fileHeader.Open()
		if err != nil {
			utils.InternalErrorResponse(c, err.Error())
			return
		}
		defer f.Close()

		upload = &services.FileUpload{
			Name:    fileHeader.Filename,
			Size:    fileHeader.Size,
			Content: f,
		}
	}

	err = h.fileService.UpdateFile(c.Request.Context(), product, upload, services.UpdateFileOptions{
		AllowDelete: services.CanDeleteFile(grants),
		Commit:      true,
	})

	var typeErr *services.InvalidFileTypeError
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, utils.APIResponse{Success: true, Data: gin.H{}})
	case errors.As(err, &typeErr):
		utils.ErrorResponse(c, http.StatusUnsupportedMediaType, "invalid_file_type", typeErr.Error(), nil)
	case errors.Is(err, services.ErrFileTooLarge):
		utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "file_too_large", err.Error(), nil)
	case errors.Is(err, services.ErrDeleteNotAllowed):
		utils.ErrorResponse(c, http.StatusBadRequest, "delete_not_allowed", err.Error(), nil)
	case errors.Is(err, services.ErrEmptyFileName):
		utils.ErrorResponse(c, http.StatusBadRequest, "empty_file_name", err.Error(), nil)
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}

func (h *ProductHandler) loadProduct(c *gin.Context) (*models.Product, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return nil, false
	}

	product, err := h.productService.GetProduct(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "Product")
			return nil, false
		}
		utils.InternalErrorResponse(c, err.Error())
		return nil, false
	}
	return product, true
}
