// internal/handlers/content.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/horizonglow/marketplace-backend/internal/models"
	"github.com/horizonglow/marketplace-backend/internal/utils"
)

type ContentHandler struct {
	db *gorm.DB
}

func NewContentHandler(db *gorm.DB) *ContentHandler {
	return &ContentHandler{db: db}
}

// GET /content/:key
func (h *ContentHandler) GetEntry(c *gin.Context) {
	var entry models.ContentEntry
	err := h.db.WithContext(c.Request.Context()).
		First(&entry, "key = ?", c.Param("key")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundResponse(c, "Content entry")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"key":   entry.Key,
		"value": entry.Value,
	})
}
