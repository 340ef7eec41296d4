// internal/handlers/common.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/horizonglow/marketplace-backend/internal/services"
	"github.com/horizonglow/marketplace-backend/internal/utils"
)

// actorFromContext resolves the authenticated actor's id and capability set
// placed in the context by the auth middleware.
func actorFromContext(c *gin.Context) (uuid.UUID, services.Grants, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		return uuid.Nil, services.Grants{}, false
	}

	actorID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, services.Grants{}, false
	}

	grants := services.Grants{}
	if isAdmin, ok := c.Get("is_admin"); ok && isAdmin == true {
		grants = services.Grants{DownloadAny: true, UploadAny: true, DeleteAny: true}
	}

	return actorID, grants, true
}
