// internal/services/access_policy.go
package services

import (
	"github.com/google/uuid"

	"github.com/horizonglow/marketplace-backend/internal/models"
)

// Grants is the capability set of an authenticated actor, resolved once at
// authentication time. Authorization predicates take it explicitly instead of
// probing the user object.
type Grants struct {
	DownloadAny bool
	UploadAny   bool
	DeleteAny   bool
}

// GrantsForUser maps an account to its capability set.
func GrantsForUser(user *models.User) Grants {
	if user.IsAdmin {
		return Grants{DownloadAny: true, UploadAny: true, DeleteAny: true}
	}
	return Grants{}
}

// CanDownload: global grant, the product's seller, or its purchaser.
func CanDownload(product *models.Product, actorID uuid.UUID, grants Grants) bool {
	if grants.DownloadAny {
		return true
	}
	if product.SellerID == actorID {
		return true
	}
	return product.PurchasedByID != nil && *product.PurchasedByID == actorID
}

// CanUpdateFile: global grant, or the seller while no file is attached yet.
// Sellers get exactly one shot at uploading, so a published file cannot be
// swapped after buyers have seen it.
func CanUpdateFile(product *models.Product, actorID uuid.UUID, grants Grants) bool {
	if grants.UploadAny {
		return true
	}
	return product.SellerID == actorID && !product.HasFileReference()
}

// CanDeleteFile: administrative-only.
func CanDeleteFile(grants Grants) bool {
	return grants.UploadAny
}

// CanDeleteProduct: global grant or the seller. Whether a purchased product
// may be deleted at all is decided by the product service, not here.
func CanDeleteProduct(product *models.Product, actorID uuid.UUID, grants Grants) bool {
	if grants.DeleteAny {
		return true
	}
	return product.SellerID == actorID
}
