// internal/services/access_policy_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/horizonglow/marketplace-backend/internal/models"
)

func TestGrantsForUser(t *testing.T) {
	admin := &models.User{IsAdmin: true}
	assert.Equal(t, Grants{DownloadAny: true, UploadAny: true, DeleteAny: true}, GrantsForUser(admin))

	regular := &models.User{IsSeller: true}
	assert.Equal(t, Grants{}, GrantsForUser(regular))
}

func TestCanDownload(t *testing.T) {
	sellerID := uuid.New()
	buyerID := uuid.New()
	strangerID := uuid.New()

	product := &models.Product{SellerID: sellerID, PurchasedByID: &buyerID}

	assert.True(t, CanDownload(product, sellerID, Grants{}))
	assert.True(t, CanDownload(product, buyerID, Grants{}))
	assert.False(t, CanDownload(product, strangerID, Grants{}))
	assert.True(t, CanDownload(product, strangerID, Grants{DownloadAny: true}))
}

func TestCanDownloadUnsold(t *testing.T) {
	sellerID := uuid.New()
	product := &models.Product{SellerID: sellerID}

	assert.True(t, CanDownload(product, sellerID, Grants{}))
	assert.False(t, CanDownload(product, uuid.New(), Grants{}))
}

func TestCanUpdateFileOneShot(t *testing.T) {
	sellerID := uuid.New()

	fresh := &models.Product{SellerID: sellerID}
	assert.True(t, CanUpdateFile(fresh, sellerID, Grants{}))
	assert.False(t, CanUpdateFile(fresh, uuid.New(), Grants{}))

	// Once a file is attached the seller cannot replace it.
	published := &models.Product{SellerID: sellerID, FileName: "1_a.zip"}
	assert.False(t, CanUpdateFile(published, sellerID, Grants{}))
	assert.True(t, CanUpdateFile(published, sellerID, Grants{UploadAny: true}))
	assert.True(t, CanUpdateFile(published, uuid.New(), Grants{UploadAny: true}))
}

func TestCanDeleteFile(t *testing.T) {
	assert.False(t, CanDeleteFile(Grants{}))
	assert.False(t, CanDeleteFile(Grants{DownloadAny: true, DeleteAny: true}))
	assert.True(t, CanDeleteFile(Grants{UploadAny: true}))
}

func TestCanDeleteProduct(t *testing.T) {
	sellerID := uuid.New()
	now := time.Now()
	product := &models.Product{SellerID: sellerID, PurchasedAt: &now}

	// Ownership decides access; the sold-state rule lives in the service.
	assert.True(t, CanDeleteProduct(product, sellerID, Grants{}))
	assert.False(t, CanDeleteProduct(product, uuid.New(), Grants{}))
	assert.True(t, CanDeleteProduct(product, uuid.New(), Grants{DeleteAny: true}))
}
