// internal/services/retention_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/horizonglow/marketplace-backend/internal/models"
)

// RetentionService prunes product files whose post-purchase retention window
// has elapsed. The product record stays as a historical record; only the
// bytes go.
type RetentionService struct {
	db        *gorm.DB
	files     *ProductFileService
	retention time.Duration
}

func NewRetentionService(db *gorm.DB, files *ProductFileService, retention time.Duration) *RetentionService {
	return &RetentionService{
		db:        db,
		files:     files,
		retention: retention,
	}
}

// PruneOutdatedFiles deletes every file attached to a product purchased
// before the retention cutoff and returns the deleted storage names.
// Per-item failures are logged and skipped; one broken product never aborts
// the sweep. Deletions are independent and idempotent, so re-running after a
// partial failure is safe.
func (s *RetentionService) PruneOutdatedFiles(ctx context.Context) ([]string, error) {
	cutoff := time.Now().Add(-s.retention)

	var products []models.Product
	if err := s.db.WithContext(ctx).
		Where("file_name <> '' AND purchased_at IS NOT NULL AND purchased_at < ?", cutoff).
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to select outdated products: %w", err)
	}

	deleted := make([]string, 0, len(products))
	for i := range products {
		product := &products[i]
		storageName := product.FileName

		err := s.files.UpdateFile(ctx, product, nil, UpdateFileOptions{
			AllowDelete:      true,
			BypassValidation: true,
			Commit:           true,
		})
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"product_id":   product.ID,
				"storage_name": storageName,
			}).Error("Failed to prune product file")
			continue
		}

		deleted = append(deleted, storageName)
	}

	return deleted, nil
}

// Run sweeps on a fixed interval until the context is cancelled.
func (s *RetentionService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.PruneOutdatedFiles(ctx)
			if err != nil {
				logrus.WithError(err).Error("File retention sweep failed")
				continue
			}
			if len(deleted) > 0 {
				logrus.WithField("deleted", deleted).Info("Pruned outdated product files")
			}
		}
	}
}
