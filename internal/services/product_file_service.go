// internal/services/product_file_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/horizonglow/marketplace-backend/internal/models"
	"github.com/horizonglow/marketplace-backend/internal/storage"
)

// ProductFileService owns the lifecycle of a product's attached file:
// validate, store, replace, delete.
type ProductFileService struct {
	db      *gorm.DB
	storage storage.Backend
}

func NewProductFileService(db *gorm.DB, backend storage.Backend) *ProductFileService {
	return &ProductFileService{
		db:      db,
		storage: backend,
	}
}

type UpdateFileOptions struct {
	AllowDelete      bool
	BypassValidation bool

	// Commit persists the product record inside the manager's own locked
	// transaction. Callers already holding an open transaction pass false
	// and flush the record themselves.
	Commit bool
}

// HasFile reports whether the product references a file AND the blob is
// confirmed present in the backend. A dangling reference counts as absent;
// the purchase engine must never sell bytes that are missing.
func (s *ProductFileService) HasFile(ctx context.Context, product *models.Product) (bool, error) {
	if !product.HasFileReference() {
		return false, nil
	}

	exists, err := s.storage.Exists(ctx, product.FileName)
	if err != nil {
		return false, fmt.Errorf("failed to verify stored file %s: %w", product.FileName, err)
	}
	return exists, nil
}

// Open returns the stored file's content and size along with the original
// (client-facing) file name recovered from the storage name.
func (s *ProductFileService) Open(ctx context.Context, product *models.Product) (*StoredFile, error) {
	if !product.HasFileReference() {
		return nil, ErrNoFile
	}

	_, originalName, err := ParseStorageName(product.FileName)
	if err != nil {
		return nil, err
	}

	body, size, err := s.storage.Open(ctx, product.FileName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoFile
		}
		return nil, err
	}

	return &StoredFile{Name: originalName, Size: size, Content: body}, nil
}

// StoredFile is a stored product file opened for download.
type StoredFile struct {
	Name    string
	Size    int64
	Content io.ReadCloser
}

// UpdateFile applies a file change to the product. A nil upload deletes the
// stored file (subject to AllowDelete); a non-nil upload replaces it. With
// Commit set, the whole rename-and-replace sequence runs while holding a row
// lock on the product, so concurrent uploads to the same product are
// sequenced and cannot lose both old and new files.
func (s *ProductFileService) UpdateFile(ctx context.Context, product *models.Product, upload *FileUpload, opts UpdateFileOptions) error {
	validated := upload
	if !opts.BypassValidation {
		v, err := ValidateUpload(upload, opts.AllowDelete)
		if err != nil {
			return err
		}
		validated = v
	} else if upload != nil {
		staged := *upload
		staged.Name = StageUploadName(upload.Name)
		validated = &staged
	}

	if !opts.Commit {
		return s.applyFileChange(ctx, product, validated)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, product.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := s.applyFileChange(ctx, &locked, validated); err != nil {
			return err
		}

		if err := tx.Model(&models.Product{}).Where("id = ?", locked.ID).
			Update("file_name", locked.FileName).Error; err != nil {
			return fmt.Errorf("failed to update file reference: %w", err)
		}

		product.FileName = locked.FileName
		return nil
	})
}

// applyFileChange performs the storage-side work and mutates the in-memory
// reference. Ordering fails closed: the new file is stored before anything is
// deleted, so a failed replacement leaves the old file and reference intact.
func (s *ProductFileService) applyFileChange(ctx context.Context, product *models.Product, upload *FileUpload) error {
	if upload == nil {
		if product.FileName != "" {
			if err := s.storage.Delete(ctx, product.FileName); err != nil {
				return fmt.Errorf("failed to delete stored file: %w", err)
			}
		}
		product.FileName = ""
		return nil
	}

	newName, err := StorageName(product.ID, upload.Name)
	if err != nil {
		return err
	}

	oldName := product.FileName

	if err := s.storage.Save(ctx, newName, upload.Content, upload.Size); err != nil {
		return fmt.Errorf("failed to store file %s: %w", newName, err)
	}

	if oldName != "" && oldName != newName {
		// Replacement, never orphaning: drop the stale object under the
		// previous storage name.
		if err := s.storage.Delete(ctx, oldName); err != nil {
			logrus.WithError(err).WithField("storage_name", oldName).
				Warn("Failed to delete stale product file")
		}
	}

	// Some write paths persist the raw upload under its staged name before
	// the manager renames it. Best-effort cleanup, logged.
	if stray := upload.Name; stray != newName && stray != oldName {
		if exists, err := s.storage.Exists(ctx, stray); err == nil && exists {
			if err := s.storage.Delete(ctx, stray); err != nil {
				logrus.WithError(err).WithField("storage_name", stray).
					Warn("Failed to delete stray staged upload")
			}
		}
	}

	product.FileName = newName
	return nil
}
