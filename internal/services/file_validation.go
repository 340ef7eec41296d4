// internal/services/file_validation.go
package services

import (
	"io"
	"path/filepath"
	"strings"
)

const MaxFileSizeBytes = 10 * 1024 * 1024 // 10 MiB

// AllowedFileExtensions is the archive whitelist for product files.
var AllowedFileExtensions = []string{".zip", ".rar", ".7z"}

// FileUpload describes an incoming product file. Content is consumed at most
// once, when the manager stores the file.
type FileUpload struct {
	Name    string
	Size    int64
	Content io.Reader
}

// ValidateUpload checks an upload against the extension whitelist and size
// ceiling. A nil upload stands for deletion and passes only with allowDelete.
// On success it returns a copy whose name carries the staged-upload marker;
// the input descriptor is never mutated, so the validation result cannot
// alias into a persistence path that still holds the raw name.
func ValidateUpload(upload *FileUpload, allowDelete bool) (*FileUpload, error) {
	if upload == nil {
		if !allowDelete {
			return nil, ErrDeleteNotAllowed
		}
		return nil, nil
	}

	ext := strings.ToLower(filepath.Ext(upload.Name))
	if !isAllowedExtension(ext) {
		return nil, &InvalidFileTypeError{Extension: ext}
	}

	if upload.Size > MaxFileSizeBytes {
		return nil, ErrFileTooLarge
	}

	staged := *upload
	staged.Name = StageUploadName(upload.Name)
	return &staged, nil
}

func isAllowedExtension(ext string) bool {
	for _, allowed := range AllowedFileExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
