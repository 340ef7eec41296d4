// internal/services/file_naming.go
package services

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// storageNameDelimiter separates the owning product's id from the
	// original file name inside a storage name.
	storageNameDelimiter = "_"

	// stagedUploadPrefix neutralizes a client-supplied file name between
	// validation and the manager's rename. A raw upload persisted under a
	// prefixed name cannot collide with another product's "{id}_{name}".
	stagedUploadPrefix = "staged--"
)

// StorageName builds the canonical object name "{id}_{original}" for a
// product's file, stripping the staged-upload prefix exactly once.
func StorageName(productID uint, originalName string) (string, error) {
	name := StripStagedPrefix(originalName)
	if name == "" {
		return "", ErrEmptyFileName
	}
	return fmt.Sprintf("%d%s%s", productID, storageNameDelimiter, name), nil
}

// ParseStorageName recovers (productID, originalName) from a storage name.
// The boundary is demarcated by the delimiter itself, not by scanning for
// digits, so original names starting with digits round-trip correctly.
func ParseStorageName(storageName string) (uint, string, error) {
	prefix, original, found := strings.Cut(storageName, storageNameDelimiter)
	if !found {
		return 0, "", fmt.Errorf("%w: %q has no delimiter", ErrMalformedStorageName, storageName)
	}

	id, err := strconv.ParseUint(prefix, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %q has a non-integer prefix", ErrMalformedStorageName, storageName)
	}

	return uint(id), original, nil
}

// StageUploadName marks a client file name as a staged upload.
func StageUploadName(originalName string) string {
	return stagedUploadPrefix + StripStagedPrefix(originalName)
}

// StripStagedPrefix removes the staged-upload marker, at most once.
func StripStagedPrefix(name string) string {
	return strings.TrimPrefix(name, stagedUploadPrefix)
}
