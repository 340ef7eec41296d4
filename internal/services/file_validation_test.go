// internal/services/file_validation_test.go
package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUploadAccepted(t *testing.T) {
	for _, name := range []string{"a.zip", "b.rar", "c.7z", "SHOUTING.ZIP", "v1.2.Rar"} {
		upload := &FileUpload{Name: name, Size: 100, Content: strings.NewReader("x")}
		staged, err := ValidateUpload(upload, false)
		require.NoError(t, err, "name %q", name)
		assert.Equal(t, "staged--"+name, staged.Name)
	}
}

func TestValidateUploadDoesNotMutateInput(t *testing.T) {
	upload := &FileUpload{Name: "a.zip", Size: 100}
	staged, err := ValidateUpload(upload, false)
	require.NoError(t, err)

	assert.Equal(t, "a.zip", upload.Name)
	assert.NotSame(t, upload, staged)
}

func TestValidateUploadRejectedExtension(t *testing.T) {
	for _, name := range []string{"a.exe", "b.tar.gz", "noext", "a.zip.exe"} {
		_, err := ValidateUpload(&FileUpload{Name: name, Size: 100}, false)
		var typeErr *InvalidFileTypeError
		assert.ErrorAs(t, err, &typeErr, "name %q", name)
	}
}

func TestValidateUploadSizeCeiling(t *testing.T) {
	_, err := ValidateUpload(&FileUpload{Name: "a.zip", Size: MaxFileSizeBytes}, false)
	assert.NoError(t, err)

	_, err = ValidateUpload(&FileUpload{Name: "a.zip", Size: MaxFileSizeBytes + 1}, false)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestValidateUploadDelete(t *testing.T) {
	staged, err := ValidateUpload(nil, true)
	require.NoError(t, err)
	assert.Nil(t, staged)

	_, err = ValidateUpload(nil, false)
	assert.ErrorIs(t, err, ErrDeleteNotAllowed)
}
