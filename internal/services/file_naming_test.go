// internal/services/file_naming_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageName(t *testing.T) {
	tests := []struct {
		name         string
		productID    uint
		originalName string
		want         string
	}{
		{"simple", 42, "manual.zip", "42_manual.zip"},
		{"digit leading original", 7, "2024_report.zip", "7_2024_report.zip"},
		{"staged prefix stripped", 7, "staged--archive.rar", "7_archive.rar"},
		{"staged prefix stripped once", 7, "staged--staged--x.7z", "7_staged--x.7z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StorageName(tt.productID, tt.originalName)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStorageNameEmpty(t *testing.T) {
	_, err := StorageName(1, "")
	assert.ErrorIs(t, err, ErrEmptyFileName)

	// A bare staged marker leaves nothing behind.
	_, err = StorageName(1, "staged--")
	assert.ErrorIs(t, err, ErrEmptyFileName)
}

func TestParseStorageName(t *testing.T) {
	tests := []struct {
		name         string
		storageName  string
		wantID       uint
		wantOriginal string
	}{
		{"simple", "42_manual.zip", 42, "manual.zip"},
		{"original with delimiters", "7_2024_报告_final.zip", 7, "2024_报告_final.zip"},
		{"digit leading original", "7_2024.zip", 7, "2024.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, original, err := ParseStorageName(tt.storageName)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantOriginal, original)
		})
	}
}

func TestParseStorageNameMalformed(t *testing.T) {
	for _, bad := range []string{"manual.zip", "abc_manual.zip", "", "_manual.zip"} {
		_, _, err := ParseStorageName(bad)
		assert.ErrorIs(t, err, ErrMalformedStorageName, "input %q", bad)
	}
}

func TestStorageNameRoundTrip(t *testing.T) {
	originals := []string{"a.zip", "2024_q1_books.rar", "x_y_z.7z", "статья.zip"}
	for _, original := range originals {
		storageName, err := StorageName(123, original)
		require.NoError(t, err)

		id, got, err := ParseStorageName(storageName)
		require.NoError(t, err)
		assert.Equal(t, uint(123), id)
		assert.Equal(t, original, got)
	}
}

func TestStageUploadName(t *testing.T) {
	assert.Equal(t, "staged--a.zip", StageUploadName("a.zip"))
	assert.Equal(t, "staged--a.zip", StageUploadName("staged--a.zip"))
	assert.Equal(t, "a.zip", StripStagedPrefix("staged--a.zip"))
	assert.Equal(t, "a.zip", StripStagedPrefix("a.zip"))
}
