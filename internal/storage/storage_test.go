package storage

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestSniff(t *testing.T) {
	data := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 1000)...)

	contentType, r, err := Sniff(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)

	all, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, all, "sniffing must not consume content")
}

func TestSniff_ShortAndText(t *testing.T) {
	contentType, r, err := Sniff(strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", contentType)
	all, _ := io.ReadAll(r)
	assert.Equal(t, "hello", string(all))

	contentType, _, err = Sniff(strings.NewReader("%PDF-1.7\n"))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		purpose     entities.UploadPurpose
		size        int64
		contentType string
		ok          bool
	}{
		{"photo jpeg", entities.UploadPurposePhoto, 100, "image/jpeg", true},
		{"receipt pdf", entities.UploadPurposeReceipt, 100, "application/pdf", true},
		{"vision pdf", entities.UploadPurposeVision, 100, "application/pdf", false},
		{"text file", entities.UploadPurposePhoto, 100, "text/plain", false},
		{"unknown purpose", "avatar", 100, "image/png", false},
		{"empty", entities.UploadPurposeCover, 0, "image/png", false},
		{"too large", entities.UploadPurposeCover, 2048, "image/png", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.purpose, tt.size, 1024, tt.contentType)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperr.ErrValidation)
			}
		})
	}
}

func TestExtensionRoundTrip(t *testing.T) {
	for _, ct := range []string{"image/jpeg", "image/png", "image/gif", "image/webp", "application/pdf"} {
		assert.Equal(t, ct, ContentTypeFor("a/b"+ExtensionFor(ct)), ct)
	}
	assert.Equal(t, "application/octet-stream", ContentTypeFor("noext"))
	assert.True(t, IsImageType("image/webp"))
	assert.False(t, IsImageType("application/pdf"))
}
