// Package storage stores uploaded files and validates what may be uploaded.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

var ErrNotFound = errors.New("file not found")

// FileStore persists file content under generated keys.
type FileStore interface {
	// Save writes r under a new key starting with prefix and returns the key.
	Save(ctx context.Context, prefix, contentType string, r io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// URL is the public address of key.
	URL(key string) string
}

const sniffLength = 512

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// AllowedTypes returns the content types accepted for purpose.
func AllowedTypes(purpose entities.UploadPurpose) []string {
	types := []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	if purpose == entities.UploadPurposeReceipt {
		types = append(types, "application/pdf")
	}
	return types
}

func IsImageType(contentType string) bool {
	return imageTypes[contentType]
}

// Sniff detects the content type of r from its first bytes and returns a
// reader that still yields the whole content.
func Sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLength)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return contentType, io.MultiReader(bytes.NewReader(head), r), nil
}

// Validate checks an upload's purpose, declared size and sniffed content type.
func Validate(purpose entities.UploadPurpose, size, maxBytes int64, contentType string) error {
	if !purpose.Valid() {
		return apperr.Validation("invalid upload", map[string]string{"purpose": "must be receipt, photo, vision or cover"})
	}
	if size <= 0 {
		return apperr.Validation("invalid upload", map[string]string{"file": "is empty"})
	}
	if maxBytes > 0 && size > maxBytes {
		return apperr.Validation("invalid upload", map[string]string{
			"file": fmt.Sprintf("must be at most %d bytes", maxBytes),
		})
	}
	for _, allowed := range AllowedTypes(purpose) {
		if contentType == allowed {
			return nil
		}
	}
	return apperr.Validation("invalid upload", map[string]string{
		"file": "unsupported file type " + contentType,
	})
}

// ExtensionFor maps a content type to a file extension.
func ExtensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	default:
		return ".jpg"
	}
}

// ContentTypeFor is the inverse of ExtensionFor.
func ContentTypeFor(key string) string {
	i := strings.LastIndexByte(key, '.')
	if i < 0 {
		return "application/octet-stream"
	}
	switch strings.ToLower(key[i:]) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
