// Package storage hosts post and profile images.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidImage  = errors.New("invalid image")
	ErrImageTooLarge = errors.New("image too large")
)

// ImageStore turns an image payload into a hosted URL.
//
// Upload accepts a base64 data URI, which is stored, or an http(s) URL, which is
// returned unchanged. Delete ignores URLs the store did not produce.
type ImageStore interface {
	Upload(ctx context.Context, payload string) (string, error)
	Delete(ctx context.Context, url string) error
}

// Image is a decoded upload.
type Image struct {
	ContentType string
	Data        []byte
}

// IsRemote reports whether payload is already a hosted URL.
func IsRemote(payload string) bool {
	return strings.HasPrefix(payload, "http://") || strings.HasPrefix(payload, "https://")
}

// DecodeDataURI parses data:image/<type>;base64,<data> and checks the bytes look like
// an image no larger than maxBytes. The returned ContentType is the sniffed one; the
// declared type is only used to reject non-image payloads early.
func DecodeDataURI(payload string, maxBytes int64) (*Image, error) {
	header, encoded, ok := strings.Cut(payload, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, ErrInvalidImage
	}
	declared := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	if !strings.HasPrefix(declared, "image/") {
		return nil, ErrInvalidImage
	}

	if maxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(encoded))) > maxBytes+2 {
		return nil, ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidImage
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrImageTooLarge
	}
	sniffed := http.DetectContentType(data)
	if !strings.HasPrefix(sniffed, "image/") {
		return nil, ErrInvalidImage
	}
	return &Image{ContentType: sniffed, Data: data}, nil
}

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// objectName returns a fresh random file name with an extension for contentType.
func objectName(contentType string) string {
	ext, ok := extensions[contentType]
	if !ok {
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		} else {
			ext = ".img"
		}
	}
	return fmt.Sprintf("%s%s", uuid.NewString(), ext)
}
