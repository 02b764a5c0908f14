package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gcs "cloud.google.com/go/storage"
)

const imagePrefix = "images/"

// FirebaseImageStore keeps images in a Firebase Storage bucket. The bucket is expected
// to grant public read on images/.
type FirebaseImageStore struct {
	bucket   *gcs.BucketHandle
	name     string
	maxBytes int64
}

func NewFirebaseImageStore(bucket *gcs.BucketHandle, bucketName string, maxBytes int64) *FirebaseImageStore {
	return &FirebaseImageStore{bucket: bucket, name: bucketName, maxBytes: maxBytes}
}

func (s *FirebaseImageStore) publicURL(object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.name, object)
}

// objectFor returns the object path behind url when it lives in this bucket.
func (s *FirebaseImageStore) objectFor(url string) (string, bool) {
	object, ok := strings.CutPrefix(url, s.publicURL(""))
	if !ok || !strings.HasPrefix(object, imagePrefix) || len(object) == len(imagePrefix) {
		return "", false
	}
	return object, true
}

func (s *FirebaseImageStore) Upload(ctx context.Context, payload string) (string, error) {
	if IsRemote(payload) {
		return payload, nil
	}
	img, err := DecodeDataURI(payload, s.maxBytes)
	if err != nil {
		return "", err
	}

	object := imagePrefix + objectName(img.ContentType)
	w := s.bucket.Object(object).NewWriter(ctx)
	w.ContentType = img.ContentType
	w.CacheControl = "public, max-age=31536000"
	if _, err := w.Write(img.Data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload image: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return s.publicURL(object), nil
}

func (s *FirebaseImageStore) Delete(ctx context.Context, url string) error {
	object, ok := s.objectFor(url)
	if !ok {
		return nil
	}
	err := s.bucket.Object(object).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}
