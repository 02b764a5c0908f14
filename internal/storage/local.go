package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalImageStore writes images to a directory that the server exposes at baseURL.
type LocalImageStore struct {
	dir      string
	baseURL  string
	maxBytes int64
}

func NewLocalImageStore(dir, baseURL string, maxBytes int64) *LocalImageStore {
	return &LocalImageStore{
		dir:      dir,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		maxBytes: maxBytes,
	}
}

func (s *LocalImageStore) Upload(ctx context.Context, payload string) (string, error) {
	if IsRemote(payload) {
		return payload, nil
	}
	img, err := DecodeDataURI(payload, s.maxBytes)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	name := objectName(img.ContentType)
	if err := os.WriteFile(filepath.Join(s.dir, name), img.Data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

func (s *LocalImageStore) Delete(ctx context.Context, url string) error {
	name, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
