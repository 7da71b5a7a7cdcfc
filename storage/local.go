package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// localDiskUploader keeps files under a single directory. Keys are opaque
// names generated by the attachment service, so a flat layout is enough.
type localDiskUploader struct {
	baseDir string
}

func NewLocalDiskUploader(baseDir string) (FileUploader, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("attachments directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create attachments directory %s: %w", baseDir, err)
	}
	return &localDiskUploader{baseDir: baseDir}, nil
}

func (u *localDiskUploader) path(key string) (string, error) {
	// Keys never contain separators; reject anything that tries.
	if key == "" || strings.ContainsAny(key, `/\`) || key != filepath.Base(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(u.baseDir, key), nil
}

func (u *localDiskUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	path, err := u.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return &UploadResult{Key: key, Location: path}, nil
}

func (u *localDiskUploader) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := u.path(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (u *localDiskUploader) Delete(ctx context.Context, key string) error {
	path, err := u.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file %s: %w", path, err)
	}
	return nil
}

func (u *localDiskUploader) GetPublicURL(key string) string {
	// Local files are streamed through the download endpoint, never linked.
	return ""
}
