package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/soilq/soilq-api/utils"
)

// LocalStorage keeps reports on local disk when no bucket is configured
type LocalStorage struct {
	dir string
}

// NewLocalStorage stores reports under dir
func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{dir: dir}
}

// Store saves the file under dir/key
func (l *LocalStorage) Store(_ context.Context, key string, fileHeader *multipart.FileHeader) error {
	_, err := utils.SaveUploadedFile(fileHeader, l.dir, key)
	return err
}

// URL returns the API path the file is served from
func (l *LocalStorage) URL(_ context.Context, key string) (string, error) {
	return utils.GetUploadURL(key), nil
}

// Delete removes the file. A missing file is not an error
func (l *LocalStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return nil
	}
	err := os.Remove(filepath.Join(l.dir, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
