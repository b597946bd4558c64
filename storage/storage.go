// Package storage stores uploaded photo binaries. The default backend is the
// local uploads directory served under /uploads; a Google Cloud Storage
// backend can be selected with GCS_BUCKET for deployments without a
// persistent disk.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// PhotoStorage saves and deletes photo binaries. Delete tolerates a file that
// is already absent.
type PhotoStorage interface {
	Save(filename string, r io.Reader, contentType string) (url string, err error)
	Delete(filename string) error
}

// LocalStorage keeps binaries on disk under dir, addressable as
// /uploads/<filename>.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

// Dir is the on-disk directory, exposed so the router can serve it statically.
func (s *LocalStorage) Dir() string {
	return s.dir
}

func (s *LocalStorage) Save(filename string, r io.Reader, contentType string) (string, error) {
	dst, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return "/uploads/" + filename, nil
}

func (s *LocalStorage) Delete(filename string) error {
	err := os.Remove(filepath.Join(s.dir, filename))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
