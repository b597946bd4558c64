package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStorage keeps photo binaries in a Google Cloud Storage bucket under the
// photos/ prefix and serves them by public URL.
type GCSStorage struct {
	client *storage.Client
	bucket string
}

// NewGCSStorage builds a client from CREDENTIALS_FILE_LOCATION (a service
// account key relative to the working directory).
func NewGCSStorage(ctx context.Context, bucket string) (*GCSStorage, error) {
	credentialsPath := os.Getenv("CREDENTIALS_FILE_LOCATION")
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	client, err := storage.NewClient(ctx, option.WithAuthCredentialsFile(option.ServiceAccount, filepath.Join(wd, credentialsPath)))
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return &GCSStorage{client: client, bucket: bucket}, nil
}

func (s *GCSStorage) objectName(filename string) string {
	return "photos/" + filename
}

func (s *GCSStorage) Save(filename string, r io.Reader, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
	defer cancel()

	obj := s.client.Bucket(s.bucket).Object(s.objectName(filename))
	w := obj.NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	w.CacheControl = "no-cache"

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload copy: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload close: %w", err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, s.objectName(filename)), nil
}

func (s *GCSStorage) Delete(filename string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.client.Bucket(s.bucket).Object(s.objectName(filename)).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", s.objectName(filename), err)
	}
	return nil
}
