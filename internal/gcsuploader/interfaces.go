package gcsuploader

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/wealthsense/internal/gcs"
)

// GCSStorageService is the concrete implementation of gcs.StorageService
// that interacts with Google Cloud Storage.
type GCSStorageService struct {
	client *storage.Client
}

// NewGCSStorageService creates a storage client using Application Default
// Credentials.
func NewGCSStorageService(ctx context.Context) (*GCSStorageService, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStorageService{client: client}, nil
}

// Close releases the storage client.
func (s *GCSStorageService) Close() error {
	return s.client.Close()
}

// WriteObject implements gcs.StorageService.
func (s *GCSStorageService) WriteObject(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error {
	return WriteObject(ctx, s.client, bucketName, objectName, data, contentType)
}

// ReadObject implements gcs.StorageService.
func (s *GCSStorageService) ReadObject(ctx context.Context, gcsURI string) ([]byte, error) {
	return ReadObject(ctx, s.client, gcsURI)
}

var _ gcs.StorageService = (*GCSStorageService)(nil)
