package gcs

import (
	"context"
)

// StorageService provides an interface for cloud storage operations.
// This interface enables mocking and testing of storage functionality.
type StorageService interface {
	// WriteObject stores data under bucket/object, replacing any previous
	// content.
	WriteObject(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error

	// ReadObject downloads object bytes from the given gs:// URI.
	ReadObject(ctx context.Context, gcsURI string) ([]byte, error)
}
