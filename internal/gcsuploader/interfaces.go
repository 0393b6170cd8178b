package gcsuploader

import (
	"context"
)

// StorageService is the part of Cloud Storage the statement pipeline needs.
type StorageService interface {
	// UploadBytes writes data to bucket/objectName and returns its gs:// URI.
	UploadBytes(ctx context.Context, bucketName, objectName string, data []byte) (string, error)

	// FetchFromGCS downloads file bytes from the given gs:// URI.
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
}

// GCSStorageService implements StorageService on a shared storage client.
type GCSStorageService struct {
	uploader *Uploader
}

// NewGCSStorageService wraps an Uploader.
func NewGCSStorageService(u *Uploader) *GCSStorageService {
	return &GCSStorageService{uploader: u}
}

// UploadBytes delegates to the uploader.
func (s *GCSStorageService) UploadBytes(ctx context.Context, bucketName, objectName string, data []byte) (string, error) {
	return s.uploader.UploadBytes(ctx, bucketName, objectName, data)
}

// FetchFromGCS delegates to the uploader.
func (s *GCSStorageService) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	return s.uploader.FetchFromGCS(ctx, gcsURI)
}

var _ StorageService = (*GCSStorageService)(nil)
