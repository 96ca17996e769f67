package storage

import (
	"context"
	"errors"
)

// ErrUploaderDisabled is returned by NullUploader so callers can fall back
// to inline image storage.
var ErrUploaderDisabled = errors.New("image uploader is not configured")

// ImageUploader stores an image and returns its public URL. Implementations
// must be safe for concurrent use.
type ImageUploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// NullUploader is the uploader used when no object storage is configured.
// Every upload fails with ErrUploaderDisabled.
type NullUploader struct{}

func NewNullUploader() *NullUploader {
	return &NullUploader{}
}

func (n *NullUploader) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	return "", ErrUploaderDisabled
}
