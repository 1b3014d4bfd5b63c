package storage

import (
	"context"
	"io"
)

// UploadResult describes the object written to the public bucket.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader is the object-storage contract behind the club hero
// image: Upload overwrites the object at a fixed key and Delete
// removes it when the hero is taken down.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error
}
