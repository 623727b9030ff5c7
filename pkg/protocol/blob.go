package protocol

import "context"

// BlobStore is the external blob storage used by csv_export.
type BlobStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
}
