// Package blob provides blob storage implementations.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FilesystemStore implements protocol.BlobStore on a local directory. The
// content type is recorded in a sidecar file so exports round-trip through
// dev environments the same way they do through object storage.
type FilesystemStore struct {
	root string
}

func NewFilesystemStore(root string) *FilesystemStore {
	return &FilesystemStore{root: root}
}

func (s *FilesystemStore) Upload(_ context.Context, path string, data []byte, contentType string) error {
	fullPath := filepath.Join(s.root, filepath.Clean(path))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}

	if err := os.WriteFile(fullPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", path, err)
	}

	if contentType != "" {
		if err := os.WriteFile(fullPath+".content-type", []byte(contentType), 0o600); err != nil {
			return fmt.Errorf("failed to write blob metadata %s: %w", path, err)
		}
	}

	return nil
}
