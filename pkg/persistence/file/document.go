package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/google/uuid"
)

// DocumentRepository handles document-related file operations.
type DocumentRepository struct {
	root string
}

func (dr *DocumentRepository) path(id string) string {
	return filepath.Join(dr.root, "documents", id+".json")
}

func (dr *DocumentRepository) DocumentByID(_ context.Context, id string) (*models.Document, error) {
	var document models.Document

	err := readJSON(dr.path(id), &document)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.ErrDocumentNotFound
		}

		return nil, fmt.Errorf("failed to load document %s: %w", id, err)
	}

	return &document, nil
}

func (dr *DocumentRepository) DocumentsByStatus(ctx context.Context, orgID string, status models.DocumentStatus) ([]*models.Document, error) {
	ids, err := listJSONFiles(filepath.Join(dr.root, "documents"))
	if err != nil {
		return nil, err
	}

	documents := make([]*models.Document, 0, len(ids))

	for _, id := range ids {
		document, err := dr.DocumentByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if document.OrgID == orgID && document.Status == status {
			documents = append(documents, document)
		}
	}

	return documents, nil
}

func (dr *DocumentRepository) SaveDocument(_ context.Context, document *models.Document) error {
	now := time.Now().UTC()

	if document.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate document ID: %w", err)
		}

		document.ID = id.String()
	}

	if document.CreatedAt.IsZero() {
		document.CreatedAt = now
	}

	if document.Status == "" {
		document.Status = models.DocumentStatusUploaded
	}

	document.UpdatedAt = now

	return writeJSON(dr.path(document.ID), document)
}

func (dr *DocumentRepository) UpdateDocumentStatus(ctx context.Context, id string, status models.DocumentStatus) error {
	document, err := dr.DocumentByID(ctx, id)
	if err != nil {
		return err
	}

	document.Status = status
	document.UpdatedAt = time.Now().UTC()

	return writeJSON(dr.path(id), document)
}
