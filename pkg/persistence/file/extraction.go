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

// ExtractionRepository handles extraction, field and token file operations.
// Everything is keyed by document id: one extraction file plus sibling
// fields/tokens files per document.
type ExtractionRepository struct {
	root string
}

func (er *ExtractionRepository) extractionPath(documentID string) string {
	return filepath.Join(er.root, "extractions", documentID+".json")
}

func (er *ExtractionRepository) fieldsPath(documentID string) string {
	return filepath.Join(er.root, "extractions", documentID+".fields.json")
}

func (er *ExtractionRepository) tokensPath(documentID string) string {
	return filepath.Join(er.root, "extractions", documentID+".tokens.json")
}

func (er *ExtractionRepository) ExtractionByDocumentID(_ context.Context, documentID string) (*models.Extraction, error) {
	var extraction models.Extraction

	err := readJSON(er.extractionPath(documentID), &extraction)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.ErrExtractionNotFound
		}

		return nil, fmt.Errorf("failed to load extraction for document %s: %w", documentID, err)
	}

	return &extraction, nil
}

func (er *ExtractionRepository) SaveExtraction(ctx context.Context, extraction *models.Extraction) error {
	if _, err := er.ExtractionByDocumentID(ctx, extraction.DocumentID); err == nil {
		return persistence.ErrExtractionAlreadyExists
	} else if !persistence.IsExtractionNotFound(err) {
		return err
	}

	if extraction.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate extraction ID: %w", err)
		}

		extraction.ID = id.String()
	}

	if extraction.CreatedAt.IsZero() {
		extraction.CreatedAt = time.Now().UTC()
	}

	return writeJSON(er.extractionPath(extraction.DocumentID), extraction)
}

func (er *ExtractionRepository) SaveFields(ctx context.Context, fields []*models.Field) error {
	if len(fields) == 0 {
		return nil
	}

	for _, field := range fields {
		if field.ID == "" {
			field.ID = uuid.New().String()
		}
	}

	documentID, err := er.documentIDFor(ctx, fields[0].ExtractionID)
	if err != nil {
		return err
	}

	return writeJSON(er.fieldsPath(documentID), fields)
}

func (er *ExtractionRepository) SaveTokens(ctx context.Context, tokens []*models.Token) error {
	if len(tokens) == 0 {
		return nil
	}

	for _, token := range tokens {
		if token.ID == "" {
			token.ID = uuid.New().String()
		}
	}

	documentID, err := er.documentIDFor(ctx, tokens[0].ExtractionID)
	if err != nil {
		return err
	}

	return writeJSON(er.tokensPath(documentID), tokens)
}

func (er *ExtractionRepository) FieldsByDocumentID(_ context.Context, documentID string) ([]*models.Field, error) {
	var fields []*models.Field

	err := readJSON(er.fieldsPath(documentID), &fields)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*models.Field{}, nil
		}

		return nil, fmt.Errorf("failed to load fields for document %s: %w", documentID, err)
	}

	return fields, nil
}

// documentIDFor resolves an extraction id back to its document by scanning
// the extraction files. Acceptable for the file backend's scale.
func (er *ExtractionRepository) documentIDFor(ctx context.Context, extractionID string) (string, error) {
	ids, err := listJSONFiles(filepath.Join(er.root, "extractions"))
	if err != nil {
		return "", err
	}

	for _, id := range ids {
		if filepath.Ext(id) != "" {
			continue // fields/tokens sibling files
		}

		extraction, err := er.ExtractionByDocumentID(ctx, id)
		if err != nil {
			continue
		}

		if extraction.ID == extractionID {
			return extraction.DocumentID, nil
		}
	}

	return "", fmt.Errorf("extraction %s: %w", extractionID, persistence.ErrExtractionNotFound)
}
