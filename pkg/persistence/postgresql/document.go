package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/google/uuid"
)

// DocumentRepository handles document-related database operations.
type DocumentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *DocumentRepository) DocumentByID(ctx context.Context, id string) (*models.Document, error) {
	query := `
		SELECT id, org_id, filename, mime_type, model_id, status, created_at, updated_at
		FROM documents
		WHERE id = $1
	`

	var document models.Document

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&document.ID,
		&document.OrgID,
		&document.Filename,
		&document.MimeType,
		&document.ModelID,
		&document.Status,
		&document.CreatedAt,
		&document.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrDocumentNotFound
		}

		return nil, fmt.Errorf("failed to query document %s: %w", id, err)
	}

	return &document, nil
}

func (r *DocumentRepository) DocumentsByStatus(ctx context.Context, orgID string, status models.DocumentStatus) ([]*models.Document, error) {
	query := `
		SELECT id, org_id, filename, mime_type, model_id, status, created_at, updated_at
		FROM documents
		WHERE org_id = $1 AND status = $2
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, orgID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents by status: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	var documents []*models.Document

	for rows.Next() {
		var document models.Document

		err := rows.Scan(
			&document.ID,
			&document.OrgID,
			&document.Filename,
			&document.MimeType,
			&document.ModelID,
			&document.Status,
			&document.CreatedAt,
			&document.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		documents = append(documents, &document)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return documents, nil
}

func (r *DocumentRepository) SaveDocument(ctx context.Context, document *models.Document) error {
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

	query := `
		INSERT INTO documents (id, org_id, filename, mime_type, model_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			filename = EXCLUDED.filename,
			mime_type = EXCLUDED.mime_type,
			model_id = EXCLUDED.model_id,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		document.ID,
		document.OrgID,
		document.Filename,
		document.MimeType,
		document.ModelID,
		document.Status,
		document.CreatedAt,
		document.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	return nil
}

func (r *DocumentRepository) UpdateDocumentStatus(ctx context.Context, id string, status models.DocumentStatus) error {
	query := `UPDATE documents SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		return persistence.ErrDocumentNotFound
	}

	return nil
}
