package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ExtractionRepository handles extraction, field and token database
// operations.
type ExtractionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *ExtractionRepository) ExtractionByDocumentID(ctx context.Context, documentID string) (*models.Extraction, error) {
	query := `
		SELECT id, document_id, full_text, data, created_at
		FROM extractions
		WHERE document_id = $1
	`

	var (
		extraction models.Extraction
		dataJSON   []byte
	)

	err := r.db.QueryRowContext(ctx, query, documentID).Scan(
		&extraction.ID,
		&extraction.DocumentID,
		&extraction.FullText,
		&dataJSON,
		&extraction.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrExtractionNotFound
		}

		return nil, fmt.Errorf("failed to query extraction for document %s: %w", documentID, err)
	}

	if dataJSON != nil {
		err := json.Unmarshal(dataJSON, &extraction.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal extraction data: %w", err)
		}
	}

	return &extraction, nil
}

// SaveExtraction inserts one extraction row. The unique index on
// document_id turns a concurrent duplicate insert into
// ErrExtractionAlreadyExists instead of a second row.
func (r *ExtractionRepository) SaveExtraction(ctx context.Context, extraction *models.Extraction) error {
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

	dataJSON, err := json.Marshal(extraction.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal extraction data: %w", err)
	}

	query := `
		INSERT INTO extractions (id, document_id, full_text, data, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = r.db.ExecContext(ctx, query,
		extraction.ID,
		extraction.DocumentID,
		extraction.FullText,
		dataJSON,
		extraction.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return persistence.ErrExtractionAlreadyExists
		}

		return fmt.Errorf("failed to save extraction: %w", err)
	}

	return nil
}

func (r *ExtractionRepository) SaveFields(ctx context.Context, fields []*models.Field) error {
	for _, field := range fields {
		if field.ID == "" {
			field.ID = uuid.New().String()
		}

		bboxJSON, err := json.Marshal(field.BBox)
		if err != nil {
			return fmt.Errorf("failed to marshal field bbox: %w", err)
		}

		query := `
			INSERT INTO extraction_fields (id, extraction_id, key, value, confidence, bbox, page)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`

		_, err = r.db.ExecContext(ctx, query,
			field.ID,
			field.ExtractionID,
			field.Key,
			field.Value,
			field.Confidence,
			bboxJSON,
			field.Page,
		)
		if err != nil {
			return fmt.Errorf("failed to save field %s: %w", field.Key, err)
		}
	}

	return nil
}

func (r *ExtractionRepository) SaveTokens(ctx context.Context, tokens []*models.Token) error {
	for _, token := range tokens {
		if token.ID == "" {
			token.ID = uuid.New().String()
		}

		bboxJSON, err := json.Marshal(token.BBox)
		if err != nil {
			return fmt.Errorf("failed to marshal token bbox: %w", err)
		}

		query := `
			INSERT INTO extraction_tokens (id, extraction_id, page, text, bbox, line_number, block_number, confidence)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`

		_, err = r.db.ExecContext(ctx, query,
			token.ID,
			token.ExtractionID,
			token.Page,
			token.Text,
			bboxJSON,
			token.LineNumber,
			token.BlockNumber,
			token.Confidence,
		)
		if err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}
	}

	return nil
}

func (r *ExtractionRepository) FieldsByDocumentID(ctx context.Context, documentID string) ([]*models.Field, error) {
	query := `
		SELECT f.id, f.extraction_id, f.key, f.value, f.confidence, f.bbox, f.page
		FROM extraction_fields f
		JOIN extractions e ON e.id = f.extraction_id
		WHERE e.document_id = $1
		ORDER BY f.key
	`

	rows, err := r.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fields for document %s: %w", documentID, err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	fields := make([]*models.Field, 0)

	for rows.Next() {
		var (
			field    models.Field
			bboxJSON []byte
		)

		err := rows.Scan(
			&field.ID,
			&field.ExtractionID,
			&field.Key,
			&field.Value,
			&field.Confidence,
			&bboxJSON,
			&field.Page,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan field: %w", err)
		}

		if bboxJSON != nil {
			err := json.Unmarshal(bboxJSON, &field.BBox)
			if err != nil {
				return nil, fmt.Errorf("failed to unmarshal field bbox: %w", err)
			}
		}

		fields = append(fields, &field)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fields: %w", err)
	}

	return fields, nil
}
