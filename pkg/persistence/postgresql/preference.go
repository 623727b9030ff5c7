package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/google/uuid"
)

// PreferenceRepository handles notification preference database operations.
type PreferenceRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *PreferenceRepository) PreferencesByOrg(ctx context.Context, orgID string) ([]*models.NotificationPreference, error) {
	query := `
		SELECT org_id, email, document_approved, needs_review, workflow_error
		FROM notification_preferences
		WHERE org_id = $1
		ORDER BY email
	`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences for org %s: %w", orgID, err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	preferences := make([]*models.NotificationPreference, 0)

	for rows.Next() {
		var preference models.NotificationPreference

		err := rows.Scan(
			&preference.OrgID,
			&preference.Email,
			&preference.DocumentApproved,
			&preference.NeedsReview,
			&preference.WorkflowError,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}

		preferences = append(preferences, &preference)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating preferences: %w", err)
	}

	return preferences, nil
}

// AuditRepository appends audit entries.
type AuditRepository struct {
	db *sql.DB
}

func (r *AuditRepository) AppendAudit(ctx context.Context, entry *models.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	query := `
		INSERT INTO audit_log (id, org_id, action, entity_type, entity_id, details)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.OrgID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		detailsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}
