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
)

// RunRepository handles workflow run and log database operations.
type RunRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *RunRepository) CreateRun(ctx context.Context, run *models.WorkflowRun) error {
	if run.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return persistence.NewRunError("CreateRun", "", fmt.Errorf("failed to generate run ID: %w", err))
		}

		run.ID = id.String()
	}

	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	if run.Status == "" {
		run.Status = models.RunStatusRunning
	}

	query := `
		INSERT INTO workflow_runs (id, workflow_id, document_id, status, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.WorkflowID,
		run.DocumentID,
		run.Status,
		run.StartedAt,
	)
	if err != nil {
		return persistence.NewRunError("CreateRun", run.ID, err)
	}

	return nil
}

func (r *RunRepository) FinalizeRun(ctx context.Context, runID string, status models.RunStatus, finishedAt time.Time) error {
	query := `UPDATE workflow_runs SET status = $2, finished_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, runID, status, finishedAt)
	if err != nil {
		return persistence.NewRunError("FinalizeRun", runID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewRunError("FinalizeRun", runID, err)
	}

	if affected == 0 {
		return persistence.NewRunError("FinalizeRun", runID, persistence.ErrRunNotFound)
	}

	return nil
}

func (r *RunRepository) RunByID(ctx context.Context, id string) (*models.WorkflowRun, error) {
	query := `
		SELECT id, workflow_id, document_id, status, started_at, finished_at
		FROM workflow_runs
		WHERE id = $1
	`

	var run models.WorkflowRun

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.WorkflowID,
		&run.DocumentID,
		&run.Status,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewRunError("RunByID", id, persistence.ErrRunNotFound)
		}

		return nil, persistence.NewRunError("RunByID", id, err)
	}

	return &run, nil
}

func (r *RunRepository) AppendLog(ctx context.Context, log *models.WorkflowLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	dataJSON, err := json.Marshal(log.Data)
	if err != nil {
		return persistence.NewRunError("AppendLog", log.WorkflowRunID, fmt.Errorf("failed to marshal log data: %w", err))
	}

	query := `
		INSERT INTO workflow_logs (id, workflow_run_id, step_order, node_id, status, message, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		log.ID,
		log.WorkflowRunID,
		log.StepOrder,
		log.NodeID,
		log.Status,
		log.Message,
		dataJSON,
		log.CreatedAt,
	)
	if err != nil {
		return persistence.NewRunError("AppendLog", log.WorkflowRunID, err)
	}

	return nil
}

func (r *RunRepository) LogsByRunID(ctx context.Context, runID string) ([]*models.WorkflowLog, error) {
	query := `
		SELECT id, workflow_run_id, step_order, node_id, status, message, data, created_at
		FROM workflow_logs
		WHERE workflow_run_id = $1
		ORDER BY step_order, created_at
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, persistence.NewRunError("LogsByRunID", runID, err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	logs := make([]*models.WorkflowLog, 0)

	for rows.Next() {
		var (
			log      models.WorkflowLog
			dataJSON []byte
		)

		err := rows.Scan(
			&log.ID,
			&log.WorkflowRunID,
			&log.StepOrder,
			&log.NodeID,
			&log.Status,
			&log.Message,
			&dataJSON,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, persistence.NewRunError("LogsByRunID", runID, err)
		}

		if dataJSON != nil {
			err := json.Unmarshal(dataJSON, &log.Data)
			if err != nil {
				return nil, persistence.NewRunError("LogsByRunID", runID, fmt.Errorf("failed to unmarshal log data: %w", err))
			}
		}

		logs = append(logs, &log)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewRunError("LogsByRunID", runID, err)
	}

	return logs, nil
}
