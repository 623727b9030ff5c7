package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/google/uuid"
)

// RunRepository handles workflow run and log file operations.
type RunRepository struct {
	root string
}

func (rr *RunRepository) runPath(id string) string {
	return filepath.Join(rr.root, "runs", id+".json")
}

func (rr *RunRepository) logsPath(runID string) string {
	return filepath.Join(rr.root, "runs", runID+".logs.json")
}

func (rr *RunRepository) CreateRun(_ context.Context, run *models.WorkflowRun) error {
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

	return writeJSON(rr.runPath(run.ID), run)
}

func (rr *RunRepository) FinalizeRun(ctx context.Context, runID string, status models.RunStatus, finishedAt time.Time) error {
	run, err := rr.RunByID(ctx, runID)
	if err != nil {
		return err
	}

	run.Status = status
	run.FinishedAt = &finishedAt

	return writeJSON(rr.runPath(runID), run)
}

func (rr *RunRepository) RunByID(_ context.Context, id string) (*models.WorkflowRun, error) {
	var run models.WorkflowRun

	err := readJSON(rr.runPath(id), &run)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewRunError("RunByID", id, persistence.ErrRunNotFound)
		}

		return nil, persistence.NewRunError("RunByID", id, err)
	}

	return &run, nil
}

func (rr *RunRepository) AppendLog(ctx context.Context, log *models.WorkflowLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	logs, err := rr.LogsByRunID(ctx, log.WorkflowRunID)
	if err != nil {
		return err
	}

	logs = append(logs, log)

	return writeJSON(rr.logsPath(log.WorkflowRunID), logs)
}

func (rr *RunRepository) LogsByRunID(_ context.Context, runID string) ([]*models.WorkflowLog, error) {
	var logs []*models.WorkflowLog

	err := readJSON(rr.logsPath(runID), &logs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*models.WorkflowLog{}, nil
		}

		return nil, persistence.NewRunError("LogsByRunID", runID, err)
	}

	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].StepOrder < logs[j].StepOrder
	})

	return logs, nil
}
