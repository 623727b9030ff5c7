package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/google/uuid"
)

// PreferenceRepository handles notification preference file operations, one
// file per organization.
type PreferenceRepository struct {
	root string
}

func (pr *PreferenceRepository) path(orgID string) string {
	return filepath.Join(pr.root, "preferences", orgID+".json")
}

func (pr *PreferenceRepository) PreferencesByOrg(_ context.Context, orgID string) ([]*models.NotificationPreference, error) {
	var preferences []*models.NotificationPreference

	err := readJSON(pr.path(orgID), &preferences)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*models.NotificationPreference{}, nil
		}

		return nil, fmt.Errorf("failed to load preferences for org %s: %w", orgID, err)
	}

	return preferences, nil
}

// SavePreferences replaces the preference set for an organization. Used by
// tests and dev seeding; the engine only reads preferences.
func (pr *PreferenceRepository) SavePreferences(_ context.Context, orgID string, preferences []*models.NotificationPreference) error {
	for _, preference := range preferences {
		preference.OrgID = orgID
	}

	return writeJSON(pr.path(orgID), preferences)
}

// AuditRepository appends audit entries to one JSON-lines file.
type AuditRepository struct {
	root string
}

func (ar *AuditRepository) AppendAudit(_ context.Context, entry *models.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	path := filepath.Join(ar.root, "audit.log")

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}
