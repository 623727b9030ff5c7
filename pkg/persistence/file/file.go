// Package file provides file-based persistence for development and tests.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/docpipe/docpipe/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface on the file
// system, one JSON document per entity under a root directory.
type Persistence struct {
	root            string
	workflowRepo    *WorkflowRepository
	documentRepo    *DocumentRepository
	extractionRepo  *ExtractionRepository
	runRepo         *RunRepository
	preferenceRepo  *PreferenceRepository
	auditRepo       *AuditRepository
}

// NewPersistence creates a new instance of Persistence rooted at the given
// directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:           cleanRoot,
		workflowRepo:   &WorkflowRepository{root: cleanRoot},
		documentRepo:   &DocumentRepository{root: cleanRoot},
		extractionRepo: &ExtractionRepository{root: cleanRoot},
		runRepo:        &RunRepository{root: cleanRoot},
		preferenceRepo: &PreferenceRepository{root: cleanRoot},
		auditRepo:      &AuditRepository{root: cleanRoot},
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is
// nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

func (fp *Persistence) DocumentRepository() persistence.DocumentRepository {
	return fp.documentRepo
}

func (fp *Persistence) ExtractionRepository() persistence.ExtractionRepository {
	return fp.extractionRepo
}

func (fp *Persistence) RunRepository() persistence.RunRepository {
	return fp.runRepo
}

func (fp *Persistence) NotificationPreferenceRepository() persistence.NotificationPreferenceRepository {
	return fp.preferenceRepo
}

func (fp *Persistence) AuditRepository() persistence.AuditRepository {
	return fp.auditRepo
}
