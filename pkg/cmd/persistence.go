package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/docpipe/docpipe/pkg/persistence/file"
	"github.com/docpipe/docpipe/pkg/persistence/postgresql"
)

// NewPersistence picks the backend from the database URL scheme. A
// postgres:// or postgresql:// URL selects the PostgreSQL backend;
// anything else is treated as a filesystem root for the file backend.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://")), nil
	}
}
