package cmd

import (
	"log/slog"

	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/docpipe/docpipe/pkg/protocol"
	"github.com/docpipe/docpipe/pkg/registry"
	"github.com/docpipe/docpipe/pkg/steps"
)

// NewRegistry builds a registry with every built-in step registered.
func NewRegistry(
	logger *slog.Logger,
	p persistence.Persistence,
	extractor protocol.Extractor,
	sender protocol.Notifier,
	blobs protocol.BlobStore,
) *registry.Registry {
	reg := registry.NewRegistry(logger)
	steps.RegisterDefaults(reg, p, extractor, sender, blobs)

	return reg
}
