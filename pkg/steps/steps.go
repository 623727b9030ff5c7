// Package steps wires the built-in step factories into a registry.
package steps

import (
	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/docpipe/docpipe/pkg/protocol"
	"github.com/docpipe/docpipe/pkg/registry"
	"github.com/docpipe/docpipe/pkg/steps/csvexport"
	"github.com/docpipe/docpipe/pkg/steps/extract"
	"github.com/docpipe/docpipe/pkg/steps/filter"
	"github.com/docpipe/docpipe/pkg/steps/ingest"
	"github.com/docpipe/docpipe/pkg/steps/notify"
	"github.com/docpipe/docpipe/pkg/steps/review"
	"github.com/docpipe/docpipe/pkg/steps/rule"
	switchstep "github.com/docpipe/docpipe/pkg/steps/switch"
	"github.com/docpipe/docpipe/pkg/steps/webhookexport"
)

// RegisterDefaults registers every built-in step factory against the given
// registry.
func RegisterDefaults(
	reg *registry.Registry,
	p persistence.Persistence,
	extractor protocol.Extractor,
	sender protocol.Notifier,
	blobs protocol.BlobStore,
) {
	reg.RegisterStep(ingest.NewIngestStepFactory(models.NodeTypeUpload, "Upload"))
	reg.RegisterStep(ingest.NewIngestStepFactory(models.NodeTypeAPIIngest, "API Ingest"))
	reg.RegisterStep(ingest.NewIngestStepFactory(models.NodeTypeEmailIngest, "Email Ingest"))
	reg.RegisterStep(extract.NewExtractStepFactory(p, extractor))
	reg.RegisterStep(rule.NewRuleStepFactory(p))
	reg.RegisterStep(switchstep.NewSwitchStepFactory(p))
	reg.RegisterStep(filter.NewFilterStepFactory(p))
	reg.RegisterStep(review.NewReviewStepFactory(p))
	reg.RegisterStep(webhookexport.NewWebhookExportStepFactory(p))
	reg.RegisterStep(csvexport.NewCSVExportStepFactory(p, blobs))
	reg.RegisterStep(notify.NewNotifyStepFactory(p, sender))
}
