package protocol

import (
	"context"

	"github.com/docpipe/docpipe/pkg/models"
)

// ExtractInput identifies the document handed to the extraction provider.
type ExtractInput struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
}

// ExtractedField is one field as produced by the provider, before
// persistence assigns ids.
type ExtractedField struct {
	Key        string              `json:"key"`
	Value      string              `json:"value"`
	Confidence float64             `json:"confidence"`
	BBox       *models.BoundingBox `json:"bbox,omitempty"`
	Page       int                 `json:"page"`
}

// ExtractedToken is one raw OCR token as produced by the provider.
type ExtractedToken struct {
	Page        int                 `json:"page"`
	Text        string              `json:"text"`
	BBox        *models.BoundingBox `json:"bbox,omitempty"`
	LineNumber  int                 `json:"line_number"`
	BlockNumber int                 `json:"block_number"`
	Confidence  float64             `json:"confidence"`
}

// ExtractResult is the full provider output for one document.
type ExtractResult struct {
	FullText string           `json:"full_text"`
	Data     map[string]any   `json:"data,omitempty"`
	Fields   []ExtractedField `json:"fields"`
	Tokens   []ExtractedToken `json:"tokens,omitempty"`
}

// Extractor is the external extraction provider. Calls are awaited and may
// be slow; the engine applies no timeout of its own.
type Extractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractResult, error)
}
