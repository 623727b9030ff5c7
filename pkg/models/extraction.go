package models

import "time"

// Extraction holds the full result of running the extraction provider
// against one document. At most one extraction exists per document.
type Extraction struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id" validate:"required"`
	FullText   string         `json:"full_text"`
	Data       map[string]any `json:"data,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// BoundingBox locates a field or token on a page, in page-relative units.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Field is one named, valued, confidence-scored datum extracted from a
// document (e.g. invoice_number).
type Field struct {
	ID           string       `json:"id"`
	ExtractionID string       `json:"extraction_id"`
	Key          string       `json:"key"   validate:"required"`
	Value        string       `json:"value"`
	Confidence   float64      `json:"confidence"`
	BBox         *BoundingBox `json:"bbox,omitempty"`
	Page         int          `json:"page"`
}

// Token is one raw OCR token, kept for review-time highlighting.
type Token struct {
	ID           string       `json:"id"`
	ExtractionID string       `json:"extraction_id"`
	Page         int          `json:"page"`
	Text         string       `json:"text"`
	BBox         *BoundingBox `json:"bbox,omitempty"`
	LineNumber   int          `json:"line_number"`
	BlockNumber  int          `json:"block_number"`
	Confidence   float64      `json:"confidence"`
}
