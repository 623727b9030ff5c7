// Package extractor provides extraction provider implementations.
package extractor

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/protocol"
)

const (
	mockMinDelay = 500 * time.Millisecond
	mockMaxDelay = 1500 * time.Millisecond
)

// MockExtractor is a deterministic stand-in for a real OCR/extraction
// provider, used in development and tests. Output is seeded from the
// filename so repeated extractions of the same document agree, and each call
// sleeps a simulated provider latency unless constructed with NoDelay.
type MockExtractor struct {
	delay bool
}

func NewMockExtractor() *MockExtractor {
	return &MockExtractor{delay: true}
}

// NewMockExtractorNoDelay skips the simulated latency. For tests.
func NewMockExtractorNoDelay() *MockExtractor {
	return &MockExtractor{}
}

func (e *MockExtractor) Extract(ctx context.Context, input protocol.ExtractInput) (*protocol.ExtractResult, error) {
	seed := fnv.New64a()
	_, _ = seed.Write([]byte(input.Filename))

	rng := rand.New(rand.NewSource(int64(seed.Sum64()))) //nolint:gosec // deterministic mock output, not crypto

	if e.delay {
		latency := mockMinDelay + time.Duration(rng.Int63n(int64(mockMaxDelay-mockMinDelay)))
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	invoiceNumber := fmt.Sprintf("INV-%05d", rng.Intn(100000))
	total := float64(rng.Intn(500000)) / 100
	vendor := []string{"Acme Corp", "Globex", "Initech", "Umbrella Supplies"}[rng.Intn(4)]
	dueDate := time.Now().AddDate(0, 0, rng.Intn(60)).Format("2006-01-02")

	fields := []protocol.ExtractedField{
		{Key: "invoice_number", Value: invoiceNumber, Confidence: confidence(rng), Page: 1, BBox: bbox(rng)},
		{Key: "total_amount", Value: fmt.Sprintf("%.2f", total), Confidence: confidence(rng), Page: 1, BBox: bbox(rng)},
		{Key: "vendor_name", Value: vendor, Confidence: confidence(rng), Page: 1, BBox: bbox(rng)},
		{Key: "due_date", Value: dueDate, Confidence: confidence(rng), Page: 1, BBox: bbox(rng)},
	}

	fullText := fmt.Sprintf("Invoice %s from %s, total %.2f, due %s", invoiceNumber, vendor, total, dueDate)

	tokens := make([]protocol.ExtractedToken, 0, len(fields))
	for i, field := range fields {
		tokens = append(tokens, protocol.ExtractedToken{
			Page:        1,
			Text:        field.Value,
			BBox:        field.BBox,
			LineNumber:  i + 1,
			BlockNumber: 1,
			Confidence:  field.Confidence,
		})
	}

	return &protocol.ExtractResult{
		FullText: fullText,
		Data:     map[string]any{"provider": "mock", "filename": input.Filename},
		Fields:   fields,
		Tokens:   tokens,
	}, nil
}

func confidence(rng *rand.Rand) float64 {
	// Skewed towards high confidence, dipping low often enough to exercise
	// review routing.
	return 0.70 + rng.Float64()*0.30
}

func bbox(rng *rand.Rand) *models.BoundingBox {
	return &models.BoundingBox{
		X:      rng.Float64() * 0.8,
		Y:      rng.Float64() * 0.9,
		Width:  0.05 + rng.Float64()*0.15,
		Height: 0.01 + rng.Float64()*0.03,
	}
}
