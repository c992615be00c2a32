package node

import (
	"context"

	"github.com/BaSui01/mediaflow/auth"
	"github.com/BaSui01/mediaflow/media"
)

// GenerateRequest carries everything a backend needs to produce media.
// Input media arrives as resolved references: remote URIs when storage
// is available, inline bytes otherwise.
type GenerateRequest struct {
	// Model is the backend model identifier.
	Model string
	// Prompt is the text prompt.
	Prompt string
	// NegativePrompt describes content to avoid. Optional.
	NegativePrompt string
	// Count is the number of items to generate.
	Count int
	// AspectRatio is the target aspect ratio ("16:9"). Optional.
	AspectRatio string
	// Seed makes generation reproducible when non-nil.
	Seed *int64
	// References are resolved input media (style images, first frames).
	References []media.Reference
	// Options carries backend-specific parameters not modeled above.
	Options map[string]any
}

// GenerateResult is the backend's response: one item per generated output.
type GenerateResult struct {
	Items []media.Item
	// Logs is backend-provided progress output, if any.
	Logs string
}

// Generator produces media through a cloud backend. Implementations own
// all network interaction with the generation API; nodes own credential
// resolution, media caching, and output layout.
type Generator interface {
	Generate(ctx context.Context, id *auth.Identity, req GenerateRequest) (*GenerateResult, error)
}

// AnalyzeRequest carries a prompt and the media it asks about.
type AnalyzeRequest struct {
	Model      string
	Prompt     string
	References []media.Reference
	Options    map[string]any
}

// Analyzer answers questions about media through a cloud backend.
type Analyzer interface {
	Analyze(ctx context.Context, id *auth.Identity, req AnalyzeRequest) (string, error)
}
