package interfaces

import (
	"context"

	"github.com/wellspring-lab/wellspring/pkg/domain/model"
)

// Embedder is the narrow embedding collaborator: text in, fixed-dimension
// vector out. Must be deterministic for identical input so retrieval stays
// reproducible.
type Embedder interface {
	// Embed returns one vector per input text
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the fixed dimensionality of produced vectors
	Dimension() int
}

// Generator is the narrow completion collaborator. It may fail or time out
// and is treated as unreliable; failures are surfaced, never absorbed.
type Generator interface {
	// Complete turns the assembled prompt into response text
	Complete(ctx context.Context, prompt *model.PromptContext) (string, error)
}
