package llm

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/wellspring-lab/wellspring/pkg/domain/interfaces"
	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
)

// DefaultEmbedTimeout bounds a single embedding call
const DefaultEmbedTimeout = 5 * time.Second

// Embedder adapts a gollem.LLMClient to the narrow embedding collaborator.
// Every call carries an explicit timeout; a timed-out call is reported as
// types.ErrEmbeddingTimeout so retrieval can degrade instead of failing
// the turn.
type Embedder struct {
	client    gollem.LLMClient
	dimension int
	timeout   time.Duration
}

var _ interfaces.Embedder = &Embedder{}

// EmbedderOption is a functional option for Embedder configuration
type EmbedderOption func(*Embedder)

// WithEmbedTimeout overrides the per-call timeout
func WithEmbedTimeout(d time.Duration) EmbedderOption {
	return func(e *Embedder) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithDimension overrides the embedding dimensionality
func WithDimension(dim int) EmbedderOption {
	return func(e *Embedder) {
		if dim > 0 {
			e.dimension = dim
		}
	}
}

// NewEmbedder creates an Embedder backed by the given LLM client
func NewEmbedder(client gollem.LLMClient, opts ...EmbedderOption) (*Embedder, error) {
	if client == nil {
		return nil, goerr.New("LLM client is required")
	}

	e := &Embedder{
		client:    client,
		dimension: model.DefaultEmbeddingDimension,
		timeout:   DefaultEmbedTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Dimension returns the fixed dimensionality of produced vectors
func (e *Embedder) Dimension() int {
	return e.dimension
}

// Embed returns one vector per input text
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	embeddings, err := e.client.GenerateEmbedding(ctx, e.dimension, texts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, goerr.Wrap(types.ErrEmbeddingTimeout, "embedding provider timed out",
				goerr.V("texts", len(texts)), goerr.V("timeout", e.timeout))
		}
		return nil, goerr.Wrap(err, "failed to generate embeddings", goerr.V("texts", len(texts)))
	}
	if len(embeddings) != len(texts) {
		return nil, goerr.New("embedding count mismatch",
			goerr.V("want", len(texts)), goerr.V("got", len(embeddings)))
	}

	vectors := make([][]float32, len(embeddings))
	for i, emb := range embeddings {
		v := make([]float32, len(emb))
		for j, f := range emb {
			v[j] = float32(f)
		}
		vectors[i] = v
	}
	return vectors, nil
}
