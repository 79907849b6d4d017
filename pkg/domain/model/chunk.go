package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
)

// DefaultEmbeddingDimension is the dimension of the embedding vector.
// Gemini text-embedding-004 uses 768 dimensions.
const DefaultEmbeddingDimension = 768

// ChunkID is a UUID-based identifier for DocumentChunk
type ChunkID string

// NewChunkID generates a new UUID v4 ChunkID
func NewChunkID() ChunkID {
	return ChunkID(uuid.New().String())
}

// DocumentChunk is the smallest retrievable unit of knowledge: a bounded span
// of source text with its category tag and embedding vector. Chunks are
// created once at ingestion time and treated as immutable while serving;
// corpus updates go through re-ingestion, never in-place mutation.
type DocumentChunk struct {
	ID        ChunkID
	SourceID  string // originating document
	Seq       int    // position of the chunk within its source document
	Text      string
	Category  types.Category
	Embedding []float32
	CreatedAt time.Time
}

// Clone returns a deep copy of the chunk
func (c *DocumentChunk) Clone() *DocumentChunk {
	copied := &DocumentChunk{
		ID:        c.ID,
		SourceID:  c.SourceID,
		Seq:       c.Seq,
		Text:      c.Text,
		Category:  c.Category,
		CreatedAt: c.CreatedAt,
	}
	if c.Embedding != nil {
		copied.Embedding = make([]float32, len(c.Embedding))
		copy(copied.Embedding, c.Embedding)
	}
	return copied
}

// Document is the ingestion input: a source id plus already-extracted plain
// text. Format-specific extraction (PDF, Markdown) happens upstream.
type Document struct {
	SourceID string
	Text     string
	Category types.Category // optional; inferred from content when empty
}

// RetrievalResult is an accepted (chunk, score) pair produced per query.
// Score is cosine similarity in [0, 1], results are ordered descending.
type RetrievalResult struct {
	Chunk *DocumentChunk
	Score float64
}
