package interfaces

import (
	"context"

	"github.com/wellspring-lab/wellspring/pkg/domain/model"
)

// ChunkRepository defines the interface for DocumentChunk persistence.
// The chunk corpus is read-only at serving time; writes happen only during
// ingestion and are all-or-nothing per source document.
type ChunkRepository interface {
	// CreateBatch stores all chunks of one document atomically: either every
	// chunk is persisted or none is.
	CreateBatch(ctx context.Context, chunks []*model.DocumentChunk) error

	// List returns all chunks in insertion order
	List(ctx context.Context) ([]*model.DocumentChunk, error)

	// ListBySource returns the chunks of one source document in sequence order
	ListBySource(ctx context.Context, sourceID string) ([]*model.DocumentChunk, error)

	// DeleteBySource removes all chunks of one source document (re-ingestion)
	DeleteBySource(ctx context.Context, sourceID string) error

	// Count returns the total number of stored chunks
	Count(ctx context.Context) (int, error)
}
