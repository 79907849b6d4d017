package memory

import (
	"context"
	"sync"
	"time"

	"github.com/wellspring-lab/wellspring/pkg/domain/model"
)

type chunkRepository struct {
	mu     sync.RWMutex
	chunks []*model.DocumentChunk // insertion order is significant for index tie-breaking
}

func newChunkRepository() *chunkRepository {
	return &chunkRepository{}
}

func (r *chunkRepository) CreateBatch(ctx context.Context, chunks []*model.DocumentChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	batch := make([]*model.DocumentChunk, 0, len(chunks))
	for _, c := range chunks {
		created := c.Clone()
		if created.ID == "" {
			created.ID = model.NewChunkID()
		}
		created.CreatedAt = now
		batch = append(batch, created)
	}

	// Single append keeps the write all-or-nothing per document
	r.chunks = append(r.chunks, batch...)
	return nil
}

func (r *chunkRepository) List(ctx context.Context) ([]*model.DocumentChunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.DocumentChunk, 0, len(r.chunks))
	for _, c := range r.chunks {
		result = append(result, c.Clone())
	}
	return result, nil
}

func (r *chunkRepository) ListBySource(ctx context.Context, sourceID string) ([]*model.DocumentChunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.DocumentChunk
	for _, c := range r.chunks {
		if c.SourceID == sourceID {
			result = append(result, c.Clone())
		}
	}
	return result, nil
}

func (r *chunkRepository) DeleteBySource(ctx context.Context, sourceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.chunks[:0]
	for _, c := range r.chunks {
		if c.SourceID != sourceID {
			kept = append(kept, c)
		}
	}
	r.chunks = kept
	return nil
}

func (r *chunkRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chunks), nil
}
