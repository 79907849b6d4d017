package index

import (
	"context"
	"math"
	"sort"
	"sync/atomic"

	"github.com/m-mizutani/goerr/v2"
	"github.com/wellspring-lab/wellspring/pkg/domain/interfaces"
	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
	"github.com/wellspring-lab/wellspring/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// embedBatchSize bounds the number of texts per embedding request
const embedBatchSize = 16

// embedConcurrency bounds parallel embedding requests during a build
const embedConcurrency = 4

// Index owns the chunk embeddings and answers nearest-neighbor queries.
// Build constructs a full snapshot and swaps it in atomically, so concurrent
// readers always see either the old or the new index, never a partial one.
type Index struct {
	embedder interfaces.Embedder
	current  atomic.Pointer[snapshot]
}

// snapshot is an immutable, fully built index state
type snapshot struct {
	dimension int
	chunks    []*model.DocumentChunk // insertion order, significant for tie-breaking
	vectors   [][]float32            // L2-normalized, parallel to chunks
}

// New creates an empty, not-yet-built index
func New(embedder interfaces.Embedder) *Index {
	return &Index{embedder: embedder}
}

// Ready reports whether a build has completed
func (x *Index) Ready() bool {
	return x.current.Load() != nil
}

// Build embeds every chunk and swaps in the new snapshot on completion.
// Deterministic for a fixed embedding provider and fixed chunk set. An empty
// chunk set yields a valid, empty index.
func (x *Index) Build(ctx context.Context, chunks []*model.DocumentChunk) error {
	dim := x.embedder.Dimension()
	next := &snapshot{
		dimension: dim,
		chunks:    make([]*model.DocumentChunk, len(chunks)),
		vectors:   make([][]float32, len(chunks)),
	}
	copy(next.chunks, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		start, end := start, end

		g.Go(func() error {
			texts := make([]string, 0, end-start)
			for _, c := range chunks[start:end] {
				texts = append(texts, c.Text)
			}

			vectors, err := x.embedder.Embed(gctx, texts)
			if err != nil {
				return goerr.Wrap(err, "failed to embed chunk batch", goerr.V("offset", start))
			}
			if len(vectors) != end-start {
				return goerr.New("embedding count mismatch",
					goerr.V("want", end-start), goerr.V("got", len(vectors)))
			}

			for i, v := range vectors {
				if len(v) != dim {
					return goerr.Wrap(types.ErrDimensionMismatch, "chunk embedding has wrong dimension",
						goerr.V("chunkID", chunks[start+i].ID),
						goerr.V("want", dim), goerr.V("got", len(v)))
				}
				next.vectors[start+i] = normalize(v)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	x.current.Store(next)
	logging.From(ctx).Info("embedding index built", "chunks", len(chunks), "dimension", dim)
	return nil
}

// Query returns the k nearest chunks by cosine similarity, ordered by score
// descending with ties broken by chunk insertion order. Chunks in the result
// are shared with the index and must be treated as read-only.
func (x *Index) Query(vector []float32, k int) ([]model.RetrievalResult, error) {
	snap := x.current.Load()
	if snap == nil {
		return nil, goerr.Wrap(types.ErrIndexNotReady, "query before build")
	}
	if len(vector) != snap.dimension {
		return nil, goerr.Wrap(types.ErrDimensionMismatch, "query vector has wrong dimension",
			goerr.V("want", snap.dimension), goerr.V("got", len(vector)))
	}
	if k <= 0 || len(snap.chunks) == 0 {
		return []model.RetrievalResult{}, nil
	}

	q := normalize(vector)

	results := make([]model.RetrievalResult, 0, len(snap.chunks))
	for i, v := range snap.vectors {
		results = append(results, model.RetrievalResult{
			Chunk: snap.chunks[i],
			Score: dot(q, v),
		})
	}

	// stable sort keeps insertion order for equal scores
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Stats describes the current snapshot
type Stats struct {
	TotalChunks int
	Dimension   int
	ByCategory  map[types.Category]int
}

// GetStats returns statistics for the current snapshot; zero Stats when the
// index has not been built.
func (x *Index) GetStats() Stats {
	snap := x.current.Load()
	if snap == nil {
		return Stats{ByCategory: map[types.Category]int{}}
	}

	stats := Stats{
		TotalChunks: len(snap.chunks),
		Dimension:   snap.dimension,
		ByCategory:  make(map[types.Category]int),
	}
	for _, c := range snap.chunks {
		stats.ByCategory[c.Category]++
	}
	return stats
}

func normalize(v []float32) []float32 {
	var norm float64
	for _, f := range v {
		norm += float64(f) * float64(f)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return v
	}

	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(float64(f) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
