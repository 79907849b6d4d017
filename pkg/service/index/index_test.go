package index_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
	"github.com/wellspring-lab/wellspring/pkg/service/index"
)

// stubEmbedder returns fixed vectors keyed by text
type stubEmbedder struct {
	dimension int
	vectors   map[string][]float32
}

func (s *stubEmbedder) Dimension() int {
	return s.dimension
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, ok := s.vectors[text]
		if !ok {
			v = make([]float32, s.dimension)
			v[0] = 1
		}
		out[i] = v
	}
	return out, nil
}

func newChunk(text string, seq int, category types.Category) *model.DocumentChunk {
	return &model.DocumentChunk{
		ID:       model.NewChunkID(),
		SourceID: "src",
		Seq:      seq,
		Text:     text,
		Category: category,
	}
}

func TestQueryBeforeBuild(t *testing.T) {
	idx := index.New(&stubEmbedder{dimension: 3})

	_, err := idx.Query([]float32{1, 0, 0}, 5)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrIndexNotReady)).True()
	gt.Bool(t, idx.Ready()).False()
}

func TestQueryOrdering(t *testing.T) {
	emb := &stubEmbedder{
		dimension: 3,
		vectors: map[string][]float32{
			"exact":      {1, 0, 0},
			"close":      {1, 0.2, 0},
			"orthogonal": {0, 1, 0},
		},
	}
	idx := index.New(emb)

	chunks := []*model.DocumentChunk{
		newChunk("orthogonal", 0, types.CategoryGeneral),
		newChunk("close", 1, types.CategoryGeneral),
		newChunk("exact", 2, types.CategoryGeneral),
	}
	gt.NoError(t, idx.Build(context.Background(), chunks)).Required()
	gt.Bool(t, idx.Ready()).True()

	results, err := idx.Query([]float32{1, 0, 0}, 2)
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(2)
	gt.Value(t, results[0].Chunk.Text).Equal("exact")
	gt.Value(t, results[1].Chunk.Text).Equal("close")
	gt.Number(t, results[0].Score).Greater(results[1].Score)
}

func TestQueryTiesKeepInsertionOrder(t *testing.T) {
	emb := &stubEmbedder{
		dimension: 2,
		vectors: map[string][]float32{
			"first":  {1, 0},
			"second": {1, 0},
			"third":  {1, 0},
		},
	}
	idx := index.New(emb)

	chunks := []*model.DocumentChunk{
		newChunk("first", 0, types.CategoryGeneral),
		newChunk("second", 1, types.CategoryGeneral),
		newChunk("third", 2, types.CategoryGeneral),
	}
	gt.NoError(t, idx.Build(context.Background(), chunks)).Required()

	results, err := idx.Query([]float32{1, 0}, 3)
	gt.NoError(t, err).Required()
	gt.Value(t, results[0].Chunk.Text).Equal("first")
	gt.Value(t, results[1].Chunk.Text).Equal("second")
	gt.Value(t, results[2].Chunk.Text).Equal("third")
}

func TestQueryDeterministic(t *testing.T) {
	emb := &stubEmbedder{
		dimension: 3,
		vectors: map[string][]float32{
			"a": {1, 0, 0},
			"b": {0.9, 0.1, 0},
			"c": {0, 0, 1},
		},
	}
	idx := index.New(emb)
	chunks := []*model.DocumentChunk{
		newChunk("a", 0, types.CategoryGeneral),
		newChunk("b", 1, types.CategoryGeneral),
		newChunk("c", 2, types.CategoryGeneral),
	}
	gt.NoError(t, idx.Build(context.Background(), chunks)).Required()

	first, err := idx.Query([]float32{1, 0.05, 0}, 3)
	gt.NoError(t, err).Required()

	for i := 0; i < 10; i++ {
		again, err := idx.Query([]float32{1, 0.05, 0}, 3)
		gt.NoError(t, err).Required()
		gt.Array(t, again).Length(len(first))
		for j := range first {
			gt.Value(t, again[j].Chunk.ID).Equal(first[j].Chunk.ID)
			gt.Value(t, again[j].Score).Equal(first[j].Score)
		}
	}
}

func TestQueryDimensionMismatch(t *testing.T) {
	idx := index.New(&stubEmbedder{dimension: 3})
	gt.NoError(t, idx.Build(context.Background(), nil)).Required()

	_, err := idx.Query([]float32{1, 0}, 5)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrDimensionMismatch)).True()
}

func TestBuildEmptyCorpus(t *testing.T) {
	idx := index.New(&stubEmbedder{dimension: 3})
	gt.NoError(t, idx.Build(context.Background(), nil)).Required()

	results, err := idx.Query([]float32{1, 0, 0}, 5)
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(0)

	stats := idx.GetStats()
	gt.Value(t, stats.TotalChunks).Equal(0)
}

func TestBuildRejectsWrongDimension(t *testing.T) {
	emb := &stubEmbedder{
		dimension: 3,
		vectors: map[string][]float32{
			"bad": {1, 0},
		},
	}
	idx := index.New(emb)

	err := idx.Build(context.Background(), []*model.DocumentChunk{
		newChunk("bad", 0, types.CategoryGeneral),
	})
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrDimensionMismatch)).True()
	gt.Bool(t, idx.Ready()).False()
}

func TestGetStatsByCategory(t *testing.T) {
	emb := &stubEmbedder{dimension: 2, vectors: map[string][]float32{}}
	idx := index.New(emb)

	chunks := []*model.DocumentChunk{
		newChunk("s1", 0, types.CategoryStress),
		newChunk("s2", 1, types.CategoryStress),
		newChunk("a1", 2, types.CategoryAnxiety),
	}
	gt.NoError(t, idx.Build(context.Background(), chunks)).Required()

	stats := idx.GetStats()
	gt.Value(t, stats.TotalChunks).Equal(3)
	gt.Value(t, stats.Dimension).Equal(2)
	gt.Value(t, stats.ByCategory[types.CategoryStress]).Equal(2)
	gt.Value(t, stats.ByCategory[types.CategoryAnxiety]).Equal(1)
}
