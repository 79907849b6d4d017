package retrieval_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
	"github.com/wellspring-lab/wellspring/pkg/service/index"
	"github.com/wellspring-lab/wellspring/pkg/service/retrieval"
)

// stubEmbedder returns fixed vectors keyed by exact text and records queries
type stubEmbedder struct {
	dimension int
	vectors   map[string][]float32
	fallback  []float32
	queries   []string
	err       error
}

func (s *stubEmbedder) Dimension() int {
	return s.dimension
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	s.queries = append(s.queries, texts...)
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := s.vectors[text]; ok {
			out[i] = v
		} else {
			out[i] = s.fallback
		}
	}
	return out, nil
}

func buildIndex(t *testing.T, emb *stubEmbedder, chunks []*model.DocumentChunk) *index.Index {
	t.Helper()
	idx := index.New(emb)
	gt.NoError(t, idx.Build(context.Background(), chunks)).Required()
	return idx
}

func chunk(text string, seq int, category types.Category) *model.DocumentChunk {
	return &model.DocumentChunk{
		ID:       model.NewChunkID(),
		SourceID: "src",
		Seq:      seq,
		Text:     text,
		Category: category,
	}
}

func TestRetrieveThresholdGating(t *testing.T) {
	emb := &stubEmbedder{
		dimension: 2,
		vectors: map[string][]float32{
			"near": {1, 0},
			"far":  {0, 1},
		},
		fallback: []float32{1, 0.3},
	}
	idx := buildIndex(t, emb, []*model.DocumentChunk{
		chunk("near", 0, types.CategoryGeneral),
		chunk("far", 1, types.CategoryGeneral),
	})

	engine := retrieval.New(emb, idx, retrieval.WithThreshold(0.6))
	results, err := engine.Retrieve(context.Background(), "query text", types.TopicUnclassified)
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(1)
	gt.Value(t, results[0].Chunk.Text).Equal("near")
	gt.Number(t, results[0].Score).GreaterOrEqual(0.6)
}

func TestRetrieveThresholdMonotonic(t *testing.T) {
	emb := &stubEmbedder{
		dimension: 2,
		vectors: map[string][]float32{
			"a": {1, 0},
			"b": {1, 0.5},
			"c": {1, 1},
			"d": {0, 1},
		},
		fallback: []float32{1, 0},
	}
	chunks := []*model.DocumentChunk{
		chunk("a", 0, types.CategoryGeneral),
		chunk("b", 1, types.CategoryGeneral),
		chunk("c", 2, types.CategoryGeneral),
		chunk("d", 3, types.CategoryGeneral),
	}
	idx := buildIndex(t, emb, chunks)

	loose := retrieval.New(emb, idx, retrieval.WithThreshold(0.3))
	strict := retrieval.New(emb, idx, retrieval.WithThreshold(0.8))

	looseResults, err := loose.Retrieve(context.Background(), "query", types.TopicUnclassified)
	gt.NoError(t, err).Required()
	strictResults, err := strict.Retrieve(context.Background(), "query", types.TopicUnclassified)
	gt.NoError(t, err).Required()

	gt.Number(t, len(strictResults)).LessOrEqual(len(looseResults))

	// every strict result appears in the loose result set
	looseIDs := map[model.ChunkID]bool{}
	for _, r := range looseResults {
		looseIDs[r.Chunk.ID] = true
	}
	for _, r := range strictResults {
		gt.Bool(t, looseIDs[r.Chunk.ID]).True()
	}
}

func TestRetrieveNothingClearsThreshold(t *testing.T) {
	emb := &stubEmbedder{
		dimension: 2,
		vectors: map[string][]float32{
			"far": {0, 1},
		},
		fallback: []float32{1, 0},
	}
	idx := buildIndex(t, emb, []*model.DocumentChunk{
		chunk("far", 0, types.CategoryGeneral),
	})

	engine := retrieval.New(emb, idx, retrieval.WithThreshold(0.6))
	results, err := engine.Retrieve(context.Background(), "query", types.TopicUnclassified)
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(0)
}

func TestRetrieveCategoryBoost(t *testing.T) {
	// both chunks score identically; the category match must win on boost
	emb := &stubEmbedder{
		dimension: 2,
		vectors: map[string][]float32{
			"general": {1, 0.2},
			"matched": {1, 0.2},
		},
		fallback: []float32{1, 0},
	}
	idx := buildIndex(t, emb, []*model.DocumentChunk{
		chunk("general", 0, types.CategoryGeneral),
		chunk("matched", 1, types.CategoryAnxiety),
	})

	engine := retrieval.New(emb, idx,
		retrieval.WithThreshold(0.5),
		retrieval.WithCategoryBoost(0.05),
	)
	results, err := engine.Retrieve(context.Background(), "query", types.TopicAnxiety)
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(2)
	gt.Value(t, results[0].Chunk.Text).Equal("matched")
	gt.Number(t, results[0].Score).Greater(results[1].Score)
	gt.Number(t, results[0].Score).LessOrEqual(1.0)
}

func TestRetrieveEmbeddingFailureDegrades(t *testing.T) {
	emb := &stubEmbedder{dimension: 2, fallback: []float32{1, 0}}
	idx := buildIndex(t, emb, []*model.DocumentChunk{
		chunk("near", 0, types.CategoryGeneral),
	})

	emb.err = goerr.Wrap(types.ErrEmbeddingTimeout, "embedding provider timed out")

	engine := retrieval.New(emb, idx)
	results, err := engine.Retrieve(context.Background(), "query", types.TopicStress)
	gt.NoError(t, err)
	gt.Array(t, results).Length(0)
}

func TestRetrieveQueryEnhancement(t *testing.T) {
	emb := &stubEmbedder{dimension: 2, fallback: []float32{1, 0}}
	idx := buildIndex(t, emb, nil)
	engine := retrieval.New(emb, idx)

	emb.queries = nil
	_, err := engine.Retrieve(context.Background(), "I can't sleep", types.TopicAnxiety)
	gt.NoError(t, err).Required()
	gt.Array(t, emb.queries).Length(1)

	query := emb.queries[0]
	gt.Bool(t, strings.HasPrefix(query, "I can't sleep")).True()
	added := strings.Fields(strings.TrimPrefix(query, "I can't sleep"))
	gt.Array(t, added).Length(2)
	gt.Value(t, added[0]).Equal("anxious")
	gt.Value(t, added[1]).Equal("worry")

	// keywords already present are not appended again
	emb.queries = nil
	_, err = engine.Retrieve(context.Background(), "so anxious tonight", types.TopicAnxiety)
	gt.NoError(t, err).Required()
	query = emb.queries[0]
	gt.Value(t, strings.Count(query, "anxious")).Equal(1)
	gt.Bool(t, strings.Contains(query, "worry")).True()
	gt.Bool(t, strings.Contains(query, "panic")).True()

	// unclassified topics get no enhancement
	emb.queries = nil
	_, err = engine.Retrieve(context.Background(), "hello there", types.TopicUnclassified)
	gt.NoError(t, err).Required()
	gt.Value(t, emb.queries[0]).Equal("hello there")
}
