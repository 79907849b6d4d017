package retrieval

import (
	"context"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/wellspring-lab/wellspring/pkg/domain/interfaces"
	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
	"github.com/wellspring-lab/wellspring/pkg/service/index"
	"github.com/wellspring-lab/wellspring/pkg/utils/logging"
)

const (
	// DefaultTopK is how many nearest candidates are fetched before gating
	DefaultTopK = 5
	// DefaultRelevanceThreshold is the minimum similarity for a chunk to be
	// usable in a prompt. Operator-tunable, not a hardcoded invariant.
	DefaultRelevanceThreshold = 0.6
	// DefaultCategoryBoost is added to candidates whose category matches the
	// topic hint, before threshold gating
	DefaultCategoryBoost = 0.05
)

// topicKeywords enriches queries with wellness-domain terms for the active
// topic, mirroring the keyword sets the classifier scores against.
var topicKeywords = map[types.Topic][]string{
	types.TopicAnxiety:    {"anxious", "worry", "panic", "nervous", "fear"},
	types.TopicDepression: {"sad", "hopeless", "depressed", "down", "empty"},
	types.TopicStress:     {"overwhelmed", "pressure", "tension", "burden", "exhausted"},
	types.TopicNavigation: {"help", "schedule", "appointment"},
}

// maxQueryKeywords bounds how many topic keywords are appended to a query
const maxQueryKeywords = 2

// Engine turns a natural-language query into accepted knowledge chunks.
// For a fixed index, query text and threshold, results and their order are
// identical across calls.
type Engine struct {
	embedder      interfaces.Embedder
	idx           *index.Index
	topK          int
	threshold     float64
	categoryBoost float64
}

// Option is a functional option for Engine configuration
type Option func(*Engine)

// WithTopK overrides how many candidates are fetched before gating
func WithTopK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithThreshold overrides the relevance threshold
func WithThreshold(t float64) Option {
	return func(e *Engine) {
		e.threshold = t
	}
}

// WithCategoryBoost overrides the topic-hint category boost
func WithCategoryBoost(b float64) Option {
	return func(e *Engine) {
		e.categoryBoost = b
	}
}

// New creates a retrieval engine over the given embedder and index
func New(embedder interfaces.Embedder, idx *index.Index, opts ...Option) *Engine {
	e := &Engine{
		embedder:      embedder,
		idx:           idx,
		topK:          DefaultTopK,
		threshold:     DefaultRelevanceThreshold,
		categoryBoost: DefaultCategoryBoost,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Threshold returns the configured relevance threshold
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Retrieve embeds the query, fetches the top candidates, and gates them on
// the relevance threshold. An empty result is a valid, common outcome, not a
// failure. Embedding failures (including timeouts) degrade to an empty
// result: missing context lowers quality but not correctness. Index misuse
// (not ready, wrong dimension) is propagated.
func (e *Engine) Retrieve(ctx context.Context, queryText string, topicHint types.Topic) ([]model.RetrievalResult, error) {
	query := enhanceQuery(queryText, topicHint)

	vectors, err := e.embedder.Embed(ctx, []string{query})
	if err != nil {
		logging.From(ctx).Warn("embedding failed, continuing without retrieval context",
			"error", err.Error(), "topic", topicHint)
		return []model.RetrievalResult{}, nil
	}
	if len(vectors) == 0 {
		return []model.RetrievalResult{}, nil
	}

	candidates, err := e.idx.Query(vectors[0], e.topK)
	if err != nil {
		return nil, goerr.Wrap(err, "index query failed", goerr.V("topic", topicHint))
	}

	results := make([]model.RetrievalResult, 0, len(candidates))
	for _, cand := range candidates {
		score := cand.Score
		if topicHint != "" && cand.Chunk.Category.Matches(topicHint) {
			score += e.categoryBoost
			if score > 1.0 {
				score = 1.0
			}
		}
		if score >= e.threshold {
			results = append(results, model.RetrievalResult{Chunk: cand.Chunk, Score: score})
		}
	}

	// boost may reorder; stable sort preserves index order on equal scores
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results, nil
}

// enhanceQuery appends up to maxQueryKeywords topic keywords that the query
// does not already contain, widening recall toward the active topic.
func enhanceQuery(queryText string, topicHint types.Topic) string {
	lower := strings.ToLower(queryText)

	added := 0
	var sb strings.Builder
	sb.WriteString(queryText)
	for _, kw := range topicKeywords[topicHint] {
		if added >= maxQueryKeywords {
			break
		}
		if !strings.Contains(lower, kw) {
			sb.WriteString(" ")
			sb.WriteString(kw)
			added++
		}
	}

	return sb.String()
}
