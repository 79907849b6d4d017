package config

import (
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/service/retrieval"
	"github.com/wellspring-lab/wellspring/pkg/usecase"
)

// Engine holds CLI flags for the context assembly pipeline
type Engine struct {
	topK            int
	threshold       float64
	categoryBoost   float64
	promptBudget    int
	historyWindow   int
	dimension       int
	embedTimeout    time.Duration
	generateTimeout time.Duration
}

// Flags returns CLI flags for engine configuration
func (e *Engine) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "retrieval-top-k",
			Usage:       "Number of nearest chunks fetched per query",
			Value:       retrieval.DefaultTopK,
			Sources:     cli.EnvVars("WELLSPRING_RETRIEVAL_TOP_K"),
			Destination: &e.topK,
		},
		&cli.FloatFlag{
			Name:        "retrieval-threshold",
			Usage:       "Minimum similarity score for a chunk to be used",
			Value:       retrieval.DefaultRelevanceThreshold,
			Sources:     cli.EnvVars("WELLSPRING_RETRIEVAL_THRESHOLD"),
			Destination: &e.threshold,
		},
		&cli.FloatFlag{
			Name:        "retrieval-category-boost",
			Usage:       "Score boost for chunks whose category matches the topic",
			Value:       retrieval.DefaultCategoryBoost,
			Sources:     cli.EnvVars("WELLSPRING_RETRIEVAL_CATEGORY_BOOST"),
			Destination: &e.categoryBoost,
		},
		&cli.IntFlag{
			Name:        "prompt-budget",
			Usage:       "Maximum rendered prompt size in characters",
			Value:       usecase.DefaultPromptBudget,
			Sources:     cli.EnvVars("WELLSPRING_PROMPT_BUDGET"),
			Destination: &e.promptBudget,
		},
		&cli.IntFlag{
			Name:        "history-window",
			Usage:       "Number of recent turns included in a prompt",
			Value:       usecase.DefaultHistoryWindow,
			Sources:     cli.EnvVars("WELLSPRING_HISTORY_WINDOW"),
			Destination: &e.historyWindow,
		},
		&cli.IntFlag{
			Name:        "embedding-dimension",
			Usage:       "Dimensionality of chunk and query embeddings",
			Value:       model.DefaultEmbeddingDimension,
			Sources:     cli.EnvVars("WELLSPRING_EMBEDDING_DIMENSION"),
			Destination: &e.dimension,
		},
		&cli.DurationFlag{
			Name:        "embed-timeout",
			Usage:       "Timeout for a single embedding call",
			Value:       0,
			Sources:     cli.EnvVars("WELLSPRING_EMBED_TIMEOUT"),
			Destination: &e.embedTimeout,
		},
		&cli.DurationFlag{
			Name:        "generate-timeout",
			Usage:       "Timeout for a single generation call",
			Value:       0,
			Sources:     cli.EnvVars("WELLSPRING_GENERATE_TIMEOUT"),
			Destination: &e.generateTimeout,
		},
	}
}

// LogAttrs renders the configuration for startup logging
func (e *Engine) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("top_k", e.topK),
		slog.Float64("threshold", e.threshold),
		slog.Float64("category_boost", e.categoryBoost),
		slog.Int("prompt_budget", e.promptBudget),
		slog.Int("history_window", e.historyWindow),
		slog.Int("dimension", e.dimension),
	}
}

func (e *Engine) TopK() int                      { return e.topK }
func (e *Engine) Threshold() float64             { return e.threshold }
func (e *Engine) CategoryBoost() float64         { return e.categoryBoost }
func (e *Engine) PromptBudget() int              { return e.promptBudget }
func (e *Engine) HistoryWindow() int             { return e.historyWindow }
func (e *Engine) Dimension() int                 { return e.dimension }
func (e *Engine) EmbedTimeout() time.Duration    { return e.embedTimeout }
func (e *Engine) GenerateTimeout() time.Duration { return e.generateTimeout }
