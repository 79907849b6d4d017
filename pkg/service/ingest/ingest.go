package ingest

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/wellspring-lab/wellspring/pkg/domain/interfaces"
	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
	"github.com/wellspring-lab/wellspring/pkg/utils/logging"
)

// minDocumentLength rejects documents too short to yield useful chunks
const minDocumentLength = 50

// Service converts raw source documents into bounded chunks and persists
// them. It does not build the embedding index; index builds run as a
// separate, explicit step over the full accumulated store.
type Service struct {
	repo    interfaces.Repository
	chunker *Chunker
}

// Option is a functional option for Service configuration
type Option func(*Service)

// WithChunker overrides the default chunker
func WithChunker(c *Chunker) Option {
	return func(s *Service) {
		s.chunker = c
	}
}

// New creates an ingestion service backed by the given repository
func New(repo interfaces.Repository, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		chunker: NewChunker(DefaultChunkSize, DefaultOverlap),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest splits one document into chunks and stores them atomically. A bad
// document fails with types.ErrIngestion and leaves previously ingested
// chunks untouched.
func (s *Service) Ingest(ctx context.Context, doc model.Document) ([]*model.DocumentChunk, error) {
	if doc.SourceID == "" {
		return nil, goerr.Wrap(types.ErrIngestion, "document source ID is required")
	}

	text := strings.TrimSpace(doc.Text)
	if text == "" {
		return nil, goerr.Wrap(types.ErrIngestion, "document is empty", goerr.V("sourceID", doc.SourceID))
	}
	if len(text) < minDocumentLength {
		return nil, goerr.Wrap(types.ErrIngestion, "insufficient content",
			goerr.V("sourceID", doc.SourceID), goerr.V("length", len(text)))
	}

	category := doc.Category
	if category == "" {
		category = inferCategory(text)
	}

	spans := s.chunker.Split(text)
	if len(spans) == 0 {
		return nil, goerr.Wrap(types.ErrIngestion, "no chunks produced", goerr.V("sourceID", doc.SourceID))
	}

	chunks := make([]*model.DocumentChunk, 0, len(spans))
	for i, span := range spans {
		chunks = append(chunks, &model.DocumentChunk{
			ID:       model.NewChunkID(),
			SourceID: doc.SourceID,
			Seq:      i,
			Text:     span,
			Category: category,
		})
	}

	if err := s.repo.Chunk().CreateBatch(ctx, chunks); err != nil {
		return nil, goerr.Wrap(err, "failed to persist chunks", goerr.V("sourceID", doc.SourceID))
	}

	logging.From(ctx).Info("ingested document",
		"source_id", doc.SourceID,
		"category", category,
		"chunks", len(chunks),
	)

	return chunks, nil
}

// categoryKeywords drives document-level category inference when the caller
// supplies none. Derived from the wellness keyword sets used by retrieval.
var categoryKeywords = map[types.Category][]string{
	types.CategoryAnxiety:    {"anxiety", "anxious", "worry", "panic", "nervous", "fear"},
	types.CategoryDepression: {"depression", "depressed", "sad", "hopeless", "empty", "worthless"},
	types.CategoryStress:     {"stress", "overwhelmed", "pressure", "tension", "burnout", "exhausted"},
	types.CategoryNavigation: {"appointment", "schedule", "service", "getting started", "how to use"},
}

func inferCategory(text string) types.Category {
	lower := strings.ToLower(text)

	best := types.CategoryGeneral
	bestHits := 0
	// deterministic iteration order
	for _, category := range []types.Category{
		types.CategoryAnxiety,
		types.CategoryDepression,
		types.CategoryStress,
		types.CategoryNavigation,
	} {
		hits := 0
		for _, kw := range categoryKeywords[category] {
			hits += strings.Count(lower, kw)
		}
		if hits > bestHits {
			best = category
			bestHits = hits
		}
	}

	return best
}
