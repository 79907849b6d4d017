package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/wellspring-lab/wellspring/pkg/domain/interfaces"
	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/service/index"
	"github.com/wellspring-lab/wellspring/pkg/service/ingest"
	"github.com/wellspring-lab/wellspring/pkg/utils/logging"
)

// IngestUseCase couples document ingestion with explicit index rebuilds.
// Ingestion only writes chunks; serving picks up new content when the index
// is rebuilt over the full accumulated corpus.
type IngestUseCase struct {
	repo    interfaces.Repository
	service *ingest.Service
	index   *index.Index
}

func NewIngestUseCase(repo interfaces.Repository, svc *ingest.Service, idx *index.Index) *IngestUseCase {
	return &IngestUseCase{
		repo:    repo,
		service: svc,
		index:   idx,
	}
}

// IngestDocuments chunks and persists each document in order. A failing
// document stops the batch; documents already ingested stay persisted.
// Returns the total number of chunks created.
func (u *IngestUseCase) IngestDocuments(ctx context.Context, docs []model.Document) (int, error) {
	var total int
	for _, doc := range docs {
		chunks, err := u.service.Ingest(ctx, doc)
		if err != nil {
			return total, goerr.Wrap(err, "ingestion batch stopped",
				goerr.V("sourceID", doc.SourceID), goerr.V("ingested", total))
		}
		total += len(chunks)
	}

	logging.From(ctx).Info("ingestion batch completed", "documents", len(docs), "chunks", total)
	return total, nil
}

// RebuildIndex re-embeds the full chunk corpus and swaps in the new index
func (u *IngestUseCase) RebuildIndex(ctx context.Context) error {
	chunks, err := u.repo.Chunk().List(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list chunks for index build")
	}
	if err := u.index.Build(ctx, chunks); err != nil {
		return goerr.Wrap(err, "index build failed", goerr.V("chunks", len(chunks)))
	}
	return nil
}

// IndexStats reports the current index snapshot statistics
func (u *IngestUseCase) IndexStats() index.Stats {
	return u.index.GetStats()
}

// IndexReady reports whether an index build has completed
func (u *IngestUseCase) IndexReady() bool {
	return u.index.Ready()
}
