package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/wellspring-lab/wellspring/pkg/domain/interfaces"
	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
	"github.com/wellspring-lab/wellspring/pkg/repository/firestore"
	"github.com/wellspring-lab/wellspring/pkg/repository/memory"
)

func makeChunks(sourceID string, n int, category types.Category) []*model.DocumentChunk {
	chunks := make([]*model.DocumentChunk, n)
	for i := range chunks {
		chunks[i] = &model.DocumentChunk{
			ID:       model.NewChunkID(),
			SourceID: sourceID,
			Seq:      i,
			Text:     fmt.Sprintf("%s chunk %d", sourceID, i),
			Category: category,
		}
	}
	return chunks
}

func runChunkRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("CreateBatch and List keep insertion order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first := makeChunks("doc-a", 3, types.CategoryStress)
		second := makeChunks("doc-b", 2, types.CategoryAnxiety)
		gt.NoError(t, repo.Chunk().CreateBatch(ctx, first)).Required()
		gt.NoError(t, repo.Chunk().CreateBatch(ctx, second)).Required()

		all, err := repo.Chunk().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(5)
		gt.Value(t, all[0].SourceID).Equal("doc-a")
		gt.Value(t, all[3].SourceID).Equal("doc-b")

		count, err := repo.Chunk().Count(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(5)
	})

	t.Run("ListBySource returns sequence order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Chunk().CreateBatch(ctx, makeChunks("doc-c", 4, types.CategoryGeneral))).Required()

		chunks, err := repo.Chunk().ListBySource(ctx, "doc-c")
		gt.NoError(t, err).Required()
		gt.Array(t, chunks).Length(4)
		for i, c := range chunks {
			gt.Value(t, c.Seq).Equal(i)
		}
	})

	t.Run("DeleteBySource removes only that source", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Chunk().CreateBatch(ctx, makeChunks("doc-d", 3, types.CategoryGeneral))).Required()
		gt.NoError(t, repo.Chunk().CreateBatch(ctx, makeChunks("doc-e", 2, types.CategoryGeneral))).Required()

		gt.NoError(t, repo.Chunk().DeleteBySource(ctx, "doc-d")).Required()

		remaining, err := repo.Chunk().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, remaining).Length(2)
		for _, c := range remaining {
			gt.Value(t, c.SourceID).Equal("doc-e")
		}
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Chunk().CreateBatch(ctx, nil)).Required()
		count, err := repo.Chunk().Count(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(0)
	})
}

func TestChunkRepository_Memory(t *testing.T) {
	runChunkRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestChunkRepository_Firestore(t *testing.T) {
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}

	runChunkRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		repo, err := firestore.New(context.Background(), projectID, "",
			firestore.WithCollectionPrefix(fmt.Sprintf("test-%d-", time.Now().UnixNano())),
		)
		gt.NoError(t, err).Required()
		return repo
	})
}
