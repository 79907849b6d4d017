package ingest_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
	"github.com/wellspring-lab/wellspring/pkg/repository/memory"
	"github.com/wellspring-lab/wellspring/pkg/service/ingest"
)

func TestIngestRejectsBadDocuments(t *testing.T) {
	svc := ingest.New(memory.New())
	ctx := context.Background()

	tests := []struct {
		name string
		doc  model.Document
	}{
		{
			name: "missing source ID",
			doc:  model.Document{Text: strings.Repeat("calm breathing exercises help. ", 10)},
		},
		{
			name: "empty text",
			doc:  model.Document{SourceID: "doc-1", Text: "   "},
		},
		{
			name: "too short",
			doc:  model.Document{SourceID: "doc-1", Text: "short note"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Ingest(ctx, tt.doc)
			gt.Error(t, err)
			gt.Bool(t, errors.Is(err, types.ErrIngestion)).True()
		})
	}
}

func TestIngestPersistsChunksInOrder(t *testing.T) {
	repo := memory.New()
	svc := ingest.New(repo, ingest.WithChunker(ingest.NewChunker(120, 20)))
	ctx := context.Background()

	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("Mindful walking reduces stress levels. ")
	}

	chunks, err := svc.Ingest(ctx, model.Document{
		SourceID: "stress-guide",
		Text:     sb.String(),
		Category: types.CategoryStress,
	})
	gt.NoError(t, err).Required()
	gt.Number(t, len(chunks)).Greater(1)

	stored, err := repo.Chunk().ListBySource(ctx, "stress-guide")
	gt.NoError(t, err).Required()
	gt.Array(t, stored).Length(len(chunks))
	for i, c := range stored {
		gt.Value(t, c.Seq).Equal(i)
		gt.Value(t, c.Category).Equal(types.CategoryStress)
		gt.Value(t, c.SourceID).Equal("stress-guide")
	}
}

func TestIngestInfersCategory(t *testing.T) {
	repo := memory.New()
	svc := ingest.New(repo)
	ctx := context.Background()

	chunks, err := svc.Ingest(ctx, model.Document{
		SourceID: "anxiety-tips",
		Text: "Anxiety often shows up as a racing heart and constant worry. " +
			"When panic rises, slow breathing interrupts the anxious spiral. " +
			"Naming the fear out loud can reduce its grip.",
	})
	gt.NoError(t, err).Required()
	gt.Number(t, len(chunks)).GreaterOrEqual(1)
	gt.Value(t, chunks[0].Category).Equal(types.CategoryAnxiety)
}

func TestIngestFailureLeavesStoreUntouched(t *testing.T) {
	repo := memory.New()
	svc := ingest.New(repo)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, model.Document{SourceID: "bad", Text: "too short"})
	gt.Error(t, err)

	count, err := repo.Chunk().Count(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, count).Equal(0)
}
