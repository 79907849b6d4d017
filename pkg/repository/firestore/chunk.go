package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
	"google.golang.org/api/iterator"
)

// chunkDoc is the Firestore document representation of model.DocumentChunk.
// Embedding is stored as firestore.Vector32.
type chunkDoc struct {
	ID        model.ChunkID      `firestore:"ID"`
	SourceID  string             `firestore:"SourceID"`
	Seq       int                `firestore:"Seq"`
	Text      string             `firestore:"Text"`
	Category  string             `firestore:"Category"`
	Embedding firestore.Vector32 `firestore:"Embedding,omitempty"`
	CreatedAt time.Time          `firestore:"CreatedAt"`
}

func toChunkDoc(c *model.DocumentChunk) *chunkDoc {
	doc := &chunkDoc{
		ID:        c.ID,
		SourceID:  c.SourceID,
		Seq:       c.Seq,
		Text:      c.Text,
		Category:  string(c.Category),
		CreatedAt: c.CreatedAt,
	}
	if len(c.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(c.Embedding)
	}
	return doc
}

func fromChunkDoc(d *chunkDoc) *model.DocumentChunk {
	c := &model.DocumentChunk{
		ID:        d.ID,
		SourceID:  d.SourceID,
		Seq:       d.Seq,
		Text:      d.Text,
		Category:  types.Category(d.Category),
		CreatedAt: d.CreatedAt,
	}
	if len(d.Embedding) > 0 {
		c.Embedding = []float32(d.Embedding)
	}
	return c
}

func docToChunk(doc *firestore.DocumentSnapshot) (*model.DocumentChunk, error) {
	var d chunkDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromChunkDoc(&d), nil
}

type chunkRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newChunkRepository(client *firestore.Client) *chunkRepository {
	return &chunkRepository{client: client}
}

func (r *chunkRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "chunks")
}

func (r *chunkRepository) CreateBatch(ctx context.Context, chunks []*model.DocumentChunk) error {
	now := time.Now().UTC()

	// BulkWriter is not transactional; a single batched transaction keeps the
	// per-document write all-or-nothing.
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, c := range chunks {
			created := c.Clone()
			if created.ID == "" {
				created.ID = model.NewChunkID()
			}
			created.CreatedAt = now
			if err := tx.Set(r.collection().Doc(string(created.ID)), toChunkDoc(created)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create chunk batch", goerr.V("count", len(chunks)))
	}
	return nil
}

func (r *chunkRepository) List(ctx context.Context) ([]*model.DocumentChunk, error) {
	// CreatedAt+Seq ordering reproduces insertion order across restarts
	iter := r.collection().
		OrderBy("CreatedAt", firestore.Asc).
		OrderBy("Seq", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	chunks := make([]*model.DocumentChunk, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate chunks")
		}

		c, err := docToChunk(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal chunk")
		}
		chunks = append(chunks, c)
	}

	return chunks, nil
}

func (r *chunkRepository) ListBySource(ctx context.Context, sourceID string) ([]*model.DocumentChunk, error) {
	iter := r.collection().
		Where("SourceID", "==", sourceID).
		OrderBy("Seq", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	chunks := make([]*model.DocumentChunk, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate chunks", goerr.V("sourceID", sourceID))
		}

		c, err := docToChunk(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal chunk", goerr.V("sourceID", sourceID))
		}
		chunks = append(chunks, c)
	}

	return chunks, nil
}

func (r *chunkRepository) DeleteBySource(ctx context.Context, sourceID string) error {
	iter := r.collection().Where("SourceID", "==", sourceID).Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate chunks for deletion", goerr.V("sourceID", sourceID))
		}
		if _, err := bw.Delete(doc.Ref); err != nil {
			return goerr.Wrap(err, "failed to schedule chunk deletion", goerr.V("sourceID", sourceID))
		}
	}
	bw.End()

	return nil
}

func (r *chunkRepository) Count(ctx context.Context) (int, error) {
	docs, err := r.collection().Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count chunks")
	}
	return len(docs), nil
}
