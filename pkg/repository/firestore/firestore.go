package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/wellspring-lab/wellspring/pkg/domain/interfaces"
)

type Firestore struct {
	client  *firestore.Client
	chunk   *chunkRepository
	session *sessionRepository
	mood    *moodRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces all collections, mainly for tests sharing
// one database.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.chunk.collectionPrefix = prefix
		f.session.collectionPrefix = prefix
		f.mood.collectionPrefix = prefix
	}
}

// WithHistoryCap overrides the retained turn history cap per session
func WithHistoryCap(cap int) Option {
	return func(f *Firestore) {
		f.session.historyCap = cap
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID == "" {
		client, err = firestore.NewClient(ctx, projectID)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID))
	}

	f := &Firestore{
		client:  client,
		chunk:   newChunkRepository(client),
		session: newSessionRepository(client),
		mood:    newMoodRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Chunk() interfaces.ChunkRepository {
	return f.chunk
}

func (f *Firestore) Session() interfaces.SessionRepository {
	return f.session
}

func (f *Firestore) Mood() interfaces.MoodRepository {
	return f.mood
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
