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

type moodDoc struct {
	ID          model.MoodID `firestore:"ID"`
	UserID      string       `firestore:"UserID"`
	Score       int          `firestore:"Score"`
	SessionType string       `firestore:"SessionType"`
	Feedback    string       `firestore:"Feedback"`
	CreatedAt   time.Time    `firestore:"CreatedAt"`
}

func toMoodDoc(m *model.MoodEntry) *moodDoc {
	return &moodDoc{
		ID:          m.ID,
		UserID:      string(m.UserID),
		Score:       m.Score,
		SessionType: m.SessionType,
		Feedback:    m.Feedback,
		CreatedAt:   m.CreatedAt,
	}
}

func fromMoodDoc(d *moodDoc) *model.MoodEntry {
	return &model.MoodEntry{
		ID:          d.ID,
		UserID:      types.UserID(d.UserID),
		Score:       d.Score,
		SessionType: d.SessionType,
		Feedback:    d.Feedback,
		CreatedAt:   d.CreatedAt,
	}
}

type moodRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newMoodRepository(client *firestore.Client) *moodRepository {
	return &moodRepository{client: client}
}

func (r *moodRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "moods")
}

func (r *moodRepository) Create(ctx context.Context, entry *model.MoodEntry) (*model.MoodEntry, error) {
	created := entry.Clone()
	if created.ID == "" {
		created.ID = model.NewMoodID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection().Doc(string(created.ID)).Set(ctx, toMoodDoc(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create mood entry", goerr.V("userID", created.UserID))
	}
	return created.Clone(), nil
}

func (r *moodRepository) ListByUserSince(ctx context.Context, userID types.UserID, since time.Time) ([]*model.MoodEntry, error) {
	iter := r.collection().
		Where("UserID", "==", string(userID)).
		Where("CreatedAt", ">=", since).
		OrderBy("CreatedAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	entries := make([]*model.MoodEntry, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate mood entries", goerr.V("userID", userID))
		}

		var d moodDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal mood entry", goerr.V("userID", userID))
		}
		entries = append(entries, fromMoodDoc(&d))
	}

	return entries, nil
}
