package firestore

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultHistoryCap bounds retained turn history per session
const DefaultHistoryCap = 50

type turnDoc struct {
	Role      string    `firestore:"Role"`
	Text      string    `firestore:"Text"`
	Timestamp time.Time `firestore:"Timestamp"`
}

type sessionDoc struct {
	UserID         string    `firestore:"UserID"`
	Turns          []turnDoc `firestore:"Turns"`
	CurrentTopic   string    `firestore:"CurrentTopic"`
	EmotionalState string    `firestore:"EmotionalState"`
	LastUpdated    time.Time `firestore:"LastUpdated"`
}

func toSessionDoc(s *model.ConversationSession) *sessionDoc {
	doc := &sessionDoc{
		UserID:         string(s.UserID),
		CurrentTopic:   string(s.CurrentTopic),
		EmotionalState: string(s.EmotionalState),
		LastUpdated:    s.LastUpdated,
	}
	for _, t := range s.Turns {
		doc.Turns = append(doc.Turns, turnDoc{
			Role:      string(t.Role),
			Text:      t.Text,
			Timestamp: t.Timestamp,
		})
	}
	return doc
}

func fromSessionDoc(d *sessionDoc) *model.ConversationSession {
	s := &model.ConversationSession{
		UserID:         types.UserID(d.UserID),
		CurrentTopic:   types.Topic(d.CurrentTopic).Normalize(),
		EmotionalState: types.EmotionalState(d.EmotionalState).Normalize(),
		LastUpdated:    d.LastUpdated,
	}
	for _, t := range d.Turns {
		s.Turns = append(s.Turns, model.Turn{
			Role:      types.Role(t.Role),
			Text:      t.Text,
			Timestamp: t.Timestamp,
		})
	}
	return s
}

// sessionRepository persists sessions in Firestore. Per-user mutual exclusion
// uses in-process keyed mutexes: turns for one user are expected to land on a
// single serving instance.
type sessionRepository struct {
	client           *firestore.Client
	collectionPrefix string
	historyCap       int

	lockMu    sync.Mutex
	userLocks map[types.UserID]*sync.Mutex
}

func newSessionRepository(client *firestore.Client) *sessionRepository {
	return &sessionRepository{
		client:     client,
		historyCap: DefaultHistoryCap,
		userLocks:  make(map[types.UserID]*sync.Mutex),
	}
}

func (r *sessionRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "sessions")
}

func (r *sessionRepository) GetOrCreate(ctx context.Context, userID types.UserID) (*model.ConversationSession, error) {
	docRef := r.collection().Doc(string(userID))
	doc, err := docRef.Get(ctx)
	if err == nil {
		var d sessionDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal session", goerr.V("userID", userID))
		}
		return fromSessionDoc(&d), nil
	}
	if status.Code(err) != codes.NotFound {
		return nil, goerr.Wrap(err, "failed to get session", goerr.V("userID", userID))
	}

	s := model.NewConversationSession(userID)
	s.LastUpdated = time.Now().UTC()
	if _, err := docRef.Set(ctx, toSessionDoc(s)); err != nil {
		return nil, goerr.Wrap(err, "failed to create session", goerr.V("userID", userID))
	}
	return s.Clone(), nil
}

func (r *sessionRepository) Get(ctx context.Context, userID types.UserID) (*model.ConversationSession, error) {
	doc, err := r.collection().Doc(string(userID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrSessionNotFound, "session not found", goerr.V("userID", userID))
		}
		return nil, goerr.Wrap(err, "failed to get session", goerr.V("userID", userID))
	}

	var d sessionDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal session", goerr.V("userID", userID))
	}
	return fromSessionDoc(&d), nil
}

func (r *sessionRepository) AppendTurn(ctx context.Context, userID types.UserID, turn model.Turn) error {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}

	s, err := r.Get(ctx, userID)
	if err != nil {
		return goerr.Wrap(err, "appendTurn before getOrCreate", goerr.V("userID", userID))
	}

	s.Turns = append(s.Turns, turn)
	if len(s.Turns) > r.historyCap {
		s.Turns = s.Turns[len(s.Turns)-r.historyCap:]
	}
	s.LastUpdated = time.Now().UTC()

	if _, err := r.collection().Doc(string(userID)).Set(ctx, toSessionDoc(s)); err != nil {
		return goerr.Wrap(err, "failed to append turn", goerr.V("userID", userID))
	}
	return nil
}

func (r *sessionRepository) UpdateState(ctx context.Context, userID types.UserID, topic types.Topic, state types.EmotionalState) error {
	docRef := r.collection().Doc(string(userID))
	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "CurrentTopic", Value: string(topic.Normalize())},
		{Path: "EmotionalState", Value: string(state.Normalize())},
		{Path: "LastUpdated", Value: time.Now().UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(types.ErrSessionNotFound, "updateState before getOrCreate", goerr.V("userID", userID))
		}
		return goerr.Wrap(err, "failed to update session state", goerr.V("userID", userID))
	}
	return nil
}

func (r *sessionRepository) AcquireUser(ctx context.Context, userID types.UserID) func() {
	r.lockMu.Lock()
	lock, exists := r.userLocks[userID]
	if !exists {
		lock = &sync.Mutex{}
		r.userLocks[userID] = lock
	}
	r.lockMu.Unlock()

	lock.Lock()
	return lock.Unlock
}
