package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
)

// DefaultHistoryCap bounds retained turn history per session
const DefaultHistoryCap = 50

type sessionRepository struct {
	mu         sync.RWMutex
	sessions   map[types.UserID]*model.ConversationSession
	historyCap int

	// userLocks serializes whole turns per user. Guarded by lockMu, never
	// deleted: the set of active users is small and bounded by real traffic.
	lockMu    sync.Mutex
	userLocks map[types.UserID]*sync.Mutex
}

func newSessionRepository(historyCap int) *sessionRepository {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	return &sessionRepository{
		sessions:   make(map[types.UserID]*model.ConversationSession),
		historyCap: historyCap,
		userLocks:  make(map[types.UserID]*sync.Mutex),
	}
}

func (r *sessionRepository) GetOrCreate(ctx context.Context, userID types.UserID) (*model.ConversationSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, exists := r.sessions[userID]; exists {
		return s.Clone(), nil
	}

	s := model.NewConversationSession(userID)
	s.LastUpdated = time.Now().UTC()
	r.sessions[userID] = s
	return s.Clone(), nil
}

func (r *sessionRepository) Get(ctx context.Context, userID types.UserID) (*model.ConversationSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.sessions[userID]
	if !exists {
		return nil, goerr.Wrap(types.ErrSessionNotFound, "session not found", goerr.V("userID", userID))
	}
	return s.Clone(), nil
}

func (r *sessionRepository) AppendTurn(ctx context.Context, userID types.UserID, turn model.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.sessions[userID]
	if !exists {
		return goerr.Wrap(types.ErrSessionNotFound, "appendTurn before getOrCreate", goerr.V("userID", userID))
	}

	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}
	s.Turns = append(s.Turns, turn)
	if len(s.Turns) > r.historyCap {
		// evict oldest first
		s.Turns = s.Turns[len(s.Turns)-r.historyCap:]
	}
	s.LastUpdated = time.Now().UTC()
	return nil
}

func (r *sessionRepository) UpdateState(ctx context.Context, userID types.UserID, topic types.Topic, state types.EmotionalState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.sessions[userID]
	if !exists {
		return goerr.Wrap(types.ErrSessionNotFound, "updateState before getOrCreate", goerr.V("userID", userID))
	}

	s.CurrentTopic = topic.Normalize()
	s.EmotionalState = state.Normalize()
	s.LastUpdated = time.Now().UTC()
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
