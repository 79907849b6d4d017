package interfaces

import (
	"context"

	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
)

// SessionRepository owns per-user conversation state. Turn history is
// append-only and capped; topic and emotional state are latest-wins.
//
// The repository itself enforces per-user mutual exclusion: callers hold the
// lock from AcquireUser for the whole turn so interleaved turns from the same
// user cannot reorder history or lose updates. Different users proceed
// concurrently.
type SessionRepository interface {
	// GetOrCreate returns the existing session or creates an empty one
	GetOrCreate(ctx context.Context, userID types.UserID) (*model.ConversationSession, error)

	// Get returns the existing session, or types.ErrSessionNotFound
	Get(ctx context.Context, userID types.UserID) (*model.ConversationSession, error)

	// AppendTurn appends to history, evicting the oldest turns beyond the cap,
	// and refreshes LastUpdated. Returns types.ErrSessionNotFound if
	// GetOrCreate has never been called for this user.
	AppendTurn(ctx context.Context, userID types.UserID, turn model.Turn) error

	// UpdateState overwrites CurrentTopic and EmotionalState (latest-wins)
	// and refreshes LastUpdated. Returns types.ErrSessionNotFound if
	// GetOrCreate has never been called for this user.
	UpdateState(ctx context.Context, userID types.UserID, topic types.Topic, state types.EmotionalState) error

	// AcquireUser blocks until the per-user lock is held and returns the
	// release function. Single-writer discipline keyed by userID.
	AcquireUser(ctx context.Context, userID types.UserID) func()
}
