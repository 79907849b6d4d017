package interfaces

import (
	"context"
	"time"

	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
)

// MoodRepository defines the interface for mood history persistence
type MoodRepository interface {
	// Create records a mood entry
	Create(ctx context.Context, entry *model.MoodEntry) (*model.MoodEntry, error)

	// ListByUserSince returns a user's entries recorded at or after the cutoff,
	// ordered by CreatedAt ascending
	ListByUserSince(ctx context.Context, userID types.UserID, since time.Time) ([]*model.MoodEntry, error)
}
