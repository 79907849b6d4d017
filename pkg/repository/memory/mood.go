package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
)

type moodRepository struct {
	mu      sync.RWMutex
	entries map[types.UserID][]*model.MoodEntry
}

func newMoodRepository() *moodRepository {
	return &moodRepository{
		entries: make(map[types.UserID][]*model.MoodEntry),
	}
}

func (r *moodRepository) Create(ctx context.Context, entry *model.MoodEntry) (*model.MoodEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := entry.Clone()
	if created.ID == "" {
		created.ID = model.NewMoodID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	r.entries[created.UserID] = append(r.entries[created.UserID], created)
	return created.Clone(), nil
}

func (r *moodRepository) ListByUserSince(ctx context.Context, userID types.UserID, since time.Time) ([]*model.MoodEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.MoodEntry
	for _, e := range r.entries[userID] {
		if !e.CreatedAt.Before(since) {
			result = append(result, e.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}
