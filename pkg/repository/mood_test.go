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
	"github.com/wellspring-lab/wellspring/pkg/repository/firestore"
	"github.com/wellspring-lab/wellspring/pkg/repository/memory"
)

func runMoodRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and ListByUserSince", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now().UTC()

		scores := []int{40, 55, 70}
		for i, score := range scores {
			entry := &model.MoodEntry{
				ID:        model.NewMoodID(),
				UserID:    "user-1",
				Score:     score,
				CreatedAt: now.Add(time.Duration(i-3) * 24 * time.Hour),
			}
			_, err := repo.Mood().Create(ctx, entry)
			gt.NoError(t, err).Required()
		}

		entries, err := repo.Mood().ListByUserSince(ctx, "user-1", now.Add(-7*24*time.Hour))
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(3)
		for i, e := range entries {
			gt.Value(t, e.Score).Equal(scores[i])
		}
	})

	t.Run("cutoff excludes old entries", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now().UTC()

		old := &model.MoodEntry{
			ID: model.NewMoodID(), UserID: "user-2", Score: 30,
			CreatedAt: now.Add(-40 * 24 * time.Hour),
		}
		recent := &model.MoodEntry{
			ID: model.NewMoodID(), UserID: "user-2", Score: 80,
			CreatedAt: now.Add(-time.Hour),
		}
		_, err := repo.Mood().Create(ctx, old)
		gt.NoError(t, err).Required()
		_, err = repo.Mood().Create(ctx, recent)
		gt.NoError(t, err).Required()

		entries, err := repo.Mood().ListByUserSince(ctx, "user-2", now.Add(-30*24*time.Hour))
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(1)
		gt.Value(t, entries[0].Score).Equal(80)
	})

	t.Run("users are isolated", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now().UTC()

		_, err := repo.Mood().Create(ctx, &model.MoodEntry{
			ID: model.NewMoodID(), UserID: "user-3", Score: 50, CreatedAt: now,
		})
		gt.NoError(t, err).Required()

		entries, err := repo.Mood().ListByUserSince(ctx, "user-4", now.Add(-time.Hour))
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(0)
	})
}

func TestMoodRepository_Memory(t *testing.T) {
	runMoodRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestMoodRepository_Firestore(t *testing.T) {
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}

	runMoodRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		repo, err := firestore.New(context.Background(), projectID, "",
			firestore.WithCollectionPrefix(fmt.Sprintf("test-%d-", time.Now().UnixNano())),
		)
		gt.NoError(t, err).Required()
		return repo
	})
}
