package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/wellspring-lab/wellspring/pkg/domain/interfaces"
	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
	"github.com/wellspring-lab/wellspring/pkg/repository/firestore"
	"github.com/wellspring-lab/wellspring/pkg/repository/memory"
)

func runSessionRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("GetOrCreate creates empty session", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session, err := repo.Session().GetOrCreate(ctx, "user-1")
		gt.NoError(t, err).Required()
		gt.Value(t, session.UserID).Equal(types.UserID("user-1"))
		gt.Value(t, session.CurrentTopic).Equal(types.TopicUnclassified)
		gt.Value(t, session.EmotionalState).Equal(types.EmotionNeutral)
		gt.Value(t, session.TurnCount()).Equal(0)

		// second call returns the same session, not a fresh one
		gt.NoError(t, repo.Session().AppendTurn(ctx, "user-1", model.Turn{
			Role: types.RoleUser, Text: "hello", Timestamp: time.Now(),
		})).Required()

		again, err := repo.Session().GetOrCreate(ctx, "user-1")
		gt.NoError(t, err).Required()
		gt.Value(t, again.TurnCount()).Equal(1)
	})

	t.Run("Get unknown user returns ErrSessionNotFound", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Session().Get(context.Background(), "nobody")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrSessionNotFound)).True()
	})

	t.Run("AppendTurn preserves order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Session().GetOrCreate(ctx, "user-2")
		gt.NoError(t, err).Required()

		for i := 0; i < 5; i++ {
			gt.NoError(t, repo.Session().AppendTurn(ctx, "user-2", model.Turn{
				Role:      types.RoleUser,
				Text:      fmt.Sprintf("message %d", i),
				Timestamp: time.Now(),
			})).Required()
		}

		session, err := repo.Session().Get(ctx, "user-2")
		gt.NoError(t, err).Required()
		gt.Value(t, session.TurnCount()).Equal(5)
		for i, turn := range session.Turns {
			gt.Value(t, turn.Text).Equal(fmt.Sprintf("message %d", i))
		}
	})

	t.Run("AppendTurn evicts oldest beyond cap", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Session().GetOrCreate(ctx, "user-3")
		gt.NoError(t, err).Required()

		for i := 0; i < memory.DefaultHistoryCap+10; i++ {
			gt.NoError(t, repo.Session().AppendTurn(ctx, "user-3", model.Turn{
				Role:      types.RoleUser,
				Text:      fmt.Sprintf("message %d", i),
				Timestamp: time.Now(),
			})).Required()
		}

		session, err := repo.Session().Get(ctx, "user-3")
		gt.NoError(t, err).Required()
		gt.Value(t, session.TurnCount()).Equal(memory.DefaultHistoryCap)
		gt.Value(t, session.Turns[0].Text).Equal("message 10")
		gt.Value(t, session.Turns[len(session.Turns)-1].Text).
			Equal(fmt.Sprintf("message %d", memory.DefaultHistoryCap+9))
	})

	t.Run("UpdateState is latest-wins", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Session().GetOrCreate(ctx, "user-4")
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Session().UpdateState(ctx, "user-4", types.TopicStress, types.EmotionStressed)).Required()
		gt.NoError(t, repo.Session().UpdateState(ctx, "user-4", types.TopicAnxiety, types.EmotionAnxious)).Required()

		session, err := repo.Session().Get(ctx, "user-4")
		gt.NoError(t, err).Required()
		gt.Value(t, session.CurrentTopic).Equal(types.TopicAnxiety)
		gt.Value(t, session.EmotionalState).Equal(types.EmotionAnxious)
	})

	t.Run("AppendTurn without session fails", func(t *testing.T) {
		repo := newRepo(t)

		err := repo.Session().AppendTurn(context.Background(), "ghost", model.Turn{
			Role: types.RoleUser, Text: "hello", Timestamp: time.Now(),
		})
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrSessionNotFound)).True()
	})

	t.Run("AcquireUser serializes same user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Session().GetOrCreate(ctx, "user-5")
		gt.NoError(t, err).Required()

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				release := repo.Session().AcquireUser(ctx, "user-5")
				defer release()
				gt.NoError(t, repo.Session().AppendTurn(ctx, "user-5", model.Turn{
					Role:      types.RoleUser,
					Text:      fmt.Sprintf("concurrent %d", i),
					Timestamp: time.Now(),
				}))
			}(i)
		}
		wg.Wait()

		session, err := repo.Session().Get(ctx, "user-5")
		gt.NoError(t, err).Required()
		gt.Value(t, session.TurnCount()).Equal(20)
	})

	t.Run("returned session is isolated from store", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Session().GetOrCreate(ctx, "user-6")
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Session().AppendTurn(ctx, "user-6", model.Turn{
			Role: types.RoleUser, Text: "original", Timestamp: time.Now(),
		})).Required()

		session, err := repo.Session().Get(ctx, "user-6")
		gt.NoError(t, err).Required()
		session.Turns[0].Text = "mutated"
		session.CurrentTopic = types.TopicCrisis

		again, err := repo.Session().Get(ctx, "user-6")
		gt.NoError(t, err).Required()
		gt.Value(t, again.Turns[0].Text).Equal("original")
		gt.Value(t, again.CurrentTopic).Equal(types.TopicUnclassified)
	})
}

func TestSessionRepository_Memory(t *testing.T) {
	runSessionRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestSessionRepository_Firestore(t *testing.T) {
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}

	runSessionRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		repo, err := firestore.New(context.Background(), projectID, "",
			firestore.WithCollectionPrefix(fmt.Sprintf("test-%d-", time.Now().UnixNano())),
		)
		gt.NoError(t, err).Required()
		return repo
	})
}
