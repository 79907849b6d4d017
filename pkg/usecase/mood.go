package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/wellspring-lab/wellspring/pkg/domain/interfaces"
	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
)

// DefaultAnalyticsDays is the default lookback window for mood analytics
const DefaultAnalyticsDays = 30

// trendWindow is how many of the most recent entries form the "recent" side
// of the trend comparison
const trendWindow = 7

// trendDelta is the mean-score difference that counts as a trend
const trendDelta = 5.0

// minTrendEntries is the minimum number of entries to compute a trend at all
const minTrendEntries = 3

// MoodUseCase records self-reported mood scores and aggregates them
type MoodUseCase struct {
	repo interfaces.Repository
}

func NewMoodUseCase(repo interfaces.Repository) *MoodUseCase {
	return &MoodUseCase{repo: repo}
}

// Record validates and persists one mood entry
func (u *MoodUseCase) Record(ctx context.Context, userID types.UserID, score int, sessionType, feedback string) (*model.MoodEntry, error) {
	entry := &model.MoodEntry{
		ID:          model.NewMoodID(),
		UserID:      userID,
		Score:       score,
		SessionType: sessionType,
		Feedback:    feedback,
		CreatedAt:   time.Now(),
	}
	if err := entry.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidRequest, "invalid mood entry", goerr.V("cause", err))
	}

	created, err := u.repo.Mood().Create(ctx, entry)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to record mood entry", goerr.V("userID", userID))
	}
	return created, nil
}

// Analytics aggregates the user's mood entries over the last days days
func (u *MoodUseCase) Analytics(ctx context.Context, userID types.UserID, days int) (*model.MoodAnalytics, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidRequest, "invalid user ID", goerr.V("cause", err))
	}
	if days <= 0 {
		days = DefaultAnalyticsDays
	}

	since := time.Now().AddDate(0, 0, -days)
	entries, err := u.repo.Mood().ListByUserSince(ctx, userID, since)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load mood entries", goerr.V("userID", userID))
	}

	analytics := &model.MoodAnalytics{
		UserID:        userID,
		Trend:         computeTrend(entries),
		TotalSessions: len(entries),
	}
	if len(entries) > 0 {
		var sum int
		for _, e := range entries {
			sum += e.Score
		}
		analytics.AverageMood = float64(sum) / float64(len(entries))
	}
	return analytics, nil
}

// computeTrend compares the mean of the most recent entries against the mean
// of the remainder. Entries are ordered by CreatedAt ascending.
func computeTrend(entries []*model.MoodEntry) model.MoodTrend {
	if len(entries) == 0 {
		return model.MoodTrendNoData
	}
	if len(entries) < minTrendEntries {
		return model.MoodTrendInsufficient
	}

	split := len(entries) - trendWindow
	if split <= 0 {
		// too few older entries for a baseline
		split = len(entries) / 2
	}

	mean := func(es []*model.MoodEntry) float64 {
		var sum int
		for _, e := range es {
			sum += e.Score
		}
		return float64(sum) / float64(len(es))
	}

	diff := mean(entries[split:]) - mean(entries[:split])
	switch {
	case diff > trendDelta:
		return model.MoodTrendImproving
	case diff < -trendDelta:
		return model.MoodTrendDeclining
	default:
		return model.MoodTrendStable
	}
}
