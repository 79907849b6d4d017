package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
)

// MoodID is a UUID-based identifier for MoodEntry
type MoodID string

// NewMoodID generates a new UUID v4 MoodID
func NewMoodID() MoodID {
	return MoodID(uuid.New().String())
}

// MoodEntry is a self-reported mood data point on a 0-100 scale
type MoodEntry struct {
	ID          MoodID
	UserID      types.UserID
	Score       int
	SessionType string
	Feedback    string `masq:"secret"`
	CreatedAt   time.Time
}

// Validate checks the mood entry fields
func (m *MoodEntry) Validate() error {
	if err := m.UserID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID for mood entry")
	}
	if m.Score < 0 || m.Score > 100 {
		return goerr.New("mood score must be between 0 and 100", goerr.V("score", m.Score))
	}
	return nil
}

// Clone returns a copy of the mood entry
func (m *MoodEntry) Clone() *MoodEntry {
	copied := *m
	return &copied
}

// MoodTrend describes the direction of recent mood scores
type MoodTrend string

const (
	MoodTrendImproving    MoodTrend = "improving"
	MoodTrendDeclining    MoodTrend = "declining"
	MoodTrendStable       MoodTrend = "stable"
	MoodTrendInsufficient MoodTrend = "insufficient_data"
	MoodTrendNoData       MoodTrend = "no_data"
)

// MoodAnalytics is the aggregate view over a user's recent mood entries
type MoodAnalytics struct {
	UserID        types.UserID
	AverageMood   float64
	Trend         MoodTrend
	TotalSessions int
}
