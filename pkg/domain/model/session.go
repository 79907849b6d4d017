package model

import (
	"time"

	"github.com/wellspring-lab/wellspring/pkg/domain/types"
)

// Turn is a single utterance within a conversation
type Turn struct {
	Role      types.Role
	Text      string `masq:"secret"`
	Timestamp time.Time
}

// ConversationSession is the long-lived per-user conversational state. Turn
// history is append-only during a session and capped; CurrentTopic and
// EmotionalState are latest-wins fields overwritten after each exchange.
type ConversationSession struct {
	UserID         types.UserID
	Turns          []Turn
	CurrentTopic   types.Topic
	EmotionalState types.EmotionalState
	LastUpdated    time.Time
}

// NewConversationSession returns an empty session for the given user
func NewConversationSession(userID types.UserID) *ConversationSession {
	return &ConversationSession{
		UserID:         userID,
		CurrentTopic:   types.TopicUnclassified,
		EmotionalState: types.EmotionNeutral,
	}
}

// Clone returns a deep copy of the session
func (s *ConversationSession) Clone() *ConversationSession {
	copied := &ConversationSession{
		UserID:         s.UserID,
		CurrentTopic:   s.CurrentTopic,
		EmotionalState: s.EmotionalState,
		LastUpdated:    s.LastUpdated,
	}
	if s.Turns != nil {
		copied.Turns = make([]Turn, len(s.Turns))
		copy(copied.Turns, s.Turns)
	}
	return copied
}

// TurnCount returns the number of retained turns
func (s *ConversationSession) TurnCount() int {
	return len(s.Turns)
}

// RecentTurns returns up to n most recent turns, oldest first
func (s *ConversationSession) RecentTurns(n int) []Turn {
	if n <= 0 || len(s.Turns) == 0 {
		return nil
	}
	if n > len(s.Turns) {
		n = len(s.Turns)
	}
	window := make([]Turn, n)
	copy(window, s.Turns[len(s.Turns)-n:])
	return window
}

// RecentUserTexts returns the text of up to n most recent user turns,
// oldest first. Used by the classifier for sticky-topic context.
func (s *ConversationSession) RecentUserTexts(n int) []string {
	var texts []string
	for i := len(s.Turns) - 1; i >= 0 && len(texts) < n; i-- {
		if s.Turns[i].Role == types.RoleUser {
			texts = append(texts, s.Turns[i].Text)
		}
	}
	// reverse to oldest-first
	for i, j := 0, len(texts)-1; i < j; i, j = i+1, j-1 {
		texts[i], texts[j] = texts[j], texts[i]
	}
	return texts
}
