package types

import (
	"fmt"
	"strings"
)

// EmotionalState is the coarse emotional label inferred from recent turns
type EmotionalState string

const (
	EmotionNeutral   EmotionalState = "neutral"
	EmotionAnxious   EmotionalState = "anxious"
	EmotionDepressed EmotionalState = "depressed"
	EmotionStressed  EmotionalState = "stressed"
	EmotionCrisis    EmotionalState = "crisis"
)

// AllEmotionalStates returns all valid emotional states
func AllEmotionalStates() []EmotionalState {
	return []EmotionalState{
		EmotionNeutral,
		EmotionAnxious,
		EmotionDepressed,
		EmotionStressed,
		EmotionCrisis,
	}
}

// IsValid checks if the emotional state is valid
func (e EmotionalState) IsValid() bool {
	switch e {
	case EmotionNeutral,
		EmotionAnxious,
		EmotionDepressed,
		EmotionStressed,
		EmotionCrisis:
		return true
	default:
		return false
	}
}

// Normalize returns the state, treating empty as EmotionNeutral.
func (e EmotionalState) Normalize() EmotionalState {
	if e == "" {
		return EmotionNeutral
	}
	return e
}

// String returns the string representation of the emotional state
func (e EmotionalState) String() string {
	return string(e)
}

// ParseEmotionalState parses a string into an EmotionalState
func ParseEmotionalState(s string) (EmotionalState, error) {
	state := EmotionalState(s)
	if !state.IsValid() {
		return "", fmt.Errorf("invalid emotional state: %s", s)
	}
	return state, nil
}

// EmotionForTopic maps a classified topic to the emotional state it implies.
func EmotionForTopic(t Topic) EmotionalState {
	switch t {
	case TopicAnxiety:
		return EmotionAnxious
	case TopicDepression:
		return EmotionDepressed
	case TopicStress:
		return EmotionStressed
	case TopicCrisis:
		return EmotionCrisis
	default:
		return EmotionNeutral
	}
}

// positiveWords signal recovery regardless of the conversation topic
var positiveWords = []string{
	"better",
	"good",
	"great",
	"positive",
	"hopeful",
	"grateful",
	"happy",
	"improving",
	"calm",
}

// DetectEmotion infers the emotional state from the message text and the
// classified topic. Positive language in the message overrides the
// topic-derived state with neutral, so a recovering user is not kept labeled
// by a sticky topic. Crisis always wins.
func DetectEmotion(message string, t Topic) EmotionalState {
	if t == TopicCrisis {
		return EmotionCrisis
	}
	lower := strings.ToLower(message)
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			return EmotionNeutral
		}
	}
	return EmotionForTopic(t)
}
