package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
)

func TestDetectEmotion(t *testing.T) {
	tests := []struct {
		name    string
		message string
		topic   types.Topic
		expect  types.EmotionalState
	}{
		{"topic mapping", "I can't stop worrying", types.TopicAnxiety, types.EmotionAnxious},
		{"positive overrides topic", "feeling so much better today", types.TopicAnxiety, types.EmotionNeutral},
		{"positive overrides depression", "I am grateful for the support", types.TopicDepression, types.EmotionNeutral},
		{"case insensitive", "Things are GOOD now", types.TopicStress, types.EmotionNeutral},
		{"crisis wins over positive words", "it would be better to end it all", types.TopicCrisis, types.EmotionCrisis},
		{"unclassified stays neutral", "just checking in", types.TopicUnclassified, types.EmotionNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, types.DetectEmotion(tt.message, tt.topic)).Equal(tt.expect)
		})
	}
}
