package types

import "fmt"

// Topic is the coarse classification label assigned to a user message.
// It steers retrieval scope and routing of the turn.
type Topic string

const (
	TopicNavigation   Topic = "navigation"
	TopicStress       Topic = "stress"
	TopicAnxiety      Topic = "anxiety"
	TopicDepression   Topic = "depression"
	TopicCrisis       Topic = "crisis"
	TopicUnclassified Topic = "unclassified"
)

// AllTopics returns all valid topics
func AllTopics() []Topic {
	return []Topic{
		TopicNavigation,
		TopicStress,
		TopicAnxiety,
		TopicDepression,
		TopicCrisis,
		TopicUnclassified,
	}
}

// IsValid checks if the topic is valid
func (t Topic) IsValid() bool {
	switch t {
	case TopicNavigation,
		TopicStress,
		TopicAnxiety,
		TopicDepression,
		TopicCrisis,
		TopicUnclassified:
		return true
	default:
		return false
	}
}

// Normalize returns the topic, treating empty as TopicUnclassified.
func (t Topic) Normalize() Topic {
	if t == "" {
		return TopicUnclassified
	}
	return t
}

// String returns the string representation of the topic
func (t Topic) String() string {
	return string(t)
}

// ParseTopic parses a string into a Topic
func ParseTopic(s string) (Topic, error) {
	topic := Topic(s)
	if !topic.IsValid() {
		return "", fmt.Errorf("invalid topic: %s", s)
	}
	return topic, nil
}
