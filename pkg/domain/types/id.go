package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// UserID identifies a conversation owner. One ConversationSession exists per UserID.
type UserID string

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Validate checks if the UserID is valid
func (u UserID) Validate() error {
	if u == "" {
		return goerr.New("user ID cannot be empty")
	}
	if !userIDPattern.MatchString(string(u)) {
		return goerr.New("user ID must be alphanumeric with dots, underscores or hyphens", goerr.V("id", u))
	}
	return nil
}

// String returns the string representation of UserID
func (u UserID) String() string {
	return string(u)
}

// Category is the topic tag assigned to a document chunk at ingestion time.
// It shares the Topic value space minus crisis/unclassified, plus "general".
type Category string

const (
	CategoryGeneral    Category = "general"
	CategoryStress     Category = "stress"
	CategoryAnxiety    Category = "anxiety"
	CategoryDepression Category = "depression"
	CategoryNavigation Category = "navigation"
)

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is valid
func (c Category) IsValid() bool {
	switch c {
	case CategoryGeneral,
		CategoryStress,
		CategoryAnxiety,
		CategoryDepression,
		CategoryNavigation:
		return true
	default:
		return false
	}
}

// Matches reports whether the category corresponds to the given topic.
func (c Category) Matches(t Topic) bool {
	return string(c) == string(t)
}
