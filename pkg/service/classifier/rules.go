package classifier

import "github.com/wellspring-lab/wellspring/pkg/domain/types"

// Rule scores one topic over keyword and phrase patterns
type Rule struct {
	Topic    types.Topic
	Keywords []string
	Patterns []string // regular expressions, matched against the lowercased message
}

// Config holds the full rule set and scoring weights. Crisis rules form a
// distinct, always-first-checked tier so the safety property stays
// independently verifiable; they are never interleaved with topic scoring.
type Config struct {
	CrisisKeywords []string
	CrisisPatterns []string
	Rules          []Rule

	KeywordWeight   float64 // per keyword hit
	PatternWeight   float64 // per pattern hit
	ContextWeight   float64 // per keyword hit in recent user turns
	SwitchThreshold float64 // minimum confidence to switch away from the prior topic
}

// DefaultConfig returns the built-in rule set
func DefaultConfig() Config {
	return Config{
		CrisisKeywords: []string{
			"suicide", "kill myself", "end it all", "not worth living",
			"hurt myself", "self harm", "can't go on", "want to die",
			"ending everything", "want it to end", "no point anymore",
		},
		CrisisPatterns: []string{
			`want.*die`, `end.*life`, `hurt.*myself`, `no.*hope`,
		},
		Rules: []Rule{
			{
				Topic:    types.TopicStress,
				Keywords: []string{"stress", "overwhelmed", "pressure", "tension", "burden", "exhausted"},
				Patterns: []string{`feel.*stress`, `so much pressure`, `can't handle`, `overwhelmed`},
			},
			{
				Topic:    types.TopicAnxiety,
				Keywords: []string{"anxious", "worried", "panic", "nervous", "fear", "afraid", "scared"},
				Patterns: []string{`feel.*anxious`, `panic.*attack`, `worr(y|ied).*about`, `so scared`},
			},
			{
				Topic:    types.TopicDepression,
				Keywords: []string{"sad", "depressed", "hopeless", "empty", "worthless", "lonely"},
				Patterns: []string{`feel.*sad`, `so depressed`, `feel.*empty`, `feel.*hopeless`},
			},
			{
				Topic:    types.TopicNavigation,
				Keywords: []string{"help", "support", "start", "schedule", "appointment", "find"},
				Patterns: []string{`how.*work`, `get started`, `need.*help`, `what.*should`},
			},
		},

		KeywordWeight:   0.3,
		PatternWeight:   0.5,
		ContextWeight:   0.1,
		SwitchThreshold: 0.3,
	}
}
