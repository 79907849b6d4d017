package classifier

import (
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
)

// contextTurns is how many recent user turns contribute sticky-topic context
const contextTurns = 3

// Result is the classification outcome for one message
type Result struct {
	Topic      types.Topic
	Confidence float64
}

// IsCrisis reports whether the crisis tier matched
func (r Result) IsCrisis() bool {
	return r.Topic == types.TopicCrisis
}

type compiledRule struct {
	topic    types.Topic
	keywords []string
	patterns []*regexp.Regexp
}

// Classifier assigns a coarse topic label to a user message using an
// ordered, prioritized rule list. Classify is a pure function of its inputs:
// no hidden state, no external dependencies, so the crisis path stays
// available even when retrieval or generation infrastructure is degraded.
type Classifier struct {
	crisisKeywords []string
	crisisPatterns []*regexp.Regexp
	rules          []compiledRule
	cfg            Config
}

// New compiles the given rule configuration
func New(cfg Config) (*Classifier, error) {
	c := &Classifier{
		crisisKeywords: cfg.CrisisKeywords,
		cfg:            cfg,
	}

	for _, p := range cfg.CrisisPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid crisis pattern", goerr.V("pattern", p))
		}
		c.crisisPatterns = append(c.crisisPatterns, re)
	}

	for _, rule := range cfg.Rules {
		compiled := compiledRule{
			topic:    rule.Topic,
			keywords: rule.Keywords,
		}
		for _, p := range rule.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, goerr.Wrap(err, "invalid topic pattern",
					goerr.V("topic", rule.Topic), goerr.V("pattern", p))
			}
			compiled.patterns = append(compiled.patterns, re)
		}
		c.rules = append(c.rules, compiled)
	}

	return c, nil
}

// Classify scores the message against the rule set. Crisis indicators are
// checked first and short-circuit everything else. When no topic scores at
// or above the switch threshold the prior topic is kept (sticky topic), and
// unclassified is returned when there is no prior topic either.
//
// recentUserTexts are the texts of recent user turns, oldest first; only the
// most recent few contribute context support.
func (c *Classifier) Classify(message string, priorTopic types.Topic, recentUserTexts []string) Result {
	lower := strings.ToLower(message)

	// crisis tier: any match wins immediately, regardless of other signals
	if c.matchesCrisis(lower) {
		return Result{Topic: types.TopicCrisis, Confidence: 1.0}
	}

	if len(recentUserTexts) > contextTurns {
		recentUserTexts = recentUserTexts[len(recentUserTexts)-contextTurns:]
	}

	best := Result{Topic: types.TopicUnclassified}
	for _, rule := range c.rules {
		score := c.scoreRule(rule, lower, recentUserTexts)
		if score > best.Confidence {
			best = Result{Topic: rule.topic, Confidence: score}
		}
	}

	if best.Confidence >= c.cfg.SwitchThreshold {
		if best.Confidence > 1.0 {
			best.Confidence = 1.0
		}
		return best
	}

	// sticky topic fallback
	if prior := priorTopic.Normalize(); prior != types.TopicUnclassified {
		return Result{Topic: prior, Confidence: best.Confidence}
	}
	return Result{Topic: types.TopicUnclassified, Confidence: best.Confidence}
}

func (c *Classifier) matchesCrisis(lower string) bool {
	for _, kw := range c.crisisKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, re := range c.crisisPatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

func (c *Classifier) scoreRule(rule compiledRule, lower string, recentUserTexts []string) float64 {
	var score float64

	for _, kw := range rule.keywords {
		if strings.Contains(lower, kw) {
			score += c.cfg.KeywordWeight
		}
	}
	for _, re := range rule.patterns {
		if re.MatchString(lower) {
			score += c.cfg.PatternWeight
		}
	}

	for _, prev := range recentUserTexts {
		prevLower := strings.ToLower(prev)
		for _, kw := range rule.keywords {
			if strings.Contains(prevLower, kw) {
				score += c.cfg.ContextWeight
			}
		}
	}

	return score
}
