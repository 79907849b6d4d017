package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
	"github.com/wellspring-lab/wellspring/pkg/service/classifier"
)

// Rules holds CLI flags for the classifier rule set. Without a rule file the
// built-in rules are used; a rule file replaces the topic rules but never the
// crisis tier, which stays built-in.
type Rules struct {
	path string
}

// Flags returns CLI flags for rule configuration
func (r *Rules) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "rules-file",
			Usage:       "Path to a TOML file with topic classification rules",
			Sources:     cli.EnvVars("WELLSPRING_RULES_FILE"),
			Destination: &r.path,
		},
	}
}

type ruleFile struct {
	Rules   []ruleEntry  `toml:"rule"`
	Weights *weightEntry `toml:"weights"`
}

type ruleEntry struct {
	Topic    string   `toml:"topic"`
	Keywords []string `toml:"keywords"`
	Patterns []string `toml:"patterns"`
}

type weightEntry struct {
	Keyword         float64 `toml:"keyword"`
	Pattern         float64 `toml:"pattern"`
	Context         float64 `toml:"context"`
	SwitchThreshold float64 `toml:"switch_threshold"`
}

// Configure returns the classifier configuration, loading and validating the
// rule file when one is set.
func (r *Rules) Configure() (classifier.Config, error) {
	cfg := classifier.DefaultConfig()
	if r.path == "" {
		return cfg, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(r.path)
	if err != nil {
		return cfg, goerr.Wrap(err, "failed to read rules file", goerr.V("path", r.path))
	}

	var file ruleFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return cfg, goerr.Wrap(err, "failed to parse TOML rules file", goerr.V("path", r.path))
	}

	if len(file.Rules) > 0 {
		rules := make([]classifier.Rule, 0, len(file.Rules))
		for _, entry := range file.Rules {
			topic, err := types.ParseTopic(entry.Topic)
			if err != nil {
				return cfg, goerr.Wrap(err, "invalid topic in rules file", goerr.V("topic", entry.Topic))
			}
			if topic == types.TopicCrisis {
				return cfg, goerr.New("crisis rules cannot be overridden", goerr.V("path", r.path))
			}
			rules = append(rules, classifier.Rule{
				Topic:    topic,
				Keywords: entry.Keywords,
				Patterns: entry.Patterns,
			})
		}
		cfg.Rules = rules
	}

	if w := file.Weights; w != nil {
		if w.Keyword > 0 {
			cfg.KeywordWeight = w.Keyword
		}
		if w.Pattern > 0 {
			cfg.PatternWeight = w.Pattern
		}
		if w.Context > 0 {
			cfg.ContextWeight = w.Context
		}
		if w.SwitchThreshold > 0 {
			cfg.SwitchThreshold = w.SwitchThreshold
		}
	}

	return cfg, nil
}
