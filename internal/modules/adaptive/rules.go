package adaptive

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/edupulse-backend/internal/domain"
)

// Rule is the in-memory form of an adaptive rule. The score band is [MinSuccessRate, MaxSuccessRate).
type Rule struct {
	Name                   string  `yaml:"name" json:"name"`
	MinSuccessRate         float64 `yaml:"min_success_rate" json:"min_success_rate"`
	MaxSuccessRate         float64 `yaml:"max_success_rate" json:"max_success_rate"`
	MinAttempts            int     `yaml:"min_attempts" json:"min_attempts"`
	Action                 string  `yaml:"action" json:"action"`
	RecommendationTemplate string  `yaml:"recommendation_template" json:"recommendation_template"`
}

func (r Rule) matchesScore(score float64) bool {
	return r.MinSuccessRate <= score && score < r.MaxSuccessRate
}

// DefaultRules is used when neither the database nor a rules file provides any.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:                   "Low success",
			MinSuccessRate:         0.0,
			MaxSuccessRate:         0.55,
			MinAttempts:            1,
			Action:                 types.ActionDecreaseDifficulty,
			RecommendationTemplate: "Review the foundational exercises before moving on.",
		},
		{
			Name:                   "Medium success",
			MinSuccessRate:         0.55,
			MaxSuccessRate:         0.8,
			MinAttempts:            2,
			Action:                 types.ActionReinforceTopic,
			RecommendationTemplate: "Extra practice has been assigned for weak topics.",
		},
		{
			Name:                   "High success",
			MinSuccessRate:         0.8,
			MaxSuccessRate:         1.01,
			MinAttempts:            2,
			Action:                 types.ActionIncreaseDifficulty,
			RecommendationTemplate: "You are ready for more challenging tasks.",
		},
	}
}

func RulesFromModels(rows []*types.AdaptiveRule) []Rule {
	out := make([]Rule, 0, len(rows))
	for _, r := range rows {
		if r == nil {
			continue
		}
		out = append(out, Rule{
			Name:                   r.Name,
			MinSuccessRate:         r.MinSuccessRate,
			MaxSuccessRate:         r.MaxSuccessRate,
			MinAttempts:            r.MinAttempts,
			Action:                 r.Action,
			RecommendationTemplate: r.RecommendationTemplate,
		})
	}
	return out
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRulesFile reads fallback rules from a YAML document of the form `rules: [...]`.
func LoadRulesFile(path string) ([]Rule, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(b)
}

func ParseRules(b []byte) ([]Rule, error) {
	var doc rulesFile
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	for i, r := range doc.Rules {
		if r.MaxSuccessRate <= r.MinSuccessRate {
			return nil, fmt.Errorf("rule %d (%q): max_success_rate must exceed min_success_rate", i, r.Name)
		}
		if r.MinAttempts < 0 {
			return nil, fmt.Errorf("rule %d (%q): min_attempts must be >= 0", i, r.Name)
		}
		switch r.Action {
		case types.ActionIncreaseDifficulty, types.ActionDecreaseDifficulty, types.ActionReinforceTopic:
		default:
			return nil, fmt.Errorf("rule %d (%q): unknown action %q", i, r.Name, r.Action)
		}
	}
	return doc.Rules, nil
}

// PickRule returns the first rule whose band holds overall and whose min_attempts is met,
// else the first band match, else the first rule. An empty slice falls back to DefaultRules.
func PickRule(rules []Rule, overall float64, attempts int) Rule {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	var first *Rule
	for i := range rules {
		if !rules[i].matchesScore(overall) {
			continue
		}
		if attempts >= rules[i].MinAttempts {
			return rules[i]
		}
		if first == nil {
			first = &rules[i]
		}
	}
	if first != nil {
		return *first
	}
	return rules[0]
}

func LearningLevel(avg float64) string {
	switch {
	case avg >= 0.8:
		return types.LevelAdvanced
	case avg >= 0.55:
		return types.LevelIntermediate
	default:
		return types.LevelBeginner
	}
}

// Recommend builds the profile-level recommendation text.
func Recommend(rule Rule, weak []TopicScore, nodes []*types.TrajectoryNode) string {
	if len(weak) > 0 {
		return strings.TrimSpace(fmt.Sprintf("%s topic should be reviewed. %s", weak[0].Topic, rule.RecommendationTemplate))
	}
	if rule.Action == types.ActionIncreaseDifficulty {
		for _, n := range nodes {
			if n != nil && n.Status == types.NodeLocked {
				return fmt.Sprintf("Ready to move on to the next module: %s.", n.Topic)
			}
		}
	}
	return strings.TrimSpace(rule.RecommendationTemplate)
}
