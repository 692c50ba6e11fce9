package adaptive

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/edupulse-backend/internal/domain"
)

func TestPickRuleDefaults(t *testing.T) {
	cases := []struct {
		score    float64
		attempts int
		want     string
	}{
		{0.2, 1, types.ActionDecreaseDifficulty},
		{0.6, 3, types.ActionReinforceTopic},
		{0.6, 1, types.ActionReinforceTopic},
		{0.9, 5, types.ActionIncreaseDifficulty},
		{1.0, 2, types.ActionIncreaseDifficulty},
		{5.0, 2, types.ActionDecreaseDifficulty},
	}
	for _, tc := range cases {
		if got := PickRule(nil, tc.score, tc.attempts); got.Action != tc.want {
			t.Fatalf("PickRule(%v, %d) = %q, want %q", tc.score, tc.attempts, got.Action, tc.want)
		}
	}
}

func TestPickRulePrefersMinAttempts(t *testing.T) {
	rules := []Rule{
		{Name: "strict", MinSuccessRate: 0, MaxSuccessRate: 1, MinAttempts: 5, Action: types.ActionIncreaseDifficulty},
		{Name: "loose", MinSuccessRate: 0, MaxSuccessRate: 1, MinAttempts: 1, Action: types.ActionReinforceTopic},
	}
	if got := PickRule(rules, 0.5, 2); got.Name != "loose" {
		t.Fatalf("expected loose, got %q", got.Name)
	}
	if got := PickRule(rules, 0.5, 0); got.Name != "strict" {
		t.Fatalf("expected first band match, got %q", got.Name)
	}
}

func TestLearningLevel(t *testing.T) {
	if LearningLevel(0.8) != types.LevelAdvanced || LearningLevel(0.55) != types.LevelIntermediate || LearningLevel(0.549) != types.LevelBeginner {
		t.Fatalf("unexpected level thresholds")
	}
}

func TestRecommend(t *testing.T) {
	rule := Rule{Action: types.ActionIncreaseDifficulty, RecommendationTemplate: "Keep going."}
	weak := []TopicScore{{Topic: "Fractions", AvgScore: 0.2, Attempts: 2}}
	if got := Recommend(rule, weak, nil); got != "Fractions topic should be reviewed. Keep going." {
		t.Fatalf("weak: got %q", got)
	}
	nodes := []*types.TrajectoryNode{
		{LessonID: uuid.New(), Topic: "Intro", Status: types.NodeCompleted},
		{LessonID: uuid.New(), Topic: "Decimals", Status: types.NodeLocked},
	}
	if got := Recommend(rule, nil, nodes); got != "Ready to move on to the next module: Decimals." {
		t.Fatalf("locked: got %q", got)
	}
	rule.Action = types.ActionReinforceTopic
	if got := Recommend(rule, nil, nodes); got != "Keep going." {
		t.Fatalf("template: got %q", got)
	}
}

func TestParseRules(t *testing.T) {
	doc := `
rules:
  - name: low
    min_success_rate: 0
    max_success_rate: 0.5
    min_attempts: 1
    action: decrease_difficulty
    recommendation_template: Slow down.
  - name: high
    min_success_rate: 0.5
    max_success_rate: 1.01
    min_attempts: 2
    action: increase_difficulty
`
	rules, err := ParseRules([]byte(doc))
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	if len(rules) != 2 || rules[0].RecommendationTemplate != "Slow down." || rules[1].MinAttempts != 2 {
		t.Fatalf("unexpected rules: %+v", rules)
	}

	_, err = ParseRules([]byte("rules:\n  - name: bad\n    min_success_rate: 0.5\n    max_success_rate: 0.4\n    action: reinforce_topic\n"))
	if err == nil || !strings.Contains(err.Error(), "max_success_rate") {
		t.Fatalf("expected band error, got %v", err)
	}
	_, err = ParseRules([]byte("rules:\n  - name: bad\n    max_success_rate: 1\n    action: explode\n"))
	if err == nil {
		t.Fatalf("expected unknown action error")
	}
}
