package adaptive

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats/scalar"
	"gorm.io/datatypes"

	types "github.com/yungbote/edupulse-backend/internal/domain"
)

const (
	historyLimit      = 30
	pointsPerReward   = 25
	historyDateLayout = "2006-01-02"
)

type HistoryPoint struct {
	Date  string  `json:"date"`
	Topic string  `json:"topic"`
	Score float64 `json:"score"`
}

// Snapshot is everything a profile recompute writes. AverageScore and CompletionRate keep full
// precision; callers round for presentation.
type Snapshot struct {
	LearningLevel    string
	AverageScore     float64
	CompletionRate   float64
	TotalPoints      int
	TotalTimeSeconds int
	WeakTopics       []TopicScore
	StrongTopics     []TopicScore
	ProgressHistory  []HistoryPoint
	Recommendation   string
	Action           string
}

// BuildSnapshot computes profile fields from sorted entries, a reward count, the active rules
// and the already synced trajectory.
func BuildSnapshot(entries []SubmissionEntry, rewards int, rules []Rule, traj TrajectoryResult) Snapshot {
	metrics := AggregateTopics(entries)
	totals := Summarize(entries)
	scored := Scored(entries)

	snap := Snapshot{
		LearningLevel:    LearningLevel(totals.AverageScore),
		AverageScore:     totals.AverageScore,
		CompletionRate:   traj.CompletionRate,
		TotalTimeSeconds: totals.TotalTimeSeconds,
		WeakTopics:       metrics.WeakTopics(),
		StrongTopics:     metrics.StrongTopics(),
		ProgressHistory:  ProgressHistory(scored),
	}

	base := 0.0
	for _, e := range scored {
		if *e.Score > 0 {
			base += *e.Score * 100
		}
	}
	snap.TotalPoints = rewards*pointsPerReward + int(base)

	rule := PickRule(rules, totals.AverageScore, totals.ScoredAttempts)
	snap.Action = rule.Action
	snap.Recommendation = Recommend(rule, snap.WeakTopics, traj.Nodes)
	return snap
}

// ProgressHistory keeps the last thirty scored entries.
func ProgressHistory(scored []SubmissionEntry) []HistoryPoint {
	if len(scored) > historyLimit {
		scored = scored[len(scored)-historyLimit:]
	}
	out := make([]HistoryPoint, 0, len(scored))
	for _, e := range scored {
		if e.Score == nil || e.CreatedAt.IsZero() {
			continue
		}
		out = append(out, HistoryPoint{
			Date:  e.CreatedAt.UTC().Format(historyDateLayout),
			Topic: e.Topic,
			Score: scalar.RoundEven(*e.Score*100, 2),
		})
	}
	return out
}

// Apply copies the snapshot onto a profile row.
func (s Snapshot) Apply(p *types.StudentProfile) error {
	weak, err := json.Marshal(s.WeakTopics)
	if err != nil {
		return err
	}
	strong, err := json.Marshal(s.StrongTopics)
	if err != nil {
		return err
	}
	history, err := json.Marshal(s.ProgressHistory)
	if err != nil {
		return err
	}
	p.LearningLevel = s.LearningLevel
	p.AverageScore = s.AverageScore
	p.CompletionRate = s.CompletionRate
	p.TotalPoints = s.TotalPoints
	p.TotalTimeSeconds = s.TotalTimeSeconds
	p.WeakTopics = datatypes.JSON(weak)
	p.StrongTopics = datatypes.JSON(strong)
	p.ProgressHistory = datatypes.JSON(history)
	p.LastRecommendation = s.Recommendation
	return nil
}

type NodeView struct {
	ID             uuid.UUID  `json:"id"`
	LessonID       uuid.UUID  `json:"lesson"`
	LessonTitle    string     `json:"lesson_title"`
	Topic          string     `json:"topic"`
	OrderIndex     int        `json:"order_index"`
	RequiredScore  float64    `json:"required_score"`
	Mastery        float64    `json:"mastery"`
	Status         string     `json:"status"`
	Recommendation string     `json:"recommendation"`
	UnlockedAt     *time.Time `json:"unlocked_at"`
	CompletedAt    *time.Time `json:"completed_at"`
}

func NewNodeView(n *types.TrajectoryNode, lessonTitle string) NodeView {
	if lessonTitle == "" && n.Lesson != nil {
		lessonTitle = n.Lesson.Title
	}
	return NodeView{
		ID:             n.ID,
		LessonID:       n.LessonID,
		LessonTitle:    lessonTitle,
		Topic:          n.Topic,
		OrderIndex:     n.OrderIndex,
		RequiredScore:  n.RequiredScore,
		Mastery:        scalar.RoundEven(n.Mastery, 4),
		Status:         n.Status,
		Recommendation: n.Recommendation,
		UnlockedAt:     n.UnlockedAt,
		CompletedAt:    n.CompletedAt,
	}
}

// ProfileView is the personalization payload returned to callers. AverageScore and
// CompletionRate are percentages rounded to two places.
type ProfileView struct {
	ProfileID        uuid.UUID      `json:"profile_id"`
	LearningLevel    string         `json:"learning_level"`
	AverageScore     float64        `json:"average_score"`
	CompletionRate   float64        `json:"completion_rate"`
	TotalPoints      int            `json:"total_points"`
	TotalTimeSeconds int            `json:"total_time_seconds"`
	WeakTopics       []TopicScore   `json:"weak_topics"`
	StrongTopics     []TopicScore   `json:"strong_topics"`
	ProgressHistory  []HistoryPoint `json:"progress_history"`
	Recommendation   string         `json:"recommendation"`
	Trajectory       []NodeView     `json:"trajectory"`
	AdaptiveAction   string         `json:"adaptive_action,omitempty"`
}

// NewProfileView renders a stored profile. Malformed JSON columns decode as empty lists.
func NewProfileView(p *types.StudentProfile, nodes []*types.TrajectoryNode) ProfileView {
	v := ProfileView{
		ProfileID:        p.ID,
		LearningLevel:    p.LearningLevel,
		AverageScore:     scalar.RoundEven(p.AverageScore*100, 2),
		CompletionRate:   scalar.RoundEven(p.CompletionRate, 2),
		TotalPoints:      p.TotalPoints,
		TotalTimeSeconds: p.TotalTimeSeconds,
		WeakTopics:       decodeList[TopicScore](p.WeakTopics),
		StrongTopics:     decodeList[TopicScore](p.StrongTopics),
		ProgressHistory:  decodeList[HistoryPoint](p.ProgressHistory),
		Recommendation:   p.LastRecommendation,
		Trajectory:       make([]NodeView, 0, len(nodes)),
	}
	for _, n := range nodes {
		if n != nil {
			v.Trajectory = append(v.Trajectory, NewNodeView(n, ""))
		}
	}
	return v
}

// DecodeTopics reads a weak/strong topic column.
func DecodeTopics(raw datatypes.JSON) []TopicScore {
	return decodeList[TopicScore](raw)
}

func decodeList[T any](raw datatypes.JSON) []T {
	out := []T{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []T{}
	}
	return out
}
