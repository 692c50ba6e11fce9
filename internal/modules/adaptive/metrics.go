package adaptive

import (
	"sort"

	"gonum.org/v1/gonum/floats/scalar"
)

const (
	weakTopicThreshold   = 0.6
	strongTopicThreshold = 0.8
	minTopicAttempts     = 2
)

type TopicMetric struct {
	Topic            string  `json:"topic"`
	Attempts         int     `json:"attempts"`
	ScoredAttempts   int     `json:"scored_attempts"`
	ScoreSum         float64 `json:"-"`
	AvgScore         float64 `json:"avg_score"`
	TotalTimeSeconds int     `json:"total_time_seconds"`
}

// TopicMetrics is recomputed from scratch on every aggregation call.
type TopicMetrics map[string]*TopicMetric

func AggregateTopics(entries []SubmissionEntry) TopicMetrics {
	out := TopicMetrics{}
	for _, e := range entries {
		m := out[e.Topic]
		if m == nil {
			m = &TopicMetric{Topic: e.Topic}
			out[e.Topic] = m
		}
		m.Attempts++
		m.TotalTimeSeconds += SafeDuration(e.DurationSeconds)
		if e.Score != nil {
			m.ScoredAttempts++
			m.ScoreSum += *e.Score
		}
	}
	for _, m := range out {
		if m.ScoredAttempts > 0 {
			m.AvgScore = m.ScoreSum / float64(m.ScoredAttempts)
		}
	}
	return out
}

// Get returns the metric for topic, or a zero metric.
func (m TopicMetrics) Get(topic string) TopicMetric {
	if v, ok := m[topic]; ok && v != nil {
		return *v
	}
	return TopicMetric{Topic: topic}
}

// Sorted returns metrics ordered by topic name.
func (m TopicMetrics) Sorted() []TopicMetric {
	out := make([]TopicMetric, 0, len(m))
	for _, v := range m {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Topic < out[j].Topic })
	return out
}

type TopicScore struct {
	Topic    string  `json:"topic"`
	AvgScore float64 `json:"avg_score"`
	Attempts int     `json:"attempts"`
}

// WeakTopics lists topics with at least two attempts averaging below 0.6, weakest first.
func (m TopicMetrics) WeakTopics() []TopicScore {
	out := []TopicScore{}
	for _, v := range m {
		if v.Attempts >= minTopicAttempts && v.AvgScore < weakTopicThreshold {
			out = append(out, TopicScore{Topic: v.Topic, AvgScore: scalar.RoundEven(v.AvgScore, 4), Attempts: v.Attempts})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgScore != out[j].AvgScore {
			return out[i].AvgScore < out[j].AvgScore
		}
		if out[i].Attempts != out[j].Attempts {
			return out[i].Attempts > out[j].Attempts
		}
		return out[i].Topic < out[j].Topic
	})
	return out
}

// StrongTopics lists topics with at least two attempts averaging 0.8 or more, strongest first.
func (m TopicMetrics) StrongTopics() []TopicScore {
	out := []TopicScore{}
	for _, v := range m {
		if v.Attempts >= minTopicAttempts && v.AvgScore >= strongTopicThreshold {
			out = append(out, TopicScore{Topic: v.Topic, AvgScore: scalar.RoundEven(v.AvgScore, 4), Attempts: v.Attempts})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgScore != out[j].AvgScore {
			return out[i].AvgScore > out[j].AvgScore
		}
		if out[i].Attempts != out[j].Attempts {
			return out[i].Attempts > out[j].Attempts
		}
		return out[i].Topic < out[j].Topic
	})
	return out
}

// Totals is the overall roll-up across every topic.
type Totals struct {
	Attempts         int
	ScoredAttempts   int
	ScoreSum         float64
	AverageScore     float64
	TotalTimeSeconds int
}

func Summarize(entries []SubmissionEntry) Totals {
	t := Totals{}
	for _, e := range entries {
		t.Attempts++
		t.TotalTimeSeconds += SafeDuration(e.DurationSeconds)
		if e.Score != nil {
			t.ScoredAttempts++
			t.ScoreSum += *e.Score
		}
	}
	if t.ScoredAttempts > 0 {
		t.AverageScore = t.ScoreSum / float64(t.ScoredAttempts)
	}
	return t
}

// AveragePercent is the mean score of scored entries on a 0..100 scale, or nil when none scored.
func AveragePercent(entries []SubmissionEntry) *float64 {
	t := Summarize(entries)
	if t.ScoredAttempts == 0 {
		return nil
	}
	v := t.AverageScore * 100
	return &v
}
