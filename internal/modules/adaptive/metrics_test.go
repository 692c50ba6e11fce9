package adaptive

import (
	"math"
	"testing"

	"github.com/yungbote/edupulse-backend/internal/pkg/pointers"
)

func entry(topic string, score *float64, dur int) SubmissionEntry {
	return SubmissionEntry{Topic: topic, Score: score, DurationSeconds: dur}
}

func TestAggregateTopics(t *testing.T) {
	m := AggregateTopics([]SubmissionEntry{
		entry("Algebra", pointers.Float64(0.4), 10),
		entry("Algebra", pointers.Float64(0.6), 20),
		entry("Algebra", nil, 5),
		entry("Poetry", pointers.Float64(0.9), 0),
	})
	alg := m.Get("Algebra")
	if alg.Attempts != 3 || alg.ScoredAttempts != 2 || alg.TotalTimeSeconds != 35 {
		t.Fatalf("unexpected algebra metric: %+v", alg)
	}
	if math.Abs(alg.AvgScore-0.5) > 1e-9 {
		t.Fatalf("avg: got %v", alg.AvgScore)
	}
	if got := m.Get("Missing"); got.Attempts != 0 || got.AvgScore != 0 {
		t.Fatalf("missing topic should be zero, got %+v", got)
	}
}

func TestWeakAndStrongTopics(t *testing.T) {
	m := AggregateTopics([]SubmissionEntry{
		entry("A", pointers.Float64(0.2), 0),
		entry("A", pointers.Float64(0.4), 0),
		entry("B", pointers.Float64(0.5), 0),
		entry("B", pointers.Float64(0.5), 0),
		entry("B", pointers.Float64(0.5), 0),
		entry("C", pointers.Float64(0.1), 0),
		entry("D", pointers.Float64(0.9), 0),
		entry("D", pointers.Float64(0.8), 0),
		entry("E", pointers.Float64(1.0), 0),
		entry("E", pointers.Float64(1.0), 0),
	})
	weak := m.WeakTopics()
	if len(weak) != 2 || weak[0].Topic != "A" || weak[1].Topic != "B" {
		t.Fatalf("unexpected weak topics: %+v", weak)
	}
	if weak[0].AvgScore != 0.3 {
		t.Fatalf("weak avg should be rounded to 4 places, got %v", weak[0].AvgScore)
	}
	strong := m.StrongTopics()
	if len(strong) != 2 || strong[0].Topic != "E" || strong[1].Topic != "D" {
		t.Fatalf("unexpected strong topics: %+v", strong)
	}
}

func TestSummarizeIgnoresUnscoredForAverage(t *testing.T) {
	tot := Summarize([]SubmissionEntry{
		entry("A", pointers.Float64(1), 3),
		entry("A", nil, -4),
		entry("A", pointers.Float64(0), 7),
	})
	if tot.Attempts != 3 || tot.ScoredAttempts != 2 || tot.TotalTimeSeconds != 10 {
		t.Fatalf("unexpected totals: %+v", tot)
	}
	if tot.AverageScore != 0.5 {
		t.Fatalf("avg: got %v", tot.AverageScore)
	}
	if AveragePercent([]SubmissionEntry{entry("A", nil, 0)}) != nil {
		t.Fatalf("no scored entries should give nil percent")
	}
}
