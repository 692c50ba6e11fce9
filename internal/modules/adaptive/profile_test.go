package adaptive

import (
	"testing"
	"time"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/pointers"
)

func TestBuildSnapshot(t *testing.T) {
	t0 := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	entries := []SubmissionEntry{
		{Topic: "Algebra", Score: pointers.Float64(0.3), DurationSeconds: 60, CreatedAt: t0},
		{Topic: "Algebra", Score: pointers.Float64(0.4), DurationSeconds: 30, CreatedAt: t0.Add(time.Hour)},
		{Topic: "Poetry", Score: nil, DurationSeconds: 15, CreatedAt: t0.Add(2 * time.Hour)},
	}
	snap := BuildSnapshot(entries, 2, nil, TrajectoryResult{CompletionRate: 50})

	if snap.LearningLevel != types.LevelBeginner {
		t.Fatalf("level: got %q", snap.LearningLevel)
	}
	if snap.TotalTimeSeconds != 105 {
		t.Fatalf("time: got %d", snap.TotalTimeSeconds)
	}
	if snap.TotalPoints != 2*25+70 {
		t.Fatalf("points: got %d", snap.TotalPoints)
	}
	if snap.Action != types.ActionDecreaseDifficulty {
		t.Fatalf("action: got %q", snap.Action)
	}
	if len(snap.WeakTopics) != 1 || snap.WeakTopics[0].Topic != "Algebra" {
		t.Fatalf("weak: got %+v", snap.WeakTopics)
	}
	if len(snap.ProgressHistory) != 2 || snap.ProgressHistory[1].Score != 40 || snap.ProgressHistory[0].Date != "2025-05-01" {
		t.Fatalf("history: got %+v", snap.ProgressHistory)
	}
	if snap.CompletionRate != 50 {
		t.Fatalf("completion: got %v", snap.CompletionRate)
	}

	var p types.StudentProfile
	if err := snap.Apply(&p); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	view := NewProfileView(&p, nil)
	if view.AverageScore != 35 || len(view.WeakTopics) != 1 || len(view.StrongTopics) != 0 {
		t.Fatalf("view: got %+v", view)
	}
}

func TestProgressHistoryKeepsLastThirty(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var scored []SubmissionEntry
	for i := 0; i < 35; i++ {
		scored = append(scored, SubmissionEntry{Topic: "A", Score: pointers.Float64(float64(i) / 100), CreatedAt: t0.Add(time.Duration(i) * time.Hour)})
	}
	h := ProgressHistory(scored)
	if len(h) != 30 {
		t.Fatalf("expected 30 points, got %d", len(h))
	}
	if h[0].Score != 5 {
		t.Fatalf("expected the oldest five to be dropped, first=%v", h[0].Score)
	}
}

func TestNewProfileViewToleratesBadJSON(t *testing.T) {
	p := &types.StudentProfile{WeakTopics: []byte("{"), StrongTopics: nil}
	v := NewProfileView(p, nil)
	if v.WeakTopics == nil || len(v.WeakTopics) != 0 || v.StrongTopics == nil {
		t.Fatalf("expected empty lists, got %+v", v)
	}
}
