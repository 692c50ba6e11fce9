package adaptive

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/pointers"
)

func TestBuildTeacherAnalytics(t *testing.T) {
	amy := StudentRef{ID: uuid.New(), Username: "amy"}
	bob := StudentRef{ID: uuid.New(), Username: "bob"}
	outsider := uuid.New()
	d1 := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	d2 := d1.Add(24 * time.Hour)

	entries := []SubmissionEntry{
		{StudentID: amy.ID, Topic: "Algebra", Score: pointers.Float64(0.9), DurationSeconds: 10, CreatedAt: d1},
		{StudentID: amy.ID, Topic: "Poetry", Score: pointers.Float64(0.5), DurationSeconds: 20, CreatedAt: d2},
		{StudentID: bob.ID, Topic: "Algebra", Score: pointers.Float64(0.3), CreatedAt: d2},
		{StudentID: bob.ID, Topic: "Algebra", Score: nil, CreatedAt: d2},
		{StudentID: outsider, Topic: "Algebra", Score: pointers.Float64(1), CreatedAt: d1},
	}
	profiles := map[uuid.UUID]*types.StudentProfile{
		bob.ID: {StudentID: bob.ID, LearningLevel: types.LevelBeginner, CompletionRate: 12.346, WeakTopics: datatypes.JSON(`[{"topic":"Algebra","avg_score":0.3,"attempts":2}]`)},
	}

	got := BuildTeacherAnalytics(entries, []StudentRef{bob, amy}, profiles)

	if got.Summary.StudentsCount != 2 || got.Summary.AttemptsCount != 4 || got.Summary.ScoredAttempts != 3 {
		t.Fatalf("summary: %+v", got.Summary)
	}
	if got.Summary.GroupAverageScore != 56.67 || got.Summary.TotalTimeSeconds != 30 {
		t.Fatalf("summary averages: %+v", got.Summary)
	}
	if len(got.Students) != 2 || got.Students[0].Username != "amy" || got.Students[0].AverageScore != 70 {
		t.Fatalf("students: %+v", got.Students)
	}
	if got.Students[0].LearningLevel != nil {
		t.Fatalf("amy has no profile")
	}
	b := got.Students[1]
	if b.LearningLevel == nil || *b.LearningLevel != types.LevelBeginner || b.CompletionRate != 12.35 || len(b.WeakTopics) != 1 {
		t.Fatalf("bob row: %+v", b)
	}
	if len(got.HardestTopics) != 2 || got.HardestTopics[0].Topic != "Poetry" || got.HardestTopics[1].AverageScore != 60 {
		t.Fatalf("hardest: %+v", got.HardestTopics)
	}
	if len(got.ProgressByDay) != 2 || got.ProgressByDay[0].Date != "2025-02-01" || got.ProgressByDay[1].Attempts != 3 || got.ProgressByDay[1].AverageScore != 40 {
		t.Fatalf("progress: %+v", got.ProgressByDay)
	}
}
