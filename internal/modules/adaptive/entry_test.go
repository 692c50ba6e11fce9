package adaptive

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/pointers"
)

func TestSafeScore(t *testing.T) {
	if SafeScore(nil) != nil {
		t.Fatalf("nil score should stay nil")
	}
	if SafeScore(pointers.Float64(math.NaN())) != nil {
		t.Fatalf("NaN should be dropped")
	}
	if SafeScore(pointers.Float64(math.Inf(1))) != nil {
		t.Fatalf("+Inf should be dropped")
	}
	if got := SafeScore(pointers.Float64(1.7)); got == nil || *got != 1 {
		t.Fatalf("expected clamp to 1, got %v", got)
	}
	if got := SafeScore(pointers.Float64(-0.2)); got == nil || *got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
}

func TestTopicFor(t *testing.T) {
	if got := TopicFor("  Fractions ", "Lesson 1"); got != "Fractions" {
		t.Fatalf("topic: got %q", got)
	}
	if got := TopicFor("", "Lesson 1"); got != "Lesson 1" {
		t.Fatalf("title fallback: got %q", got)
	}
	if got := TopicFor(" ", ""); got != GeneralTopic {
		t.Fatalf("general fallback: got %q", got)
	}
}

func TestDurationFromData(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{`{"duration_seconds": 42}`, 42},
		{`{"duration_seconds": "17"}`, 17},
		{`{"duration_seconds": -5}`, 0},
		{`{"other": 1}`, 0},
		{`not json`, 0},
		{``, 0},
	}
	for _, tc := range cases {
		if got := DurationFromData(datatypes.JSON(tc.raw)); got != tc.want {
			t.Fatalf("DurationFromData(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestFromInteractiveSubmissionTopicResolution(t *testing.T) {
	tplLinked := uuid.New()
	tplLoose := uuid.New()
	lesson := &types.Lesson{ID: uuid.New(), Title: "Algebra I", Topic: "Algebra"}
	slideLesson := &types.Lesson{ID: uuid.New(), Title: "Geometry"}
	idx := NewTemplateIndex([]*types.Assignment{
		{ID: uuid.New(), LessonID: lesson.ID, Lesson: lesson, ContentID: &tplLinked},
	})
	student := uuid.New()

	linked := FromInteractiveSubmission(&types.InteractiveSubmission{
		UserID:     student,
		TemplateID: &tplLinked,
		Score:      pointers.Float64(0.5),
		Data:       datatypes.JSON(`{"duration_seconds": 30}`),
	}, idx, "amy")
	if linked.Topic != "Algebra" || linked.LessonID == nil || *linked.LessonID != lesson.ID {
		t.Fatalf("linked: got topic=%q lesson=%v", linked.Topic, linked.LessonID)
	}
	if linked.DurationSeconds != 30 {
		t.Fatalf("linked: expected duration fallback to data, got %d", linked.DurationSeconds)
	}

	slide := FromInteractiveSubmission(&types.InteractiveSubmission{
		UserID:          student,
		TemplateID:      &tplLoose,
		Template:        &types.InteractiveTemplate{Title: "Quiz"},
		SlideLessonID:   &slideLesson.ID,
		SlideLesson:     slideLesson,
		DurationSeconds: pointers.Int(12),
	}, idx, "amy")
	if slide.Topic != "Geometry" {
		t.Fatalf("slide: got topic=%q", slide.Topic)
	}
	if slide.DurationSeconds != 12 {
		t.Fatalf("slide: got duration=%d", slide.DurationSeconds)
	}

	loose := FromInteractiveSubmission(&types.InteractiveSubmission{
		UserID:     student,
		TemplateID: &tplLoose,
		Template:   &types.InteractiveTemplate{Title: "Quiz"},
	}, idx, "amy")
	if loose.Topic != "Quiz" || loose.Score != nil {
		t.Fatalf("loose: got topic=%q score=%v", loose.Topic, loose.Score)
	}

	bare := FromInteractiveSubmission(&types.InteractiveSubmission{UserID: student}, idx, "amy")
	if bare.Topic != GeneralTopic {
		t.Fatalf("bare: got topic=%q", bare.Topic)
	}
}

func TestSortEntries(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := []SubmissionEntry{
		{Topic: "c", CreatedAt: t0.Add(time.Hour), Source: SourceAssignment},
		{Topic: "b", CreatedAt: t0, Source: SourceInteractive},
		{Topic: "a", CreatedAt: t0, Source: SourceAssignment},
	}
	SortEntries(entries)
	if entries[0].Topic != "a" || entries[1].Topic != "b" || entries[2].Topic != "c" {
		t.Fatalf("unexpected order: %q %q %q", entries[0].Topic, entries[1].Topic, entries[2].Topic)
	}
}

func TestInWindowIsDateInclusive(t *testing.T) {
	start := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	entries := []SubmissionEntry{
		{Topic: "before", CreatedAt: time.Date(2025, 2, 28, 23, 59, 0, 0, time.UTC)},
		{Topic: "first-day", CreatedAt: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)},
		{Topic: "last-day", CreatedAt: time.Date(2025, 3, 2, 23, 0, 0, 0, time.UTC)},
		{Topic: "after", CreatedAt: time.Date(2025, 3, 3, 0, 0, 1, 0, time.UTC)},
	}
	got := InWindow(entries, &start, &end)
	if len(got) != 2 || got[0].Topic != "first-day" || got[1].Topic != "last-day" {
		t.Fatalf("unexpected window: %+v", got)
	}
	if len(InWindow(entries, nil, nil)) != 4 {
		t.Fatalf("open window should keep everything")
	}
}
