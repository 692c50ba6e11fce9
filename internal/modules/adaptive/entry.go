package adaptive

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/mathx"
)

type Source string

const (
	SourceAssignment  Source = "assignment_submission"
	SourceInteractive Source = "interactive_submission"

	GeneralTopic = "General"
)

// SubmissionEntry is one normalized attempt, regardless of which table it came from.
// A nil Score means the attempt counts but is excluded from averages.
type SubmissionEntry struct {
	StudentID       uuid.UUID  `json:"student_id"`
	StudentUsername string     `json:"student_username"`
	LessonID        *uuid.UUID `json:"lesson_id,omitempty"`
	Topic           string     `json:"topic"`
	Score           *float64   `json:"score"`
	DurationSeconds int        `json:"duration_seconds"`
	CreatedAt       time.Time  `json:"created_at"`
	Source          Source     `json:"source"`
}

// TopicFor resolves a lesson's topic, falling back to its title and then to "General".
func TopicFor(topic, title string) string {
	if t := strings.TrimSpace(topic); t != "" {
		return t
	}
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return GeneralTopic
}

func LessonTopic(l *types.Lesson) string {
	if l == nil {
		return GeneralTopic
	}
	return TopicFor(l.Topic, l.Title)
}

// SafeScore drops non-finite scores and clamps the rest into [0,1].
func SafeScore(v *float64) *float64 {
	if v == nil || !mathx.Finite(*v) {
		return nil
	}
	s := mathx.Clamp(*v, 0, 1)
	return &s
}

func SafeDuration(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// DurationFromData reads "duration_seconds" out of a free-form submission payload.
func DurationFromData(data datatypes.JSON) int {
	if len(data) == 0 || string(data) == "null" {
		return 0
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0
	}
	switch v := payload["duration_seconds"].(type) {
	case float64:
		if !mathx.Finite(v) {
			return 0
		}
		return SafeDuration(int(v))
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return SafeDuration(i)
	default:
		return 0
	}
}

// TemplateIndex maps an interactive template to the first assignment that embeds it.
type TemplateIndex map[uuid.UUID]*types.Assignment

func NewTemplateIndex(assignments []*types.Assignment) TemplateIndex {
	idx := TemplateIndex{}
	for _, a := range assignments {
		if a == nil || a.ContentID == nil || *a.ContentID == uuid.Nil {
			continue
		}
		if _, ok := idx[*a.ContentID]; !ok {
			idx[*a.ContentID] = a
		}
	}
	return idx
}

// FromAssignmentSubmission normalizes a structured submission. The assignment and its
// lesson must be preloaded.
func FromAssignmentSubmission(s *types.AssignmentSubmission, username string) SubmissionEntry {
	e := SubmissionEntry{
		StudentID:       s.StudentID,
		StudentUsername: username,
		Topic:           GeneralTopic,
		Score:           SafeScore(s.Score),
		DurationSeconds: SafeDuration(s.DurationSeconds),
		CreatedAt:       s.SubmittedAt,
		Source:          SourceAssignment,
	}
	if s.Assignment != nil {
		lessonID := s.Assignment.LessonID
		e.LessonID = &lessonID
		e.Topic = LessonTopic(s.Assignment.Lesson)
	}
	return e
}

// FromInteractiveSubmission normalizes a template/slide submission. Topic resolution
// prefers the lesson of an assignment embedding the template, then the slide's lesson,
// then the template title.
func FromInteractiveSubmission(s *types.InteractiveSubmission, idx TemplateIndex, username string) SubmissionEntry {
	e := SubmissionEntry{
		StudentID:       s.UserID,
		StudentUsername: username,
		Topic:           GeneralTopic,
		Score:           SafeScore(s.Score),
		CreatedAt:       s.CreatedAt,
		Source:          SourceInteractive,
	}
	if s.DurationSeconds != nil && *s.DurationSeconds != 0 {
		e.DurationSeconds = SafeDuration(*s.DurationSeconds)
	} else {
		e.DurationSeconds = DurationFromData(s.Data)
	}

	if s.TemplateID != nil {
		if a, ok := idx[*s.TemplateID]; ok && a != nil {
			lessonID := a.LessonID
			e.LessonID = &lessonID
			e.Topic = LessonTopic(a.Lesson)
			return e
		}
	}
	if s.SlideLessonID != nil && s.SlideLesson != nil {
		lessonID := *s.SlideLessonID
		e.LessonID = &lessonID
		e.Topic = LessonTopic(s.SlideLesson)
		return e
	}
	if s.Template != nil {
		if t := strings.TrimSpace(s.Template.Title); t != "" {
			e.Topic = t
		}
	}
	return e
}

// SortEntries orders entries chronologically; ties break on source name.
func SortEntries(entries []SubmissionEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].Source < entries[j].Source
	})
}

// Scored keeps entries that carry a score.
func Scored(entries []SubmissionEntry) []SubmissionEntry {
	out := make([]SubmissionEntry, 0, len(entries))
	for _, e := range entries {
		if e.Score != nil {
			out = append(out, e)
		}
	}
	return out
}

// InWindow keeps entries created on or between the calendar days of start and end.
// A nil bound is open.
func InWindow(entries []SubmissionEntry, start, end *time.Time) []SubmissionEntry {
	out := make([]SubmissionEntry, 0, len(entries))
	for _, e := range entries {
		day := truncateDay(e.CreatedAt)
		if start != nil && day.Before(truncateDay(*start)) {
			continue
		}
		if end != nil && day.After(truncateDay(*end)) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
