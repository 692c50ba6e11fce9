package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/edupulse-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username, role string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Username: username,
		FullName: "",
		Role:     role,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, title, topic string) *types.Lesson {
	tb.Helper()
	l := &types.Lesson{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Title:   title,
		Topic:   topic,
	}
	if err := tx.WithContext(ctx).Omit("Owner").Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

func SeedEnrollment(tb testing.TB, ctx context.Context, tx *gorm.DB, studentID, lessonID uuid.UUID, joinedAt time.Time) *types.Enrollment {
	tb.Helper()
	e := &types.Enrollment{
		ID:        uuid.New(),
		StudentID: studentID,
		LessonID:  lessonID,
		JoinedAt:  joinedAt.UTC(),
	}
	if err := tx.WithContext(ctx).Omit("Student", "Lesson").Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return e
}

func SeedAssignment(tb testing.TB, ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, contentID *uuid.UUID) *types.Assignment {
	tb.Helper()
	a := &types.Assignment{
		ID:             uuid.New(),
		LessonID:       lessonID,
		Title:          "assignment",
		AssignmentType: "quiz",
		ContentID:      contentID,
		IsPublished:    true,
	}
	if err := tx.WithContext(ctx).Omit("Lesson").Create(a).Error; err != nil {
		tb.Fatalf("seed assignment: %v", err)
	}
	return a
}

func SeedSubmission(tb testing.TB, ctx context.Context, tx *gorm.DB, assignmentID, studentID uuid.UUID, score *float64, duration int, at time.Time) *types.AssignmentSubmission {
	tb.Helper()
	s := &types.AssignmentSubmission{
		ID:              uuid.New(),
		AssignmentID:    assignmentID,
		StudentID:       studentID,
		Score:           score,
		DurationSeconds: duration,
		SubmittedAt:     at.UTC(),
	}
	if err := tx.WithContext(ctx).Omit("Assignment", "Student").Create(s).Error; err != nil {
		tb.Fatalf("seed submission: %v", err)
	}
	return s
}

func SeedTemplate(tb testing.TB, ctx context.Context, tx *gorm.DB, authorID uuid.UUID, title string) *types.InteractiveTemplate {
	tb.Helper()
	t := &types.InteractiveTemplate{
		ID:           uuid.New(),
		AuthorID:     authorID,
		Title:        title,
		TemplateType: "quiz",
		Data:         datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed template: %v", err)
	}
	return t
}

func SeedInteractiveSubmission(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, templateID, slideLessonID *uuid.UUID, score *float64, at time.Time) *types.InteractiveSubmission {
	tb.Helper()
	s := &types.InteractiveSubmission{
		ID:            uuid.New(),
		UserID:        userID,
		TemplateID:    templateID,
		SlideLessonID: slideLessonID,
		Score:         score,
		Data:          datatypes.JSON([]byte("{}")),
		CreatedAt:     at.UTC(),
	}
	if err := tx.WithContext(ctx).Omit("User", "Template", "SlideLesson").Create(s).Error; err != nil {
		tb.Fatalf("seed interactive submission: %v", err)
	}
	return s
}

func SeedReward(tb testing.TB, ctx context.Context, tx *gorm.DB, studentID uuid.UUID) *types.Reward {
	tb.Helper()
	r := &types.Reward{
		ID:        uuid.New(),
		StudentID: studentID,
		Title:     "badge",
	}
	if err := tx.WithContext(ctx).Omit("Student").Create(r).Error; err != nil {
		tb.Fatalf("seed reward: %v", err)
	}
	return r
}

func SeedExperiment(tb testing.TB, ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, lessonID *uuid.UUID) *types.Experiment {
	tb.Helper()
	e := &types.Experiment{
		ID:        uuid.New(),
		TeacherID: teacherID,
		LessonID:  lessonID,
		Title:     "experiment",
		IsActive:  true,
	}
	if err := tx.WithContext(ctx).Omit("Teacher", "Lesson").Create(e).Error; err != nil {
		tb.Fatalf("seed experiment: %v", err)
	}
	return e
}

func SeedLiveSession(tb testing.TB, ctx context.Context, tx *gorm.DB, teacherID, lessonID uuid.UUID, mode string) *types.LiveSession {
	tb.Helper()
	s := &types.LiveSession{
		ID:         uuid.New(),
		TeacherID:  teacherID,
		LessonID:   lessonID,
		Mode:       mode,
		SourceType: "slides",
	}
	if err := tx.WithContext(ctx).Omit("Teacher", "Lesson").Create(s).Error; err != nil {
		tb.Fatalf("seed live session: %v", err)
	}
	return s
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }

func PtrFloat(v float64) *float64 { return &v }
