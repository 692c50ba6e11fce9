package learning

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/edupulse-backend/internal/data/repos/testutil"
	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
)

func TestLessonAndEnrollmentRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	teacher := testutil.SeedUser(t, ctx, tx, "teacher", types.RoleTeacher)
	student := testutil.SeedUser(t, ctx, tx, "student", types.RoleStudent)
	other := testutil.SeedUser(t, ctx, tx, "other", types.RoleStudent)

	lessons := NewLessonRepo(db, testutil.Logger(t))
	enrollments := NewEnrollmentRepo(db, testutil.Logger(t))

	created, err := lessons.Create(dbc, []*types.Lesson{
		{OwnerID: teacher.ID, Title: "Fractions", Topic: "Math"},
		{OwnerID: teacher.ID, Title: "Verbs", Topic: ""},
	})
	if err != nil || len(created) != 2 {
		t.Fatalf("Create lessons: rows=%d err=%v", len(created), err)
	}
	if rows, err := lessons.GetByOwnerID(dbc, teacher.ID); err != nil || len(rows) != 2 {
		t.Fatalf("GetByOwnerID: rows=%d err=%v", len(rows), err)
	}

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	n, err := enrollments.CreateIgnoreDuplicates(dbc, []*types.Enrollment{
		{StudentID: student.ID, LessonID: created[1].ID, JoinedAt: base.Add(time.Hour)},
		{StudentID: student.ID, LessonID: created[0].ID, JoinedAt: base},
		{StudentID: other.ID, LessonID: created[0].ID, JoinedAt: base},
	})
	if err != nil || n != 3 {
		t.Fatalf("CreateIgnoreDuplicates: n=%d err=%v", n, err)
	}
	n, err = enrollments.CreateIgnoreDuplicates(dbc, []*types.Enrollment{
		{StudentID: student.ID, LessonID: created[0].ID, JoinedAt: base},
	})
	if err != nil || n != 0 {
		t.Fatalf("CreateIgnoreDuplicates(dup): n=%d err=%v", n, err)
	}

	mine, err := enrollments.GetByStudentID(dbc, student.ID)
	if err != nil {
		t.Fatalf("GetByStudentID: %v", err)
	}
	if len(mine) != 2 || mine[0].LessonID != created[0].ID || mine[0].Lesson == nil || mine[0].Lesson.Title != "Fractions" {
		t.Fatalf("GetByStudentID: unexpected order or preload: %+v", mine)
	}

	all, err := enrollments.GetByLessonIDs(dbc, []uuid.UUID{created[0].ID}, nil)
	if err != nil || len(all) != 2 {
		t.Fatalf("GetByLessonIDs: rows=%d err=%v", len(all), err)
	}
	only, err := enrollments.GetByLessonIDs(dbc, []uuid.UUID{created[0].ID}, &other.ID)
	if err != nil || len(only) != 1 || only[0].Student == nil || only[0].Student.Username != "other" {
		t.Fatalf("GetByLessonIDs(filtered): rows=%+v err=%v", only, err)
	}

	if err := enrollments.FullDeleteByStudentAndLesson(dbc, other.ID, created[0].ID); err != nil {
		t.Fatalf("FullDeleteByStudentAndLesson: %v", err)
	}
	if rows, err := enrollments.GetByStudentID(dbc, other.ID); err != nil || len(rows) != 0 {
		t.Fatalf("after delete: rows=%d err=%v", len(rows), err)
	}
}

func TestSubmissionRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	teacher := testutil.SeedUser(t, ctx, tx, "teacher", types.RoleTeacher)
	student := testutil.SeedUser(t, ctx, tx, "student", types.RoleStudent)
	lesson := testutil.SeedLesson(t, ctx, tx, teacher.ID, "Fractions", "Math")
	tmpl := testutil.SeedTemplate(t, ctx, tx, teacher.ID, "Quiz")
	asg := testutil.SeedAssignment(t, ctx, tx, lesson.ID, testutil.PtrUUID(tmpl.ID))

	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	testutil.SeedSubmission(t, ctx, tx, asg.ID, student.ID, testutil.PtrFloat(0.9), 60, t0.Add(time.Hour))
	testutil.SeedSubmission(t, ctx, tx, asg.ID, student.ID, nil, 30, t0)
	testutil.SeedInteractiveSubmission(t, ctx, tx, student.ID, &tmpl.ID, nil, testutil.PtrFloat(0.5), t0)
	testutil.SeedInteractiveSubmission(t, ctx, tx, student.ID, nil, &lesson.ID, testutil.PtrFloat(0.7), t0.Add(time.Minute))

	subs := NewAssignmentSubmissionRepo(db, testutil.Logger(t))
	rows, err := subs.GetByStudentID(dbc, student.ID)
	if err != nil {
		t.Fatalf("GetByStudentID: %v", err)
	}
	if len(rows) != 2 || rows[0].Score != nil || rows[1].Assignment == nil || rows[1].Assignment.Lesson == nil {
		t.Fatalf("GetByStudentID: unexpected result: %+v", rows)
	}
	if rows[1].Assignment.Lesson.Topic != "Math" {
		t.Fatalf("GetByStudentID: lesson not preloaded: %+v", rows[1].Assignment)
	}

	inter := NewInteractiveSubmissionRepo(db, testutil.Logger(t))
	irows, err := inter.GetByUserID(dbc, student.ID)
	if err != nil || len(irows) != 2 {
		t.Fatalf("GetByUserID: rows=%d err=%v", len(irows), err)
	}
	if irows[0].Template == nil || irows[0].Template.Title != "Quiz" {
		t.Fatalf("GetByUserID: template not preloaded: %+v", irows[0])
	}
	if irows[1].SlideLesson == nil || irows[1].SlideLesson.ID != lesson.ID {
		t.Fatalf("GetByUserID: slide lesson not preloaded: %+v", irows[1])
	}

	assignments := NewAssignmentRepo(db, testutil.Logger(t))
	linked, err := assignments.GetByContentIDsForStudent(dbc, student.ID, []uuid.UUID{tmpl.ID})
	if err != nil || len(linked) != 0 {
		t.Fatalf("GetByContentIDsForStudent before enrollment: rows=%+v err=%v", linked, err)
	}
	other := testutil.SeedLesson(t, ctx, tx, teacher.ID, "Poems", "Literature")
	testutil.SeedAssignment(t, ctx, tx, other.ID, testutil.PtrUUID(tmpl.ID))
	testutil.SeedEnrollment(t, ctx, tx, student.ID, lesson.ID, t0)
	linked, err = assignments.GetByContentIDsForStudent(dbc, student.ID, []uuid.UUID{tmpl.ID})
	if err != nil || len(linked) != 1 || linked[0].ID != asg.ID || linked[0].Lesson == nil {
		t.Fatalf("GetByContentIDsForStudent: rows=%+v err=%v", linked, err)
	}

	rewards := NewRewardRepo(db, testutil.Logger(t))
	testutil.SeedReward(t, ctx, tx, student.ID)
	testutil.SeedReward(t, ctx, tx, student.ID)
	if n, err := rewards.CountByStudentID(dbc, student.ID); err != nil || n != 2 {
		t.Fatalf("CountByStudentID: n=%d err=%v", n, err)
	}
}

func TestPersonalizationRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	rules := NewAdaptiveRuleRepo(db, testutil.Logger(t))
	if err := rules.UpsertByName(dbc, []*types.AdaptiveRule{
		{Name: "high", MinSuccessRate: 0.8, MaxSuccessRate: 1.01, MinAttempts: 2, Action: types.ActionIncreaseDifficulty, IsActive: true},
		{Name: "low", MinSuccessRate: 0, MaxSuccessRate: 0.55, MinAttempts: 1, Action: types.ActionDecreaseDifficulty, IsActive: true},
		{Name: "off", MinSuccessRate: 0.55, MaxSuccessRate: 0.8, MinAttempts: 2, Action: types.ActionReinforceTopic, IsActive: false},
	}); err != nil {
		t.Fatalf("UpsertByName: %v", err)
	}
	if err := rules.UpsertByName(dbc, []*types.AdaptiveRule{
		{Name: "low", MinSuccessRate: 0, MaxSuccessRate: 0.5, MinAttempts: 3, Action: types.ActionDecreaseDifficulty, IsActive: true},
	}); err != nil {
		t.Fatalf("UpsertByName(update): %v", err)
	}
	active, err := rules.GetActive(dbc)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if len(active) != 2 || active[0].Name != "low" || active[0].MinAttempts != 3 || active[1].Name != "high" {
		t.Fatalf("GetActive: unexpected result: %+v", active)
	}

	teacher := testutil.SeedUser(t, ctx, tx, "teacher", types.RoleTeacher)
	student := testutil.SeedUser(t, ctx, tx, "student", types.RoleStudent)
	l1 := testutil.SeedLesson(t, ctx, tx, teacher.ID, "One", "A")
	l2 := testutil.SeedLesson(t, ctx, tx, teacher.ID, "Two", "B")

	nodes := NewTrajectoryNodeRepo(db, testutil.Logger(t))
	second := &types.TrajectoryNode{StudentID: student.ID, LessonID: l2.ID, Topic: "B", OrderIndex: 2, Status: types.NodeLocked}
	first := &types.TrajectoryNode{StudentID: student.ID, LessonID: l1.ID, Topic: "A", OrderIndex: 1, Status: types.NodeUnlocked}
	if err := nodes.Save(dbc, []*types.TrajectoryNode{second, first}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first.ID == uuid.Nil || first.RequiredScore != types.DefaultRequiredScore {
		t.Fatalf("Save: create hook not applied: %+v", first)
	}
	first.Mastery = 0.75
	first.Status = types.NodeCompleted
	if err := nodes.Save(dbc, []*types.TrajectoryNode{first}); err != nil {
		t.Fatalf("Save(update): %v", err)
	}
	got, err := nodes.GetByStudentID(dbc, student.ID)
	if err != nil || len(got) != 2 {
		t.Fatalf("GetByStudentID: rows=%d err=%v", len(got), err)
	}
	if got[0].ID != first.ID || got[0].Status != types.NodeCompleted || got[0].Lesson == nil {
		t.Fatalf("GetByStudentID: unexpected first node: %+v", got[0])
	}
	if err := nodes.FullDeleteByIDs(dbc, []uuid.UUID{second.ID}); err != nil {
		t.Fatalf("FullDeleteByIDs: %v", err)
	}
	if got, err := nodes.GetByStudentID(dbc, student.ID); err != nil || len(got) != 1 {
		t.Fatalf("after delete: rows=%d err=%v", len(got), err)
	}

	profiles := NewStudentProfileRepo(db, testutil.Logger(t))
	if p, err := profiles.GetByStudentID(dbc, student.ID); err != nil || p != nil {
		t.Fatalf("GetByStudentID(missing): p=%+v err=%v", p, err)
	}
	p := &types.StudentProfile{StudentID: student.ID, LearningLevel: types.LevelBeginner, TotalPoints: 10}
	if err := profiles.Save(dbc, p); err != nil {
		t.Fatalf("Save profile: %v", err)
	}
	p.TotalPoints = 40
	p.LearningLevel = types.LevelAdvanced
	if err := profiles.Save(dbc, p); err != nil {
		t.Fatalf("Save profile(update): %v", err)
	}
	stored, err := profiles.GetByStudentID(dbc, student.ID)
	if err != nil || stored == nil || stored.TotalPoints != 40 || stored.LearningLevel != types.LevelAdvanced {
		t.Fatalf("GetByStudentID: got=%+v err=%v", stored, err)
	}
}
