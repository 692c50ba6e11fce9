package services

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/edupulse-backend/internal/data/repos/testutil"
	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/modules/experiment"
	apperr "github.com/yungbote/edupulse-backend/internal/pkg/errors"
	"github.com/yungbote/edupulse-backend/internal/pkg/pointers"
)

type experimentFixture struct {
	teacher    *types.User
	lesson     *types.Lesson
	students   []*types.User
	experiment *types.Experiment
}

func seedExperiment(t *testing.T, env *testEnv) experimentFixture {
	t.Helper()
	ctx, db := env.ctx, env.db
	f := experimentFixture{teacher: testutil.SeedUser(t, ctx, db, "teacher", types.RoleTeacher)}
	f.lesson = testutil.SeedLesson(t, ctx, db, f.teacher.ID, "Fractions", "Math")
	a := testutil.SeedAssignment(t, ctx, db, f.lesson.ID, nil)

	preScores := []*float64{pointers.Float64(0.8), pointers.Float64(0.5), pointers.Float64(0.3), nil}
	for i, name := range []string{"s1", "s2", "s3", "s4"} {
		s := testutil.SeedUser(t, ctx, db, name, types.RoleStudent)
		testutil.SeedEnrollment(t, ctx, db, s.ID, f.lesson.ID, testNow.Add(-30*24*time.Hour))
		if preScores[i] != nil {
			testutil.SeedSubmission(t, ctx, db, a.ID, s.ID, preScores[i], 30, testNow.Add(-8*24*time.Hour))
		}
		f.students = append(f.students, s)
	}

	e, err := env.experiments.Create(env.dbc, f.teacher.ID, ExperimentInput{
		Title:      "  Spaced repetition  ",
		FocusTopic: "Math",
		LessonID:   &f.lesson.ID,
		PreStart:   pointers.Time(testNow.Add(-10 * 24 * time.Hour)),
		PreEnd:     pointers.Time(testNow.Add(-6 * 24 * time.Hour)),
		PostStart:  pointers.Time(testNow.Add(-5 * 24 * time.Hour)),
		PostEnd:    pointers.Time(testNow),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.experiment = e
	return f
}

func TestExperimentCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	f := seedExperiment(t, env)

	if f.experiment.Title != "Spaced repetition" || !f.experiment.IsActive {
		t.Fatalf("created experiment: %+v", f.experiment)
	}
	if _, err := env.experiments.Create(env.dbc, f.teacher.ID, ExperimentInput{Title: "   "}); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("blank title: want ErrInvalidArgument got=%v", err)
	}
	_, err := env.experiments.Create(env.dbc, f.teacher.ID, ExperimentInput{
		Title:    "Backwards",
		PreStart: pointers.Time(testNow),
		PreEnd:   pointers.Time(testNow.Add(-time.Hour)),
	})
	if !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("reversed window: want ErrInvalidArgument got=%v", err)
	}
	if _, err := env.experiments.Create(env.dbc, f.students[0].ID, ExperimentInput{Title: "Nope"}); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Fatalf("student create: want ErrPermissionDenied got=%v", err)
	}

	list, err := env.experiments.List(env.dbc, f.teacher.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("List: rows=%d err=%v", len(list), err)
	}
}

func TestExperimentAutoSplit(t *testing.T) {
	env := newTestEnv(t)
	f := seedExperiment(t, env)

	res, err := env.experiments.AutoSplit(env.dbc, f.teacher.ID, f.experiment.ID, nil, false)
	if err != nil {
		t.Fatalf("AutoSplit: %v", err)
	}
	if res.Strategy != experiment.SplitStrategy {
		t.Fatalf("strategy: %s", res.Strategy)
	}
	if res.Control != 2 || res.Experimental != 2 || len(res.Assignments) != 4 {
		t.Fatalf("split: control=%d experimental=%d assignments=%d", res.Control, res.Experimental, len(res.Assignments))
	}
	for _, name := range []string{experiment.StratumHigh, experiment.StratumMid, experiment.StratumLow, experiment.StratumUnknown} {
		if c := res.Strata[name]; c == nil || c.Total != 1 {
			t.Fatalf("stratum %s: %+v", name, c)
		}
	}
	groups := map[uuid.UUID]string{}
	for _, a := range res.Assignments {
		groups[a.StudentID] = a.Group
	}
	if groups[f.students[0].ID] != types.GroupControl || groups[f.students[1].ID] != types.GroupExperimental {
		t.Fatalf("assignments: %+v", res.Assignments)
	}

	again, err := env.experiments.AutoSplit(env.dbc, f.teacher.ID, f.experiment.ID, nil, false)
	if err != nil {
		t.Fatalf("AutoSplit(again): %v", err)
	}
	if len(again.Assignments) != 0 || again.Control != 2 || again.Experimental != 2 {
		t.Fatalf("second split should keep existing assignments: %+v", again)
	}

	reset, err := env.experiments.AutoSplit(env.dbc, f.teacher.ID, f.experiment.ID, nil, true)
	if err != nil {
		t.Fatalf("AutoSplit(reset): %v", err)
	}
	if len(reset.Assignments) != 4 || reset.Control+reset.Experimental != 4 {
		t.Fatalf("reset split: %+v", reset)
	}
	report, err := env.experiments.Report(env.dbc, f.teacher.ID, f.experiment.ID)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(report.Participants) != 4 {
		t.Fatalf("participants after reset: want=4 got=%d", len(report.Participants))
	}
}

func TestExperimentAssignAndReport(t *testing.T) {
	env := newTestEnv(t)
	f := seedExperiment(t, env)

	if _, err := env.experiments.Assign(env.dbc, f.teacher.ID, f.experiment.ID, "treatment", []uuid.UUID{f.students[0].ID}); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("bad group: want ErrInvalidArgument got=%v", err)
	}
	control, err := env.experiments.Assign(env.dbc, f.teacher.ID, f.experiment.ID, types.GroupControl,
		[]uuid.UUID{f.students[0].ID, f.students[1].ID, f.teacher.ID})
	if err != nil {
		t.Fatalf("Assign(control): %v", err)
	}
	if len(control) != 2 {
		t.Fatalf("Assign(control): want=2 got=%d", len(control))
	}
	experimental, err := env.experiments.Assign(env.dbc, f.teacher.ID, f.experiment.ID, types.GroupExperimental,
		[]uuid.UUID{f.students[2].ID, f.students[3].ID})
	if err != nil || len(experimental) != 2 {
		t.Fatalf("Assign(experimental): rows=%d err=%v", len(experimental), err)
	}

	moved, err := env.experiments.Assign(env.dbc, f.teacher.ID, f.experiment.ID, types.GroupExperimental, []uuid.UUID{f.students[0].ID})
	if err != nil || len(moved) != 1 || moved[0].Group != types.GroupExperimental || moved[0].ID != control[0].ID && moved[0].ID != control[1].ID {
		t.Fatalf("Assign(move): rows=%+v err=%v", moved, err)
	}

	if _, err := env.experiments.UpdateParticipant(env.dbc, f.teacher.ID, moved[0].ID, ParticipantUpdate{PreScore: pointers.Float64(150)}); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("score out of range: want ErrInvalidArgument got=%v", err)
	}
	if _, err := env.experiments.UpdateParticipant(env.dbc, f.teacher.ID, moved[0].ID, ParticipantUpdate{PostMotivation: pointers.Float64(11)}); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("motivation out of range: want ErrInvalidArgument got=%v", err)
	}
	updated, err := env.experiments.UpdateParticipant(env.dbc, f.teacher.ID, moved[0].ID, ParticipantUpdate{
		PreScore:  pointers.Float64(40),
		PostScore: pointers.Float64(90),
		Notes:     pointers.String("worked hard"),
	})
	if err != nil {
		t.Fatalf("UpdateParticipant: %v", err)
	}
	if updated.PreScore == nil || *updated.PreScore != 40 || updated.Notes != "worked hard" {
		t.Fatalf("updated participant: %+v", updated)
	}

	report, err := env.experiments.Report(env.dbc, f.teacher.ID, f.experiment.ID)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(report.Participants) != 4 {
		t.Fatalf("participants: want=4 got=%d", len(report.Participants))
	}
	for _, row := range report.Participants {
		switch row.StudentID {
		case f.students[0].ID:
			if row.PreSource != experiment.SourceManual || row.Delta == nil || *row.Delta != 50 {
				t.Fatalf("manual row: %+v", row)
			}
		case f.students[1].ID:
			if row.PreSource != experiment.SourceAuto || row.PreScore == nil || *row.PreScore != 50 {
				t.Fatalf("auto row: %+v", row)
			}
		case f.students[3].ID:
			if row.PreScore != nil {
				t.Fatalf("student without submissions should have no pre score: %+v", row)
			}
		}
	}
	if report.Summary.StatMethod == "" {
		t.Fatalf("summary has no stat method")
	}

	var buf bytes.Buffer
	if err := env.experiments.ExportCSV(env.dbc, f.teacher.ID, f.experiment.ID, &buf); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Student,Username,Group") || !strings.Contains(out, "Stat method") {
		t.Fatalf("csv output:\n%s", out)
	}
}

func TestExperimentOwnership(t *testing.T) {
	env := newTestEnv(t)
	f := seedExperiment(t, env)
	other := testutil.SeedUser(t, env.ctx, env.db, "other", types.RoleTeacher)

	if _, err := env.experiments.Report(env.dbc, other.ID, f.experiment.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("foreign report: want ErrNotFound got=%v", err)
	}
	if _, err := env.experiments.AutoSplit(env.dbc, other.ID, f.experiment.ID, nil, false); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("foreign split: want ErrNotFound got=%v", err)
	}
	if _, err := env.experiments.UpdateParticipant(env.dbc, f.teacher.ID, uuid.New(), ParticipantUpdate{}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown participant: want ErrNotFound got=%v", err)
	}
}
