package experiment

import (
	"context"
	"testing"

	"github.com/yungbote/edupulse-backend/internal/data/repos/testutil"
	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
)

func TestParticipantRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	teacher := testutil.SeedUser(t, ctx, tx, "teacher", types.RoleTeacher)
	s1 := testutil.SeedUser(t, ctx, tx, "s1", types.RoleStudent)
	s2 := testutil.SeedUser(t, ctx, tx, "s2", types.RoleStudent)
	lesson := testutil.SeedLesson(t, ctx, tx, teacher.ID, "Fractions", "Math")
	exp := testutil.SeedExperiment(t, ctx, tx, teacher.ID, &lesson.ID)

	experiments := NewExperimentRepo(db, testutil.Logger(t))
	got, err := experiments.GetByID(dbc, exp.ID)
	if err != nil || got == nil || got.Lesson == nil || got.Lesson.Title != "Fractions" {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}
	if rows, err := experiments.GetByTeacherID(dbc, teacher.ID); err != nil || len(rows) != 1 {
		t.Fatalf("GetByTeacherID: rows=%d err=%v", len(rows), err)
	}

	repo := NewParticipantRepo(db, testutil.Logger(t))
	if err := repo.Upsert(dbc, []*types.ExperimentParticipant{
		{ExperimentID: exp.ID, StudentID: s1.ID, Group: types.GroupControl, PreScore: testutil.PtrFloat(50)},
		{ExperimentID: exp.ID, StudentID: s2.ID, Group: types.GroupControl},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(dbc, []*types.ExperimentParticipant{
		{ExperimentID: exp.ID, StudentID: s1.ID, Group: types.GroupExperimental},
	}); err != nil {
		t.Fatalf("Upsert(move): %v", err)
	}

	rows, err := repo.GetByExperimentID(dbc, exp.ID)
	if err != nil || len(rows) != 2 {
		t.Fatalf("GetByExperimentID: rows=%d err=%v", len(rows), err)
	}
	if rows[0].Group != types.GroupControl || rows[1].Group != types.GroupExperimental {
		t.Fatalf("GetByExperimentID: unexpected groups: %s %s", rows[0].Group, rows[1].Group)
	}
	moved := rows[1]
	if moved.StudentID != s1.ID || moved.PreScore == nil || *moved.PreScore != 50 || moved.Student == nil {
		t.Fatalf("Upsert(move) must keep scores: %+v", moved)
	}

	if err := repo.UpdateFields(dbc, moved.ID, map[string]interface{}{"post_score": 80.0}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	one, err := repo.GetByID(dbc, moved.ID)
	if err != nil || one == nil || one.PostScore == nil || *one.PostScore != 80 {
		t.Fatalf("GetByID: got=%+v err=%v", one, err)
	}

	if err := repo.FullDeleteByExperimentID(dbc, exp.ID); err != nil {
		t.Fatalf("FullDeleteByExperimentID: %v", err)
	}
	if rows, err := repo.GetByExperimentID(dbc, exp.ID); err != nil || len(rows) != 0 {
		t.Fatalf("after delete: rows=%d err=%v", len(rows), err)
	}
}
