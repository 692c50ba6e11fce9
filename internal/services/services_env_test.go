package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/edupulse-backend/internal/data/repos"
	"github.com/yungbote/edupulse-backend/internal/data/repos/testutil"
	"github.com/yungbote/edupulse-backend/internal/pkg/ctxutil"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/edupulse-backend/internal/realtime/bus"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	db  *gorm.DB
	ctx context.Context
	dbc dbctx.Context
	bus *bus.MemoryBus

	personalization PersonalizationService
	experiments     ExperimentService
	live            LiveService
}

// newTestEnv wires every service against a fresh database. Services run without an outer
// transaction so they manage their own.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := ctxutil.WithNow(context.Background(), testNow)
	memBus := bus.NewMemoryBus()
	t.Cleanup(func() { _ = memBus.Close() })

	userRepo := repos.NewUserRepo(db, log)
	lessonRepo := repos.NewLessonRepo(db, log)
	enrollmentRepo := repos.NewEnrollmentRepo(db, log)
	assignmentRepo := repos.NewAssignmentRepo(db, log)
	submissionRepo := repos.NewAssignmentSubmissionRepo(db, log)
	interactiveRepo := repos.NewInteractiveSubmissionRepo(db, log)
	collector := NewEntryCollector(log, assignmentRepo, submissionRepo, interactiveRepo)

	return &testEnv{
		db:  db,
		ctx: ctx,
		dbc: dbctx.Context{Ctx: ctx},
		bus: memBus,
		personalization: NewPersonalizationService(db, log, memBus, collector,
			userRepo, lessonRepo, enrollmentRepo,
			repos.NewRewardRepo(db, log),
			repos.NewAdaptiveRuleRepo(db, log),
			repos.NewTrajectoryNodeRepo(db, log),
			repos.NewStudentProfileRepo(db, log),
			nil,
		),
		experiments: NewExperimentService(db, log, collector,
			userRepo, lessonRepo, enrollmentRepo,
			repos.NewExperimentRepo(db, log),
			repos.NewExperimentParticipantRepo(db, log),
		),
		live: NewLiveService(db, log, memBus,
			userRepo, lessonRepo,
			repos.NewLiveSessionRepo(db, log),
			repos.NewLiveParticipantRepo(db, log),
			repos.NewLiveCheckinRepo(db, log),
		),
	}
}

// at returns a context whose clock is pinned to now.
func (e *testEnv) at(now time.Time) dbctx.Context {
	return dbctx.Context{Ctx: ctxutil.WithNow(e.ctx, now)}
}
