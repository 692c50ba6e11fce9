package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/edupulse-backend/internal/data/repos"
	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/modules/adaptive"
	"github.com/yungbote/edupulse-backend/internal/observability"
	"github.com/yungbote/edupulse-backend/internal/pkg/ctxutil"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/edupulse-backend/internal/pkg/errors"
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
	"github.com/yungbote/edupulse-backend/internal/realtime"
	"github.com/yungbote/edupulse-backend/internal/realtime/bus"
)

type AnalyticsFilter struct {
	LessonID  *uuid.UUID
	StudentID *uuid.UUID
}

type PersonalizationService interface {
	// RecomputeStudentProfile rebuilds the profile and trajectory from all submissions.
	RecomputeStudentProfile(dbc dbctx.Context, studentID uuid.UUID) (*adaptive.ProfileView, error)
	// GetStudentPersonalization returns the stored profile, recomputing when refresh is set
	// or no profile exists yet.
	GetStudentPersonalization(dbc dbctx.Context, studentID uuid.UUID, refresh bool) (*adaptive.ProfileView, error)
	TeacherAnalytics(dbc dbctx.Context, teacherID uuid.UUID, filter AnalyticsFilter) (*adaptive.TeacherAnalytics, error)
	// SeedRules stores rules by name; existing rules with the same name are overwritten.
	SeedRules(dbc dbctx.Context, rules []adaptive.Rule) error

	OnSubmission(dbc dbctx.Context, studentID uuid.UUID) error
	OnEnrollment(dbc dbctx.Context, studentID uuid.UUID) error
	OnReward(dbc dbctx.Context, studentID uuid.UUID) error
}

type personalizationService struct {
	db             *gorm.DB
	log            *logger.Logger
	bus            bus.Bus
	collector      EntryCollector
	userRepo       repos.UserRepo
	lessonRepo     repos.LessonRepo
	enrollmentRepo repos.EnrollmentRepo
	rewardRepo     repos.RewardRepo
	ruleRepo       repos.AdaptiveRuleRepo
	nodeRepo       repos.TrajectoryNodeRepo
	profileRepo    repos.StudentProfileRepo
	// fileRules back the engine when no rule is active in the database.
	fileRules []adaptive.Rule
}

func NewPersonalizationService(
	db *gorm.DB,
	log *logger.Logger,
	eventBus bus.Bus,
	collector EntryCollector,
	userRepo repos.UserRepo,
	lessonRepo repos.LessonRepo,
	enrollmentRepo repos.EnrollmentRepo,
	rewardRepo repos.RewardRepo,
	ruleRepo repos.AdaptiveRuleRepo,
	nodeRepo repos.TrajectoryNodeRepo,
	profileRepo repos.StudentProfileRepo,
	fileRules []adaptive.Rule,
) PersonalizationService {
	return &personalizationService{
		db:             db,
		log:            log.With("service", "PersonalizationService"),
		bus:            eventBus,
		collector:      collector,
		userRepo:       userRepo,
		lessonRepo:     lessonRepo,
		enrollmentRepo: enrollmentRepo,
		rewardRepo:     rewardRepo,
		ruleRepo:       ruleRepo,
		nodeRepo:       nodeRepo,
		profileRepo:    profileRepo,
		fileRules:      fileRules,
	}
}

type recomputeResult struct {
	profile  *types.StudentProfile
	nodes    []*types.TrajectoryNode
	snapshot adaptive.Snapshot
}

func (ps *personalizationService) RecomputeStudentProfile(dbc dbctx.Context, studentID uuid.UUID) (*adaptive.ProfileView, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	student, err := ps.requireStudent(dbc, studentID)
	if err != nil {
		return nil, err
	}
	res, err := ps.recompute(dbc, student)
	if err != nil {
		return nil, err
	}
	view := adaptive.NewProfileView(res.profile, res.nodes)
	view.AdaptiveAction = res.snapshot.Action
	return &view, nil
}

func (ps *personalizationService) GetStudentPersonalization(dbc dbctx.Context, studentID uuid.UUID, refresh bool) (*adaptive.ProfileView, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	student, err := ps.requireStudent(dbc, studentID)
	if err != nil {
		return nil, err
	}

	profile, err := ps.profileRepo.GetByStudentID(dbc, student.ID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if refresh || profile == nil {
		res, err := ps.recompute(dbc, student)
		if err != nil {
			return nil, err
		}
		view := adaptive.NewProfileView(res.profile, res.nodes)
		view.AdaptiveAction = res.snapshot.Action
		return &view, nil
	}

	nodes, err := ps.nodeRepo.GetByStudentID(dbc, student.ID)
	if err != nil {
		return nil, fmt.Errorf("load trajectory: %w", err)
	}
	view := adaptive.NewProfileView(profile, nodes)
	return &view, nil
}

func (ps *personalizationService) OnSubmission(dbc dbctx.Context, studentID uuid.UUID) error {
	return ps.hook(dbc, studentID, "submission")
}

func (ps *personalizationService) OnEnrollment(dbc dbctx.Context, studentID uuid.UUID) error {
	return ps.hook(dbc, studentID, "enrollment")
}

func (ps *personalizationService) OnReward(dbc dbctx.Context, studentID uuid.UUID) error {
	return ps.hook(dbc, studentID, "reward")
}

// hook recomputes after a student-side change. Teachers and unknown users are skipped.
func (ps *personalizationService) hook(dbc dbctx.Context, studentID uuid.UUID, trigger string) error {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	u, err := ps.userRepo.GetByID(dbc, studentID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if u == nil || !u.IsStudent() {
		ps.log.Debug("recompute hook skipped", "trigger", trigger, "user_id", studentID)
		return nil
	}
	if _, err := ps.recompute(dbc, u); err != nil {
		return err
	}
	return nil
}

func (ps *personalizationService) SeedRules(dbc dbctx.Context, rules []adaptive.Rule) error {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	rows := make([]*types.AdaptiveRule, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, &types.AdaptiveRule{
			Name:                   r.Name,
			MinSuccessRate:         r.MinSuccessRate,
			MaxSuccessRate:         r.MaxSuccessRate,
			MinAttempts:            r.MinAttempts,
			Action:                 r.Action,
			RecommendationTemplate: r.RecommendationTemplate,
			IsActive:               true,
		})
	}
	if err := ps.ruleRepo.UpsertByName(dbc, rows); err != nil {
		return fmt.Errorf("seed adaptive rules: %w", err)
	}
	return nil
}

func (ps *personalizationService) requireStudent(dbc dbctx.Context, studentID uuid.UUID) (*types.User, error) {
	u, err := ps.userRepo.GetByID(dbc, studentID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("student %s: %w", studentID, apperr.ErrNotFound)
	}
	if !u.IsStudent() {
		return nil, fmt.Errorf("personalization is only available for students: %w", apperr.ErrPermissionDenied)
	}
	return u, nil
}

func (ps *personalizationService) rules(dbc dbctx.Context) ([]adaptive.Rule, error) {
	rows, err := ps.ruleRepo.GetActive(dbc)
	if err != nil {
		return nil, fmt.Errorf("load adaptive rules: %w", err)
	}
	if len(rows) > 0 {
		return adaptive.RulesFromModels(rows), nil
	}
	if len(ps.fileRules) > 0 {
		return ps.fileRules, nil
	}
	return adaptive.DefaultRules(), nil
}

func (ps *personalizationService) recompute(dbc dbctx.Context, student *types.User) (res *recomputeResult, err error) {
	ctx, span := observability.StartSpan(dbc.Ctx, "personalization.recompute",
		attribute.String("student_id", student.ID.String()))
	started := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		observability.Current().ObserveProfileRecompute(status, time.Since(started))
		observability.EndSpan(span, err)
	}()
	dbc.Ctx = ctx

	entries, err := ps.collector.ForStudent(dbc, student)
	if err != nil {
		return nil, err
	}

	var (
		rules       []adaptive.Rule
		rewards     int
		enrollments []*types.Enrollment
	)
	if err := parallel(dbc,
		func(dbc dbctx.Context) error {
			r, err := ps.rules(dbc)
			rules = r
			return err
		},
		func(dbc dbctx.Context) error {
			n, err := ps.rewardRepo.CountByStudentID(dbc, student.ID)
			if err != nil {
				return fmt.Errorf("count rewards: %w", err)
			}
			rewards = n
			return nil
		},
		func(dbc dbctx.Context) error {
			rows, err := ps.enrollmentRepo.GetByStudentID(dbc, student.ID)
			if err != nil {
				return fmt.Errorf("load enrollments: %w", err)
			}
			enrollments = rows
			return nil
		},
	); err != nil {
		return nil, err
	}

	now := ctxutil.Now(dbc.Ctx)
	metrics := adaptive.AggregateTopics(entries)
	lessons := adaptive.LessonRefsFromEnrollments(enrollments)

	write := func(dbc dbctx.Context) error {
		existingRows, err := ps.nodeRepo.GetByStudentID(dbc, student.ID)
		if err != nil {
			return fmt.Errorf("load trajectory: %w", err)
		}
		existing := make(map[uuid.UUID]*types.TrajectoryNode, len(existingRows))
		for _, n := range existingRows {
			existing[n.LessonID] = n
		}

		traj := adaptive.SyncTrajectory(student.ID, lessons, existing, metrics, now)
		if err := ps.nodeRepo.Save(dbc, traj.Nodes); err != nil {
			return fmt.Errorf("save trajectory: %w", err)
		}
		if len(traj.Stale) > 0 {
			ids := make([]uuid.UUID, 0, len(traj.Stale))
			for _, n := range traj.Stale {
				ids = append(ids, n.ID)
			}
			if err := ps.nodeRepo.FullDeleteByIDs(dbc, ids); err != nil {
				return fmt.Errorf("delete stale trajectory nodes: %w", err)
			}
		}

		snap := adaptive.BuildSnapshot(entries, rewards, rules, traj)
		profile, err := ps.profileRepo.GetByStudentID(dbc, student.ID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		if profile == nil {
			profile = &types.StudentProfile{StudentID: student.ID}
		}
		if err := snap.Apply(profile); err != nil {
			return fmt.Errorf("encode profile: %w", err)
		}
		if err := ps.profileRepo.Save(dbc, profile); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		res = &recomputeResult{profile: profile, nodes: traj.Nodes, snapshot: snap}
		return nil
	}

	if dbc.Tx != nil {
		err = write(dbc)
	} else {
		err = ps.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
			return write(dbc.WithTx(tx))
		})
	}
	if err != nil {
		ps.log.Warn("profile recompute failed", "student_id", student.ID, "error", err)
		return nil, err
	}

	ps.log.Debug("profile recomputed",
		"student_id", student.ID,
		"entries", len(entries),
		"level", res.profile.LearningLevel,
		"action", res.snapshot.Action,
	)
	ps.publish(dbc, realtime.Message{
		Channel: realtime.UserChannel(student.ID),
		Event:   realtime.EventProfileRecomputed,
		Data: map[string]any{
			"learning_level":  res.profile.LearningLevel,
			"completion_rate": res.profile.CompletionRate,
			"adaptive_action": res.snapshot.Action,
		},
	})
	return res, nil
}

func (ps *personalizationService) publish(dbc dbctx.Context, msg realtime.Message) {
	if ps.bus == nil {
		return
	}
	if err := ps.bus.Publish(ctxutil.Default(dbc.Ctx), msg); err != nil {
		ps.log.Warn("publish failed", "event", msg.Event, "error", err)
	}
}

func (ps *personalizationService) TeacherAnalytics(dbc dbctx.Context, teacherID uuid.UUID, filter AnalyticsFilter) (out *adaptive.TeacherAnalytics, err error) {
	ctx, span := observability.StartSpan(ctxutil.Default(dbc.Ctx), "personalization.teacher_analytics",
		attribute.String("teacher_id", teacherID.String()))
	defer func() { observability.EndSpan(span, err) }()
	dbc.Ctx = ctx

	teacher, err := ps.userRepo.GetByID(dbc, teacherID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if teacher == nil {
		return nil, fmt.Errorf("teacher %s: %w", teacherID, apperr.ErrNotFound)
	}
	if !teacher.IsTeacher() {
		return nil, fmt.Errorf("analytics are only available for teachers: %w", apperr.ErrPermissionDenied)
	}

	owned, err := ps.lessonRepo.GetByOwnerID(dbc, teacher.ID)
	if err != nil {
		return nil, fmt.Errorf("load lessons: %w", err)
	}
	scope := make([]uuid.UUID, 0, len(owned))
	for _, l := range owned {
		if filter.LessonID != nil && l.ID != *filter.LessonID {
			continue
		}
		scope = append(scope, l.ID)
	}

	enrollments, err := ps.enrollmentRepo.GetByLessonIDs(dbc, scope, filter.StudentID)
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}
	students := make([]adaptive.StudentRef, 0, len(enrollments))
	users := map[uuid.UUID]*types.User{}
	for _, en := range enrollments {
		if _, ok := users[en.StudentID]; ok || en.Student == nil {
			continue
		}
		users[en.StudentID] = en.Student
		students = append(students, adaptive.StudentRef{ID: en.StudentID, Username: en.Student.Username})
	}

	entries, err := ps.collector.ForTeacher(dbc, scope, students)
	if err != nil {
		return nil, err
	}

	studentIDs := make([]uuid.UUID, 0, len(students))
	for _, s := range students {
		studentIDs = append(studentIDs, s.ID)
	}
	profiles, err := ps.profilesFor(dbc, studentIDs, users)
	if err != nil {
		return nil, err
	}

	report := adaptive.BuildTeacherAnalytics(entries, students, profiles)
	if filter.StudentID != nil {
		if _, ok := users[*filter.StudentID]; ok {
			nodes, err := ps.nodeRepo.GetByStudentID(dbc, *filter.StudentID)
			if err != nil {
				return nil, fmt.Errorf("load trajectory: %w", err)
			}
			individual := adaptive.IndividualReport{StudentID: *filter.StudentID, Trajectory: make([]adaptive.NodeView, 0, len(nodes))}
			if p := profiles[*filter.StudentID]; p != nil {
				individual.Profile = adaptive.NewProfileView(p, nodes)
			}
			for _, n := range nodes {
				individual.Trajectory = append(individual.Trajectory, adaptive.NewNodeView(n, ""))
			}
			report.Individual = &individual
		}
	}
	return &report, nil
}

// profilesFor loads stored profiles and recomputes the ones that do not exist yet.
func (ps *personalizationService) profilesFor(dbc dbctx.Context, studentIDs []uuid.UUID, users map[uuid.UUID]*types.User) (map[uuid.UUID]*types.StudentProfile, error) {
	rows, err := ps.profileRepo.GetByStudentIDs(dbc, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	out := make(map[uuid.UUID]*types.StudentProfile, len(studentIDs))
	for _, p := range rows {
		out[p.StudentID] = p
	}
	for _, id := range studentIDs {
		if _, ok := out[id]; ok {
			continue
		}
		u := users[id]
		if u == nil || !u.IsStudent() {
			continue
		}
		res, err := ps.recompute(dbc, u)
		if err != nil {
			return nil, err
		}
		out[id] = res.profile
	}
	return out, nil
}
