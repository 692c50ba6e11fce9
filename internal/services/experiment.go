package services

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/edupulse-backend/internal/data/repos"
	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/modules/experiment"
	"github.com/yungbote/edupulse-backend/internal/observability"
	"github.com/yungbote/edupulse-backend/internal/pkg/ctxutil"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/edupulse-backend/internal/pkg/errors"
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
)

type ExperimentInput struct {
	Title      string     `validate:"required,max=255"`
	FocusTopic string     `validate:"max=255"`
	Hypothesis string
	Notes      string
	LessonID   *uuid.UUID
	PreStart   *time.Time
	PreEnd     *time.Time
	PostStart  *time.Time
	PostEnd    *time.Time
}

// ParticipantUpdate carries the editable participant fields; nil leaves a field unchanged.
type ParticipantUpdate struct {
	Group          *string  `validate:"omitempty,oneof=control experimental"`
	PreScore       *float64 `validate:"omitempty,gte=0,lte=100"`
	PostScore      *float64 `validate:"omitempty,gte=0,lte=100"`
	PreMotivation  *float64 `validate:"omitempty,gte=0,lte=10"`
	PostMotivation *float64 `validate:"omitempty,gte=0,lte=10"`
	Notes          *string
}

type ExperimentService interface {
	Create(dbc dbctx.Context, teacherID uuid.UUID, in ExperimentInput) (*types.Experiment, error)
	List(dbc dbctx.Context, teacherID uuid.UUID) ([]*types.Experiment, error)
	Report(dbc dbctx.Context, teacherID, experimentID uuid.UUID) (*experiment.Report, error)
	ExportCSV(dbc dbctx.Context, teacherID, experimentID uuid.UUID, w io.Writer) error
	// AutoSplit assigns students to groups stratified by baseline. With no explicit students it
	// uses the experiment lesson's enrollment, or every lesson the teacher owns.
	AutoSplit(dbc dbctx.Context, teacherID, experimentID uuid.UUID, studentIDs []uuid.UUID, resetExisting bool) (*experiment.SplitResult, error)
	Assign(dbc dbctx.Context, teacherID, experimentID uuid.UUID, group string, studentIDs []uuid.UUID) ([]*types.ExperimentParticipant, error)
	UpdateParticipant(dbc dbctx.Context, teacherID, participantID uuid.UUID, in ParticipantUpdate) (*types.ExperimentParticipant, error)
}

type experimentService struct {
	db              *gorm.DB
	log             *logger.Logger
	validate        *validator.Validate
	collector       EntryCollector
	userRepo        repos.UserRepo
	lessonRepo      repos.LessonRepo
	enrollmentRepo  repos.EnrollmentRepo
	experimentRepo  repos.ExperimentRepo
	participantRepo repos.ExperimentParticipantRepo
}

func NewExperimentService(
	db *gorm.DB,
	log *logger.Logger,
	collector EntryCollector,
	userRepo repos.UserRepo,
	lessonRepo repos.LessonRepo,
	enrollmentRepo repos.EnrollmentRepo,
	experimentRepo repos.ExperimentRepo,
	participantRepo repos.ExperimentParticipantRepo,
) ExperimentService {
	return &experimentService{
		db:              db,
		log:             log.With("service", "ExperimentService"),
		validate:        validator.New(),
		collector:       collector,
		userRepo:        userRepo,
		lessonRepo:      lessonRepo,
		enrollmentRepo:  enrollmentRepo,
		experimentRepo:  experimentRepo,
		participantRepo: participantRepo,
	}
}

func (es *experimentService) Create(dbc dbctx.Context, teacherID uuid.UUID, in ExperimentInput) (*types.Experiment, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	if _, err := es.requireTeacher(dbc, teacherID); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := es.validate.Struct(in); err != nil {
		return nil, invalid(err)
	}
	if outOfOrder(in.PreStart, in.PreEnd) || outOfOrder(in.PostStart, in.PostEnd) {
		return nil, fmt.Errorf("window start must not be after its end: %w", apperr.ErrInvalidArgument)
	}
	if in.LessonID != nil {
		lesson, err := es.lessonRepo.GetByID(dbc, *in.LessonID)
		if err != nil {
			return nil, fmt.Errorf("load lesson: %w", err)
		}
		if lesson == nil || lesson.OwnerID != teacherID {
			return nil, fmt.Errorf("lesson %s: %w", *in.LessonID, apperr.ErrNotFound)
		}
	}

	created, err := es.experimentRepo.Create(dbc, []*types.Experiment{{
		TeacherID:  teacherID,
		LessonID:   in.LessonID,
		Title:      in.Title,
		FocusTopic: strings.TrimSpace(in.FocusTopic),
		Hypothesis: in.Hypothesis,
		Notes:      in.Notes,
		PreStart:   in.PreStart,
		PreEnd:     in.PreEnd,
		PostStart:  in.PostStart,
		PostEnd:    in.PostEnd,
		IsActive:   true,
	}})
	if err != nil {
		return nil, fmt.Errorf("create experiment: %w", err)
	}
	es.log.Info("experiment created", "experiment_id", created[0].ID, "teacher_id", teacherID)
	return created[0], nil
}

func (es *experimentService) List(dbc dbctx.Context, teacherID uuid.UUID) ([]*types.Experiment, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	if _, err := es.requireTeacher(dbc, teacherID); err != nil {
		return nil, err
	}
	rows, err := es.experimentRepo.GetByTeacherID(dbc, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list experiments: %w", err)
	}
	return rows, nil
}

func (es *experimentService) Report(dbc dbctx.Context, teacherID, experimentID uuid.UUID) (out *experiment.Report, err error) {
	ctx, span := observability.StartSpan(ctxutil.Default(dbc.Ctx), "experiment.report",
		attribute.String("experiment_id", experimentID.String()))
	defer func() { observability.EndSpan(span, err) }()
	dbc.Ctx = ctx

	e, err := es.ownedExperiment(dbc, teacherID, experimentID)
	if err != nil {
		return nil, err
	}
	participants, err := es.participantRepo.GetByExperimentID(dbc, e.ID)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}

	inputs := make([]experiment.ParticipantInput, len(participants))
	fns := make([]func(dbctx.Context) error, 0, len(participants))
	for i, p := range participants {
		inputs[i] = experiment.ParticipantInput{Participant: p}
		if p.Student != nil {
			inputs[i].Username = p.Student.Username
			inputs[i].FullName = p.Student.FullName
		}
		if p.Student == nil || !needsEntries(p) {
			continue
		}
		i, student := i, p.Student
		fns = append(fns, func(dbc dbctx.Context) error {
			entries, err := es.collector.ForStudent(dbc, student)
			if err != nil {
				return err
			}
			inputs[i].Entries = entries
			return nil
		})
	}
	if err := parallel(dbc, fns...); err != nil {
		return nil, err
	}

	report := experiment.BuildReport(e, inputs)
	observability.Current().IncExperimentReport(report.Summary.Significant)
	es.log.Debug("experiment report built",
		"experiment_id", e.ID,
		"participants", len(report.Participants),
		"stat_method", report.Summary.StatMethod,
	)
	return &report, nil
}

// needsEntries reports whether a score must be derived from submissions.
func needsEntries(p *types.ExperimentParticipant) bool {
	return p.PreScore == nil || p.PostScore == nil
}

func (es *experimentService) ExportCSV(dbc dbctx.Context, teacherID, experimentID uuid.UUID, w io.Writer) error {
	report, err := es.Report(dbc, teacherID, experimentID)
	if err != nil {
		return err
	}
	if err := experiment.WriteCSV(w, *report); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func (es *experimentService) AutoSplit(dbc dbctx.Context, teacherID, experimentID uuid.UUID, studentIDs []uuid.UUID, resetExisting bool) (out *experiment.SplitResult, err error) {
	ctx, span := observability.StartSpan(ctxutil.Default(dbc.Ctx), "experiment.auto_split",
		attribute.String("experiment_id", experimentID.String()),
		attribute.Bool("reset_existing", resetExisting))
	defer func() { observability.EndSpan(span, err) }()
	dbc.Ctx = ctx

	e, err := es.ownedExperiment(dbc, teacherID, experimentID)
	if err != nil {
		return nil, err
	}
	students, err := es.splitCandidates(dbc, teacherID, e, studentIDs)
	if err != nil {
		return nil, err
	}

	existing, err := es.participantRepo.GetByExperimentID(dbc, e.ID)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	control, experimental := 0, 0
	assigned := map[uuid.UUID]bool{}
	if !resetExisting {
		for _, p := range existing {
			assigned[p.StudentID] = true
			switch p.Group {
			case types.GroupControl:
				control++
			case types.GroupExperimental:
				experimental++
			}
		}
	}

	pending := make([]*types.User, 0, len(students))
	for _, s := range students {
		if !assigned[s.ID] {
			pending = append(pending, s)
		}
	}
	candidates := make([]experiment.Candidate, len(pending))
	fns := make([]func(dbctx.Context) error, 0, len(pending))
	window := experiment.PreWindow(e)
	for i, s := range pending {
		candidates[i] = experiment.Candidate{StudentID: s.ID, Username: s.Username}
		if !window.Defined() {
			continue
		}
		i, s := i, s
		fns = append(fns, func(dbc dbctx.Context) error {
			entries, err := es.collector.ForStudent(dbc, s)
			if err != nil {
				return err
			}
			candidates[i].Baseline, _ = experiment.ResolveScore(nil, entries, window, e.LessonID)
			return nil
		})
	}
	if err := parallel(dbc, fns...); err != nil {
		return nil, err
	}

	result := experiment.Split(candidates, control, experimental)
	rows := make([]*types.ExperimentParticipant, 0, len(result.Assignments))
	for _, a := range result.Assignments {
		rows = append(rows, &types.ExperimentParticipant{ExperimentID: e.ID, StudentID: a.StudentID, Group: a.Group})
	}

	write := func(dbc dbctx.Context) error {
		if resetExisting {
			if err := es.participantRepo.FullDeleteByExperimentID(dbc, e.ID); err != nil {
				return fmt.Errorf("reset participants: %w", err)
			}
		}
		if err := es.participantRepo.Upsert(dbc, rows); err != nil {
			return fmt.Errorf("save assignments: %w", err)
		}
		return nil
	}
	if err := es.inTx(dbc, write); err != nil {
		return nil, err
	}

	added := map[string]int{}
	for _, a := range result.Assignments {
		added[a.Group]++
	}
	for group, n := range added {
		observability.Current().AddSplitAssignments(group, n)
	}
	es.log.Info("experiment auto split",
		"experiment_id", e.ID,
		"assigned", len(result.Assignments),
		"control", result.Control,
		"experimental", result.Experimental,
	)
	return &result, nil
}

// splitCandidates resolves the students eligible for a split.
func (es *experimentService) splitCandidates(dbc dbctx.Context, teacherID uuid.UUID, e *types.Experiment, studentIDs []uuid.UUID) ([]*types.User, error) {
	if len(studentIDs) > 0 {
		users, err := es.userRepo.GetByIDs(dbc, studentIDs)
		if err != nil {
			return nil, fmt.Errorf("load students: %w", err)
		}
		out := make([]*types.User, 0, len(users))
		for _, u := range users {
			if u.IsStudent() {
				out = append(out, u)
			}
		}
		return out, nil
	}

	var lessonIDs []uuid.UUID
	if e.LessonID != nil {
		lessonIDs = []uuid.UUID{*e.LessonID}
	} else {
		lessons, err := es.lessonRepo.GetByOwnerID(dbc, teacherID)
		if err != nil {
			return nil, fmt.Errorf("load lessons: %w", err)
		}
		for _, l := range lessons {
			lessonIDs = append(lessonIDs, l.ID)
		}
	}
	enrollments, err := es.enrollmentRepo.GetByLessonIDs(dbc, lessonIDs, nil)
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}
	seen := map[uuid.UUID]bool{}
	out := make([]*types.User, 0, len(enrollments))
	for _, en := range enrollments {
		if en.Student == nil || seen[en.StudentID] || !en.Student.IsStudent() {
			continue
		}
		seen[en.StudentID] = true
		out = append(out, en.Student)
	}
	return out, nil
}

func (es *experimentService) Assign(dbc dbctx.Context, teacherID, experimentID uuid.UUID, group string, studentIDs []uuid.UUID) ([]*types.ExperimentParticipant, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	if err := es.validate.Var(group, "required,oneof=control experimental"); err != nil {
		return nil, invalid(err)
	}
	if len(studentIDs) == 0 {
		return nil, fmt.Errorf("no students given: %w", apperr.ErrInvalidArgument)
	}
	e, err := es.ownedExperiment(dbc, teacherID, experimentID)
	if err != nil {
		return nil, err
	}
	users, err := es.userRepo.GetByIDs(dbc, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("load students: %w", err)
	}
	rows := make([]*types.ExperimentParticipant, 0, len(users))
	for _, u := range users {
		if !u.IsStudent() {
			continue
		}
		rows = append(rows, &types.ExperimentParticipant{ExperimentID: e.ID, StudentID: u.ID, Group: group})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no students among given users: %w", apperr.ErrInvalidArgument)
	}
	if err := es.participantRepo.Upsert(dbc, rows); err != nil {
		return nil, fmt.Errorf("assign participants: %w", err)
	}
	observability.Current().AddSplitAssignments(group, len(rows))

	// Conflicting rows keep their stored IDs, so read back.
	all, err := es.participantRepo.GetByExperimentID(dbc, e.ID)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	want := make(map[uuid.UUID]bool, len(rows))
	for _, r := range rows {
		want[r.StudentID] = true
	}
	out := make([]*types.ExperimentParticipant, 0, len(rows))
	for _, p := range all {
		if want[p.StudentID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (es *experimentService) UpdateParticipant(dbc dbctx.Context, teacherID, participantID uuid.UUID, in ParticipantUpdate) (*types.ExperimentParticipant, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	if err := es.validate.Struct(in); err != nil {
		return nil, invalid(err)
	}
	p, err := es.participantRepo.GetByID(dbc, participantID)
	if err != nil {
		return nil, fmt.Errorf("load participant: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("participant %s: %w", participantID, apperr.ErrNotFound)
	}
	if _, err := es.ownedExperiment(dbc, teacherID, p.ExperimentID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Group != nil {
		updates["group_name"] = *in.Group
	}
	if in.PreScore != nil {
		updates["pre_score"] = *in.PreScore
	}
	if in.PostScore != nil {
		updates["post_score"] = *in.PostScore
	}
	if in.PreMotivation != nil {
		updates["pre_motivation"] = *in.PreMotivation
	}
	if in.PostMotivation != nil {
		updates["post_motivation"] = *in.PostMotivation
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if len(updates) == 0 {
		return p, nil
	}
	if err := es.participantRepo.UpdateFields(dbc, p.ID, updates); err != nil {
		return nil, fmt.Errorf("update participant: %w", err)
	}
	return es.participantRepo.GetByID(dbc, p.ID)
}

func (es *experimentService) requireTeacher(dbc dbctx.Context, teacherID uuid.UUID) (*types.User, error) {
	u, err := es.userRepo.GetByID(dbc, teacherID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("teacher %s: %w", teacherID, apperr.ErrNotFound)
	}
	if !u.IsTeacher() {
		return nil, fmt.Errorf("experiments are only available for teachers: %w", apperr.ErrPermissionDenied)
	}
	return u, nil
}

// ownedExperiment hides experiments of other teachers behind ErrNotFound.
func (es *experimentService) ownedExperiment(dbc dbctx.Context, teacherID, experimentID uuid.UUID) (*types.Experiment, error) {
	if _, err := es.requireTeacher(dbc, teacherID); err != nil {
		return nil, err
	}
	e, err := es.experimentRepo.GetByID(dbc, experimentID)
	if err != nil {
		return nil, fmt.Errorf("load experiment: %w", err)
	}
	if e == nil || e.TeacherID != teacherID {
		return nil, fmt.Errorf("experiment %s: %w", experimentID, apperr.ErrNotFound)
	}
	return e, nil
}

func (es *experimentService) inTx(dbc dbctx.Context, fn func(dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return es.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbc.WithTx(tx))
	})
}

func outOfOrder(start, end *time.Time) bool {
	return start != nil && end != nil && start.After(*end)
}

// invalid maps validator failures onto ErrInvalidArgument.
func invalid(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("invalid %s: %w", strings.Join(fields, ", "), apperr.ErrInvalidArgument)
	}
	return fmt.Errorf("%v: %w", err, apperr.ErrInvalidArgument)
}
