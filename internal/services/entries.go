package services

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/edupulse-backend/internal/data/repos"
	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/modules/adaptive"
	"github.com/yungbote/edupulse-backend/internal/pkg/ctxutil"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
)

// EntryCollector loads both submission sources and normalizes them into one sorted stream.
type EntryCollector interface {
	ForStudent(dbc dbctx.Context, student *types.User) ([]adaptive.SubmissionEntry, error)
	// ForTeacher collects entries of the given students on assignments in the given lessons.
	ForTeacher(dbc dbctx.Context, lessonIDs []uuid.UUID, students []adaptive.StudentRef) ([]adaptive.SubmissionEntry, error)
}

type entryCollector struct {
	log             *logger.Logger
	assignmentRepo  repos.AssignmentRepo
	submissionRepo  repos.AssignmentSubmissionRepo
	interactiveRepo repos.InteractiveSubmissionRepo
}

func NewEntryCollector(
	log *logger.Logger,
	assignmentRepo repos.AssignmentRepo,
	submissionRepo repos.AssignmentSubmissionRepo,
	interactiveRepo repos.InteractiveSubmissionRepo,
) EntryCollector {
	return &entryCollector{
		log:             log.With("service", "EntryCollector"),
		assignmentRepo:  assignmentRepo,
		submissionRepo:  submissionRepo,
		interactiveRepo: interactiveRepo,
	}
}

// parallel runs fns concurrently outside a transaction. A shared tx is not safe for
// concurrent queries, so inside one they run in order.
func parallel(dbc dbctx.Context, fns ...func(dbctx.Context) error) error {
	if dbc.Tx != nil {
		for _, fn := range fns {
			if err := fn(dbc); err != nil {
				return err
			}
		}
		return nil
	}
	g, gctx := errgroup.WithContext(ctxutil.Default(dbc.Ctx))
	inner := dbctx.Context{Ctx: gctx}
	for _, fn := range fns {
		fn := fn
		g.Go(func() error { return fn(inner) })
	}
	return g.Wait()
}

func (c *entryCollector) ForStudent(dbc dbctx.Context, student *types.User) ([]adaptive.SubmissionEntry, error) {
	if student == nil || student.ID == uuid.Nil {
		return []adaptive.SubmissionEntry{}, nil
	}
	var (
		subs     []*types.AssignmentSubmission
		inter    []*types.InteractiveSubmission
		template adaptive.TemplateIndex
	)
	err := parallel(dbc,
		func(dbc dbctx.Context) error {
			rows, err := c.submissionRepo.GetByStudentID(dbc, student.ID)
			if err != nil {
				return fmt.Errorf("load assignment submissions: %w", err)
			}
			subs = rows
			return nil
		},
		func(dbc dbctx.Context) error {
			rows, err := c.interactiveRepo.GetByUserID(dbc, student.ID)
			if err != nil {
				return fmt.Errorf("load interactive submissions: %w", err)
			}
			linked, err := c.assignmentRepo.GetByContentIDsForStudent(dbc, student.ID, templateIDs(rows))
			if err != nil {
				return fmt.Errorf("load template assignments: %w", err)
			}
			inter = rows
			template = adaptive.NewTemplateIndex(linked)
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	entries := make([]adaptive.SubmissionEntry, 0, len(subs)+len(inter))
	for _, s := range subs {
		entries = append(entries, adaptive.FromAssignmentSubmission(s, student.Username))
	}
	for _, s := range inter {
		entries = append(entries, adaptive.FromInteractiveSubmission(s, template, student.Username))
	}
	adaptive.SortEntries(entries)
	return entries, nil
}

func (c *entryCollector) ForTeacher(dbc dbctx.Context, lessonIDs []uuid.UUID, students []adaptive.StudentRef) ([]adaptive.SubmissionEntry, error) {
	if len(lessonIDs) == 0 || len(students) == 0 {
		return []adaptive.SubmissionEntry{}, nil
	}
	usernames := make(map[uuid.UUID]string, len(students))
	studentIDs := make([]uuid.UUID, 0, len(students))
	for _, s := range students {
		usernames[s.ID] = s.Username
		studentIDs = append(studentIDs, s.ID)
	}

	assignments, err := c.assignmentRepo.GetByLessonIDs(dbc, lessonIDs)
	if err != nil {
		return nil, fmt.Errorf("load lesson assignments: %w", err)
	}
	assignmentIDs := make([]uuid.UUID, 0, len(assignments))
	for _, a := range assignments {
		assignmentIDs = append(assignmentIDs, a.ID)
	}
	template := adaptive.NewTemplateIndex(assignments)
	linkedTemplates := make([]uuid.UUID, 0, len(template))
	for id := range template {
		linkedTemplates = append(linkedTemplates, id)
	}

	var (
		subs  []*types.AssignmentSubmission
		inter []*types.InteractiveSubmission
	)
	err = parallel(dbc,
		func(dbc dbctx.Context) error {
			rows, err := c.submissionRepo.GetByAssignmentIDs(dbc, assignmentIDs, studentIDs)
			subs = rows
			return err
		},
		func(dbc dbctx.Context) error {
			rows, err := c.interactiveRepo.GetByTemplateIDs(dbc, linkedTemplates, studentIDs)
			inter = rows
			return err
		},
	)
	if err != nil {
		return nil, fmt.Errorf("load teacher submissions: %w", err)
	}

	entries := make([]adaptive.SubmissionEntry, 0, len(subs)+len(inter))
	for _, s := range subs {
		entries = append(entries, adaptive.FromAssignmentSubmission(s, usernames[s.StudentID]))
	}
	for _, s := range inter {
		entries = append(entries, adaptive.FromInteractiveSubmission(s, template, usernames[s.UserID]))
	}
	adaptive.SortEntries(entries)
	return entries, nil
}

func templateIDs(rows []*types.InteractiveSubmission) []uuid.UUID {
	seen := map[uuid.UUID]bool{}
	out := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		if r == nil || r.TemplateID == nil || seen[*r.TemplateID] {
			continue
		}
		seen[*r.TemplateID] = true
		out = append(out, *r.TemplateID)
	}
	return out
}
