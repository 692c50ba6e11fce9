package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
)

type AssignmentSubmissionRepo interface {
	Create(dbc dbctx.Context, rows []*types.AssignmentSubmission) ([]*types.AssignmentSubmission, error)
	// GetByStudentID returns the student's submissions ordered by (submitted_at, id) with
	// Assignment.Lesson preloaded.
	GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) ([]*types.AssignmentSubmission, error)
	GetByAssignmentIDs(dbc dbctx.Context, assignmentIDs []uuid.UUID, studentIDs []uuid.UUID) ([]*types.AssignmentSubmission, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type assignmentSubmissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentSubmissionRepo {
	return &assignmentSubmissionRepo{db: db, log: baseLog.With("repo", "AssignmentSubmissionRepo")}
}

func (r *assignmentSubmissionRepo) Create(dbc dbctx.Context, rows []*types.AssignmentSubmission) ([]*types.AssignmentSubmission, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.AssignmentSubmission{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assignmentSubmissionRepo) GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) ([]*types.AssignmentSubmission, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.AssignmentSubmission
	if studentID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Assignment.Lesson").
		Where("student_id = ?", studentID).
		Order("submitted_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assignmentSubmissionRepo) GetByAssignmentIDs(dbc dbctx.Context, assignmentIDs []uuid.UUID, studentIDs []uuid.UUID) ([]*types.AssignmentSubmission, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.AssignmentSubmission
	if len(assignmentIDs) == 0 || len(studentIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Assignment.Lesson").
		Preload("Student").
		Where("assignment_id IN ? AND student_id IN ?", assignmentIDs, studentIDs).
		Order("submitted_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assignmentSubmissionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.AssignmentSubmission{}).
		Where("id = ?", id).
		Updates(updates).Error
}
