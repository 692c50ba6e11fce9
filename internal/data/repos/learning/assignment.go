package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
)

type AssignmentRepo interface {
	Create(dbc dbctx.Context, rows []*types.Assignment) ([]*types.Assignment, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Assignment, error)
	// GetByLessonIDs preloads each assignment's lesson.
	GetByLessonIDs(dbc dbctx.Context, lessonIDs []uuid.UUID) ([]*types.Assignment, error)
	// GetByContentIDsForStudent returns assignments embedding the given templates in lessons the
	// student is enrolled in, oldest first, lessons preloaded.
	GetByContentIDsForStudent(dbc dbctx.Context, studentID uuid.UUID, contentIDs []uuid.UUID) ([]*types.Assignment, error)
}

type assignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	return &assignmentRepo{db: db, log: baseLog.With("repo", "AssignmentRepo")}
}

func (r *assignmentRepo) Create(dbc dbctx.Context, rows []*types.Assignment) ([]*types.Assignment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.Assignment{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assignmentRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Assignment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Assignment
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Lesson").
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assignmentRepo) GetByLessonIDs(dbc dbctx.Context, lessonIDs []uuid.UUID) ([]*types.Assignment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Assignment
	if len(lessonIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Lesson").
		Where("lesson_id IN ?", lessonIDs).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assignmentRepo) GetByContentIDsForStudent(dbc dbctx.Context, studentID uuid.UUID, contentIDs []uuid.UUID) ([]*types.Assignment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Assignment
	if len(contentIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Lesson").
		Where("content_id IN ?", contentIDs).
		Where("lesson_id IN (?)", transaction.Model(&types.Enrollment{}).Select("lesson_id").Where("student_id = ?", studentID)).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
