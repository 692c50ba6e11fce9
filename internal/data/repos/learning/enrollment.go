package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
)

type EnrollmentRepo interface {
	CreateIgnoreDuplicates(dbc dbctx.Context, rows []*types.Enrollment) (int, error)
	// GetByStudentID returns enrollments in join order with lessons preloaded.
	GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) ([]*types.Enrollment, error)
	// GetByLessonIDs returns enrollments with students preloaded. A non-nil studentID narrows the result.
	GetByLessonIDs(dbc dbctx.Context, lessonIDs []uuid.UUID, studentID *uuid.UUID) ([]*types.Enrollment, error)
	FullDeleteByStudentAndLesson(dbc dbctx.Context, studentID, lessonID uuid.UUID) error
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return &enrollmentRepo{db: db, log: baseLog.With("repo", "EnrollmentRepo")}
}

func (r *enrollmentRepo) CreateIgnoreDuplicates(dbc dbctx.Context, rows []*types.Enrollment) (int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "lesson_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *enrollmentRepo) GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) ([]*types.Enrollment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Enrollment
	if studentID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Lesson").
		Where("student_id = ?", studentID).
		Order("joined_at ASC, lesson_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *enrollmentRepo) GetByLessonIDs(dbc dbctx.Context, lessonIDs []uuid.UUID, studentID *uuid.UUID) ([]*types.Enrollment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Enrollment
	if len(lessonIDs) == 0 {
		return out, nil
	}
	q := transaction.WithContext(dbc.Ctx).
		Preload("Student").
		Where("lesson_id IN ?", lessonIDs)
	if studentID != nil {
		q = q.Where("student_id = ?", *studentID)
	}
	if err := q.Order("joined_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *enrollmentRepo) FullDeleteByStudentAndLesson(dbc dbctx.Context, studentID, lessonID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if studentID == uuid.Nil || lessonID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("student_id = ? AND lesson_id = ?", studentID, lessonID).
		Delete(&types.Enrollment{}).Error
}
