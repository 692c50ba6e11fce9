package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
)

type StudentProfileRepo interface {
	GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) (*types.StudentProfile, error)
	GetByStudentIDs(dbc dbctx.Context, studentIDs []uuid.UUID) ([]*types.StudentProfile, error)
	// Save inserts the profile when it has no ID, otherwise overwrites every column.
	Save(dbc dbctx.Context, row *types.StudentProfile) error
}

type studentProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentProfileRepo(db *gorm.DB, baseLog *logger.Logger) StudentProfileRepo {
	return &studentProfileRepo{db: db, log: baseLog.With("repo", "StudentProfileRepo")}
}

func (r *studentProfileRepo) GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) (*types.StudentProfile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if studentID == uuid.Nil {
		return nil, nil
	}
	var row types.StudentProfile
	if err := transaction.WithContext(dbc.Ctx).
		Where("student_id = ?", studentID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *studentProfileRepo) GetByStudentIDs(dbc dbctx.Context, studentIDs []uuid.UUID) ([]*types.StudentProfile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.StudentProfile
	if len(studentIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("student_id IN ?", studentIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *studentProfileRepo) Save(dbc dbctx.Context, row *types.StudentProfile) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil || row.StudentID == uuid.Nil {
		return nil
	}
	q := transaction.WithContext(dbc.Ctx).Omit("Student")
	if row.ID == uuid.Nil {
		return q.Create(row).Error
	}
	return q.Save(row).Error
}
