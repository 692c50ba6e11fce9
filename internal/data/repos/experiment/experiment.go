package experiment

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
)

type ExperimentRepo interface {
	Create(dbc dbctx.Context, rows []*types.Experiment) ([]*types.Experiment, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Experiment, error)
	GetByTeacherID(dbc dbctx.Context, teacherID uuid.UUID) ([]*types.Experiment, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type experimentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExperimentRepo(db *gorm.DB, baseLog *logger.Logger) ExperimentRepo {
	return &experimentRepo{db: db, log: baseLog.With("repo", "ExperimentRepo")}
}

func (r *experimentRepo) Create(dbc dbctx.Context, rows []*types.Experiment) ([]*types.Experiment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.Experiment{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *experimentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Experiment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Experiment
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Lesson").
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *experimentRepo) GetByTeacherID(dbc dbctx.Context, teacherID uuid.UUID) ([]*types.Experiment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Experiment
	if teacherID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *experimentRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Experiment{}).
		Where("id = ?", id).
		Updates(updates).Error
}
