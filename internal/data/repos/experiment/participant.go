package experiment

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
)

type ParticipantRepo interface {
	// Upsert inserts participants or moves existing (experiment, student) pairs to the given group.
	Upsert(dbc dbctx.Context, rows []*types.ExperimentParticipant) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ExperimentParticipant, error)
	// GetByExperimentID returns participants with students preloaded.
	GetByExperimentID(dbc dbctx.Context, experimentID uuid.UUID) ([]*types.ExperimentParticipant, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	FullDeleteByExperimentID(dbc dbctx.Context, experimentID uuid.UUID) error
}

type participantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewParticipantRepo(db *gorm.DB, baseLog *logger.Logger) ParticipantRepo {
	return &participantRepo{db: db, log: baseLog.With("repo", "ExperimentParticipantRepo")}
}

func (r *participantRepo) Upsert(dbc dbctx.Context, rows []*types.ExperimentParticipant) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Omit("Experiment", "Student").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "experiment_id"}, {Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"group_name", "updated_at"}),
		}).
		Create(&rows).Error
}

func (r *participantRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ExperimentParticipant, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.ExperimentParticipant
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Student").
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

func (r *participantRepo) GetByExperimentID(dbc dbctx.Context, experimentID uuid.UUID) ([]*types.ExperimentParticipant, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ExperimentParticipant
	if experimentID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Student").
		Where("experiment_id = ?", experimentID).
		Order("group_name ASC, created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *participantRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.ExperimentParticipant{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *participantRepo) FullDeleteByExperimentID(dbc dbctx.Context, experimentID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if experimentID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("experiment_id = ?", experimentID).
		Delete(&types.ExperimentParticipant{}).Error
}
