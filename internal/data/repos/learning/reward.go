package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
)

type RewardRepo interface {
	Create(dbc dbctx.Context, rows []*types.Reward) ([]*types.Reward, error)
	CountByStudentID(dbc dbctx.Context, studentID uuid.UUID) (int, error)
}

type rewardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRewardRepo(db *gorm.DB, baseLog *logger.Logger) RewardRepo {
	return &rewardRepo{db: db, log: baseLog.With("repo", "RewardRepo")}
}

func (r *rewardRepo) Create(dbc dbctx.Context, rows []*types.Reward) ([]*types.Reward, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.Reward{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *rewardRepo) CountByStudentID(dbc dbctx.Context, studentID uuid.UUID) (int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if studentID == uuid.Nil {
		return 0, nil
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Reward{}).
		Where("student_id = ?", studentID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}
