package learning

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
)

type AdaptiveRuleRepo interface {
	// UpsertByName inserts rules or overwrites the band and action of same-named ones.
	UpsertByName(dbc dbctx.Context, rows []*types.AdaptiveRule) error
	// GetActive returns active rules ordered by (min_success_rate, id).
	GetActive(dbc dbctx.Context) ([]*types.AdaptiveRule, error)
}

type adaptiveRuleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAdaptiveRuleRepo(db *gorm.DB, baseLog *logger.Logger) AdaptiveRuleRepo {
	return &adaptiveRuleRepo{db: db, log: baseLog.With("repo", "AdaptiveRuleRepo")}
}

func (r *adaptiveRuleRepo) UpsertByName(dbc dbctx.Context, rows []*types.AdaptiveRule) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"min_success_rate", "max_success_rate", "min_attempts",
				"action", "recommendation_template", "is_active",
			}),
		}).
		Create(&rows).Error
}

func (r *adaptiveRuleRepo) GetActive(dbc dbctx.Context) ([]*types.AdaptiveRule, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.AdaptiveRule
	if err := transaction.WithContext(dbc.Ctx).
		Where("is_active = ?", true).
		Order("min_success_rate ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
