package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
)

type TrajectoryNodeRepo interface {
	// GetByStudentID returns nodes ordered by (order_index, id) with lessons preloaded.
	GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) ([]*types.TrajectoryNode, error)
	GetByStudentIDs(dbc dbctx.Context, studentIDs []uuid.UUID) ([]*types.TrajectoryNode, error)
	// Save inserts nodes without an ID and fully updates the rest.
	Save(dbc dbctx.Context, nodes []*types.TrajectoryNode) error
	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type trajectoryNodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrajectoryNodeRepo(db *gorm.DB, baseLog *logger.Logger) TrajectoryNodeRepo {
	return &trajectoryNodeRepo{db: db, log: baseLog.With("repo", "TrajectoryNodeRepo")}
}

func (r *trajectoryNodeRepo) GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) ([]*types.TrajectoryNode, error) {
	if studentID == uuid.Nil {
		return []*types.TrajectoryNode{}, nil
	}
	return r.GetByStudentIDs(dbc, []uuid.UUID{studentID})
}

func (r *trajectoryNodeRepo) GetByStudentIDs(dbc dbctx.Context, studentIDs []uuid.UUID) ([]*types.TrajectoryNode, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.TrajectoryNode
	if len(studentIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Lesson").
		Where("student_id IN ?", studentIDs).
		Order("student_id ASC, order_index ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *trajectoryNodeRepo) Save(dbc dbctx.Context, nodes []*types.TrajectoryNode) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	for _, n := range nodes {
		if n == nil {
			continue
		}
		q := transaction.WithContext(dbc.Ctx).Omit("Lesson")
		if n.ID == uuid.Nil {
			if err := q.Create(n).Error; err != nil {
				return err
			}
			continue
		}
		if err := q.Save(n).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *trajectoryNodeRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).Where("id IN ?", ids).Delete(&types.TrajectoryNode{}).Error
}
