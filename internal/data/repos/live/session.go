package live

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
)

type SessionRepo interface {
	Create(dbc dbctx.Context, rows []*types.LiveSession) ([]*types.LiveSession, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LiveSession, error)
	GetActiveByCode(dbc dbctx.Context, code string) (*types.LiveSession, error)
	LiveCodeTaken(dbc dbctx.Context, code string) (bool, error)
	// CloseActive ends every other active session the teacher runs for the lesson.
	CloseActive(dbc dbctx.Context, teacherID, lessonID, exceptID uuid.UUID, now time.Time) (int, error)
	Save(dbc dbctx.Context, row *types.LiveSession) error
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "LiveSessionRepo")}
}

func (r *sessionRepo) Create(dbc dbctx.Context, rows []*types.LiveSession) ([]*types.LiveSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.LiveSession{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Omit("Lesson", "Teacher").Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *sessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LiveSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.LiveSession
	if err := transaction.WithContext(dbc.Ctx).
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

func (r *sessionRepo) GetActiveByCode(dbc dbctx.Context, code string) (*types.LiveSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if code == "" {
		return nil, nil
	}
	var row types.LiveSession
	if err := transaction.WithContext(dbc.Ctx).
		Where("live_code = ? AND is_active = ?", code, true).
		Order("created_at DESC").
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *sessionRepo) LiveCodeTaken(dbc dbctx.Context, code string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.LiveSession{}).
		Where("live_code = ? AND is_active = ?", code, true).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *sessionRepo) CloseActive(dbc dbctx.Context, teacherID, lessonID, exceptID uuid.UUID, now time.Time) (int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.LiveSession{}).
		Where("teacher_id = ? AND lesson_id = ? AND is_active = ? AND id <> ?", teacherID, lessonID, true, exceptID).
		Updates(map[string]interface{}{
			"is_active":        false,
			"ended_at":         now,
			"timer_started_at": nil,
			"timer_ends_at":    nil,
			"updated_at":       now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *sessionRepo) Save(dbc dbctx.Context, row *types.LiveSession) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).Omit("Lesson", "Teacher").Save(row).Error
}
