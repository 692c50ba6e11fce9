package live

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
)

type CheckinRepo interface {
	Exists(dbc dbctx.Context, participantID uuid.UUID, slideIndex int) (bool, error)
	// CountPrior counts earlier check-ins on the slide; correctOnly restricts to correct ones.
	CountPrior(dbc dbctx.Context, sessionID uuid.UUID, slideIndex int, correctOnly bool) (int, error)
	// Create reports false without error when the participant already checked in on the slide.
	Create(dbc dbctx.Context, row *types.LiveSlideCheckin) (bool, error)
	GetBySessionID(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.LiveSlideCheckin, error)
}

type checkinRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCheckinRepo(db *gorm.DB, baseLog *logger.Logger) CheckinRepo {
	return &checkinRepo{db: db, log: baseLog.With("repo", "LiveCheckinRepo")}
}

func (r *checkinRepo) Exists(dbc dbctx.Context, participantID uuid.UUID, slideIndex int) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.LiveSlideCheckin{}).
		Where("participant_id = ? AND slide_index = ?", participantID, slideIndex).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *checkinRepo) CountPrior(dbc dbctx.Context, sessionID uuid.UUID, slideIndex int, correctOnly bool) (int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).
		Model(&types.LiveSlideCheckin{}).
		Where("session_id = ? AND slide_index = ?", sessionID, slideIndex)
	if correctOnly {
		q = q.Where("is_correct = ?", true)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *checkinRepo) Create(dbc dbctx.Context, row *types.LiveSlideCheckin) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return false, nil
	}
	// Savepoint so a unique violation does not poison the caller's transaction.
	err := transaction.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Participant").Create(row).Error
	})
	if err == nil {
		return true, nil
	}
	if isDuplicate(err) {
		r.log.Debug("duplicate check-in ignored", "participant_id", row.ParticipantID, "slide_index", row.SlideIndex)
		return false, nil
	}
	return false, err
}

func (r *checkinRepo) GetBySessionID(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.LiveSlideCheckin, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.LiveSlideCheckin
	if sessionID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("session_id = ?", sessionID).
		Order("slide_index ASC, created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
