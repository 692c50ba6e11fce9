package live

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
)

const DefaultLeaderboardLimit = 20

type ParticipantRepo interface {
	Create(dbc dbctx.Context, row *types.LiveParticipant) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LiveParticipant, error)
	GetBySessionAndStudent(dbc dbctx.Context, sessionID, studentID uuid.UUID) (*types.LiveParticipant, error)
	Save(dbc dbctx.Context, row *types.LiveParticipant) error
	// GetBySessionID returns the roster, most recently seen first.
	GetBySessionID(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.LiveParticipant, error)
	// Leaderboard orders by points desc, best_streak desc, joined_at, id. limit<=0 uses the default.
	Leaderboard(dbc dbctx.Context, sessionID uuid.UUID, limit int) ([]*types.LiveParticipant, error)
}

type participantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewParticipantRepo(db *gorm.DB, baseLog *logger.Logger) ParticipantRepo {
	return &participantRepo{db: db, log: baseLog.With("repo", "LiveParticipantRepo")}
}

func (r *participantRepo) Create(dbc dbctx.Context, row *types.LiveParticipant) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).Omit("Session", "Student").Create(row).Error
}

func (r *participantRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LiveParticipant, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.LiveParticipant
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

func (r *participantRepo) GetBySessionAndStudent(dbc dbctx.Context, sessionID, studentID uuid.UUID) (*types.LiveParticipant, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if sessionID == uuid.Nil || studentID == uuid.Nil {
		return nil, nil
	}
	var row types.LiveParticipant
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Student").
		Where("session_id = ? AND student_id = ?", sessionID, studentID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *participantRepo) Save(dbc dbctx.Context, row *types.LiveParticipant) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).Omit("Session", "Student").Save(row).Error
}

func (r *participantRepo) GetBySessionID(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.LiveParticipant, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.LiveParticipant
	if sessionID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Student").
		Where("session_id = ?", sessionID).
		Order("last_seen_at DESC, points DESC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *participantRepo) Leaderboard(dbc dbctx.Context, sessionID uuid.UUID, limit int) ([]*types.LiveParticipant, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.LiveParticipant
	if sessionID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Student").
		Where("session_id = ?", sessionID).
		Order("points DESC, best_streak DESC, joined_at ASC, id ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
