package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
)

type InteractiveTemplateRepo interface {
	Create(dbc dbctx.Context, rows []*types.InteractiveTemplate) ([]*types.InteractiveTemplate, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.InteractiveTemplate, error)
}

type interactiveTemplateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInteractiveTemplateRepo(db *gorm.DB, baseLog *logger.Logger) InteractiveTemplateRepo {
	return &interactiveTemplateRepo{db: db, log: baseLog.With("repo", "InteractiveTemplateRepo")}
}

func (r *interactiveTemplateRepo) Create(dbc dbctx.Context, rows []*types.InteractiveTemplate) ([]*types.InteractiveTemplate, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.InteractiveTemplate{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *interactiveTemplateRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.InteractiveTemplate, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.InteractiveTemplate
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type InteractiveSubmissionRepo interface {
	Create(dbc dbctx.Context, rows []*types.InteractiveSubmission) ([]*types.InteractiveSubmission, error)
	// GetByUserID returns the user's submissions ordered by (created_at, id) with template and
	// slide lesson preloaded.
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.InteractiveSubmission, error)
	GetByTemplateIDs(dbc dbctx.Context, templateIDs []uuid.UUID, userIDs []uuid.UUID) ([]*types.InteractiveSubmission, error)
}

type interactiveSubmissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInteractiveSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) InteractiveSubmissionRepo {
	return &interactiveSubmissionRepo{db: db, log: baseLog.With("repo", "InteractiveSubmissionRepo")}
}

func (r *interactiveSubmissionRepo) Create(dbc dbctx.Context, rows []*types.InteractiveSubmission) ([]*types.InteractiveSubmission, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.InteractiveSubmission{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *interactiveSubmissionRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.InteractiveSubmission, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.InteractiveSubmission
	if userID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Template").
		Preload("SlideLesson").
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *interactiveSubmissionRepo) GetByTemplateIDs(dbc dbctx.Context, templateIDs []uuid.UUID, userIDs []uuid.UUID) ([]*types.InteractiveSubmission, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.InteractiveSubmission
	if len(templateIDs) == 0 || len(userIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Template").
		Preload("User").
		Where("template_id IN ? AND user_id IN ?", templateIDs, userIDs).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
