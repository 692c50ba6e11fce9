package core

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/edupulse-backend/internal/domain/user"
)

// InteractiveTemplate is a free-form game/slide template (quiz, sorting, flashcards...).
type InteractiveTemplate struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Title        string         `gorm:"column:title;not null" json:"title"`
	TemplateType string         `gorm:"column:template_type;not null" json:"template_type"`
	Data         datatypes.JSON `gorm:"column:data" json:"data"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (InteractiveTemplate) TableName() string { return "interactive_template" }

func (t *InteractiveTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// InteractiveSubmission is a student's result on an interactive template or a lesson slide.
type InteractiveSubmission struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	TemplateID    *uuid.UUID           `gorm:"type:uuid;index" json:"template_id,omitempty"`
	Template      *InteractiveTemplate `gorm:"constraint:OnDelete:SET NULL;foreignKey:TemplateID;references:ID" json:"template,omitempty"`
	SlideLessonID *uuid.UUID           `gorm:"type:uuid;index" json:"slide_lesson_id,omitempty"`
	SlideLesson   *Lesson              `gorm:"constraint:OnDelete:SET NULL;foreignKey:SlideLessonID;references:ID" json:"slide_lesson,omitempty"`

	Score           *float64       `gorm:"column:score" json:"score,omitempty"`
	DurationSeconds *int           `gorm:"column:duration_seconds" json:"duration_seconds,omitempty"`
	Data            datatypes.JSON `gorm:"column:data" json:"data"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (InteractiveSubmission) TableName() string { return "interactive_submission" }

func (s *InteractiveSubmission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
