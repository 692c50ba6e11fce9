package core

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/edupulse-backend/internal/domain/user"
)

type Assignment struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID uuid.UUID `gorm:"type:uuid;not null;index" json:"lesson_id"`
	Lesson   *Lesson   `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`

	Title          string `gorm:"column:title;not null" json:"title"`
	AssignmentType string `gorm:"column:assignment_type;not null;default:'quiz'" json:"assignment_type"`
	Description    string `gorm:"column:description" json:"description"`
	// ContentID links the assignment to an interactive template.
	ContentID   *uuid.UUID `gorm:"type:uuid;column:content_id;index" json:"content_id,omitempty"`
	IsPublished bool       `gorm:"column:is_published;not null;default:false" json:"is_published"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Assignment) TableName() string { return "assignment" }

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AssignmentSubmission is a graded answer to a structured assignment.
type AssignmentSubmission struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID   `gorm:"type:uuid;not null;index" json:"assignment_id"`
	Assignment   *Assignment `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`
	StudentID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"student_id"`
	Student      *user.User  `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`

	Score           *float64  `gorm:"column:score" json:"score,omitempty"`
	DurationSeconds int       `gorm:"column:duration_seconds;not null;default:0" json:"duration_seconds"`
	SubmittedAt     time.Time `gorm:"column:submitted_at;not null;index" json:"submitted_at"`
}

func (AssignmentSubmission) TableName() string { return "assignment_submission" }

func (s *AssignmentSubmission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now().UTC()
	}
	return nil
}

type Reward struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID  `gorm:"type:uuid;not null;index" json:"student_id"`
	Student   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	Title     string     `gorm:"column:title" json:"title"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
}

func (Reward) TableName() string { return "reward" }

func (r *Reward) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
