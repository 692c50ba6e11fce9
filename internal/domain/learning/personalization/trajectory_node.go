package personalization

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/edupulse-backend/internal/domain/learning/core"
)

const (
	NodeLocked     = "locked"
	NodeUnlocked   = "unlocked"
	NodeInProgress = "in_progress"
	NodeReview     = "review"
	NodeCompleted  = "completed"

	DefaultRequiredScore = 0.6
)

// TrajectoryNode is one lesson on a student's ordered learning path.
type TrajectoryNode struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID    `gorm:"type:uuid;not null;index:idx_trajectory_student_lesson,unique,priority:1" json:"student_id"`
	LessonID  uuid.UUID    `gorm:"type:uuid;not null;index:idx_trajectory_student_lesson,unique,priority:2" json:"lesson_id"`
	Lesson    *core.Lesson `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`

	Topic          string     `gorm:"column:topic;not null" json:"topic"`
	OrderIndex     int        `gorm:"column:order_index;not null;default:1" json:"order_index"`
	RequiredScore  float64    `gorm:"column:required_score;not null;default:0.6" json:"required_score"`
	Mastery        float64    `gorm:"column:mastery;not null;default:0" json:"mastery"`
	Status         string     `gorm:"column:status;not null;default:'locked'" json:"status"`
	Recommendation string     `gorm:"column:recommendation" json:"recommendation"`
	UnlockedAt     *time.Time `gorm:"column:unlocked_at" json:"unlocked_at,omitempty"`
	CompletedAt    *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (TrajectoryNode) TableName() string { return "trajectory_node" }

func (n *TrajectoryNode) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.RequiredScore == 0 {
		n.RequiredScore = DefaultRequiredScore
	}
	return nil
}
