package personalization

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/edupulse-backend/internal/domain/user"
)

const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// StudentProfile is the persisted personalization snapshot, rebuilt wholesale on every recompute.
type StudentProfile struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"student_id"`
	Student   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`

	LearningLevel string `gorm:"column:learning_level;not null;default:'beginner'" json:"learning_level"`

	InterestFocus    string         `gorm:"column:interest_focus" json:"interest_focus"`
	PreferredFormats datatypes.JSON `gorm:"column:preferred_formats" json:"preferred_formats"`
	LearningGoals    string         `gorm:"column:learning_goals" json:"learning_goals"`

	AverageScore       float64        `gorm:"column:average_score;not null;default:0" json:"average_score"`
	CompletionRate     float64        `gorm:"column:completion_rate;not null;default:0" json:"completion_rate"`
	TotalPoints        int            `gorm:"column:total_points;not null;default:0" json:"total_points"`
	TotalTimeSeconds   int            `gorm:"column:total_time_seconds;not null;default:0" json:"total_time_seconds"`
	WeakTopics         datatypes.JSON `gorm:"column:weak_topics" json:"weak_topics"`
	StrongTopics       datatypes.JSON `gorm:"column:strong_topics" json:"strong_topics"`
	ProgressHistory    datatypes.JSON `gorm:"column:progress_history" json:"progress_history"`
	LastRecommendation string         `gorm:"column:last_recommendation" json:"last_recommendation"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (StudentProfile) TableName() string { return "student_profile" }

func (p *StudentProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
