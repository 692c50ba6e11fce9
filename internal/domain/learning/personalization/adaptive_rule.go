package personalization

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionIncreaseDifficulty = "increase_difficulty"
	ActionDecreaseDifficulty = "decrease_difficulty"
	ActionReinforceTopic     = "reinforce_topic"
)

// AdaptiveRule maps a success-rate band to a pedagogical action.
// The band is half-open: [MinSuccessRate, MaxSuccessRate).
type AdaptiveRule struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"column:name;not null;uniqueIndex" json:"name"`

	MinSuccessRate         float64 `gorm:"column:min_success_rate;not null;default:0" json:"min_success_rate"`
	MaxSuccessRate         float64 `gorm:"column:max_success_rate;not null;default:1" json:"max_success_rate"`
	MinAttempts            int     `gorm:"column:min_attempts;not null;default:3" json:"min_attempts"`
	Action                 string  `gorm:"column:action;not null;default:'reinforce_topic'" json:"action"`
	RecommendationTemplate string  `gorm:"column:recommendation_template" json:"recommendation_template"`
	IsActive               bool    `gorm:"column:is_active;not null;index" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (AdaptiveRule) TableName() string { return "adaptive_rule" }

func (r *AdaptiveRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
