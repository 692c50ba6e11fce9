package experiments

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/edupulse-backend/internal/domain/learning/core"
	"github.com/yungbote/edupulse-backend/internal/domain/user"
)

const (
	GroupControl      = "control"
	GroupExperimental = "experimental"
)

// Experiment is a teacher-run A/B study comparing pre/post results of two cohorts.
type Experiment struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	TeacherID uuid.UUID    `gorm:"type:uuid;not null;index" json:"teacher_id"`
	Teacher   *user.User   `gorm:"constraint:OnDelete:CASCADE;foreignKey:TeacherID;references:ID" json:"teacher,omitempty"`
	LessonID  *uuid.UUID   `gorm:"type:uuid;index" json:"lesson_id,omitempty"`
	Lesson    *core.Lesson `gorm:"constraint:OnDelete:SET NULL;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`

	Title      string `gorm:"column:title;not null" json:"title"`
	FocusTopic string `gorm:"column:focus_topic" json:"focus_topic"`
	Hypothesis string `gorm:"column:hypothesis" json:"hypothesis"`
	Notes      string `gorm:"column:notes" json:"notes"`

	PreStart  *time.Time `gorm:"column:pre_start" json:"pre_start,omitempty"`
	PreEnd    *time.Time `gorm:"column:pre_end" json:"pre_end,omitempty"`
	PostStart *time.Time `gorm:"column:post_start" json:"post_start,omitempty"`
	PostEnd   *time.Time `gorm:"column:post_end" json:"post_end,omitempty"`

	IsActive bool `gorm:"column:is_active;not null" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Experiment) TableName() string { return "experiment" }

func (e *Experiment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Participant places one student into one arm of an experiment.
// Scores are percentages (0..100); motivation is a 0..10 self-report.
type Participant struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ExperimentID uuid.UUID   `gorm:"type:uuid;not null;index:idx_experiment_participant,unique,priority:1" json:"experiment_id"`
	Experiment   *Experiment `gorm:"constraint:OnDelete:CASCADE;foreignKey:ExperimentID;references:ID" json:"experiment,omitempty"`
	StudentID    uuid.UUID   `gorm:"type:uuid;not null;index:idx_experiment_participant,unique,priority:2" json:"student_id"`
	Student      *user.User  `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`

	Group string `gorm:"column:group_name;not null" json:"group"`

	PreScore       *float64 `gorm:"column:pre_score" json:"pre_score,omitempty"`
	PostScore      *float64 `gorm:"column:post_score" json:"post_score,omitempty"`
	PreMotivation  *float64 `gorm:"column:pre_motivation" json:"pre_motivation,omitempty"`
	PostMotivation *float64 `gorm:"column:post_motivation" json:"post_motivation,omitempty"`
	Notes          string   `gorm:"column:notes" json:"notes"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Participant) TableName() string { return "experiment_participant" }

func (p *Participant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
