package live

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/edupulse-backend/internal/domain/learning/core"
	"github.com/yungbote/edupulse-backend/internal/domain/user"
)

const (
	// ModePresence awards points for showing up on a slide.
	ModePresence = "presence"
	// ModeAnswer evaluates an answer and only rewards correct check-ins.
	ModeAnswer = "answer"

	SourceSlides = "slides"
	SourceCanva  = "canva"
	SourceURL    = "url"
	SourcePPTX   = "pptx"
)

type Session struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"lesson_id"`
	Lesson    *core.Lesson `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
	TeacherID uuid.UUID    `gorm:"type:uuid;not null;index" json:"teacher_id"`
	Teacher   *user.User   `gorm:"constraint:OnDelete:CASCADE;foreignKey:TeacherID;references:ID" json:"teacher,omitempty"`

	IsActive          bool   `gorm:"column:is_active;not null;index" json:"is_active"`
	LiveCode          string `gorm:"column:live_code;index" json:"live_code"`
	Mode              string `gorm:"column:mode;not null;default:'presence'" json:"mode"`
	SourceType        string `gorm:"column:source_type;not null;default:'slides'" json:"source_type"`
	ExternalURL       string `gorm:"column:external_url" json:"external_url"`
	CurrentSlideIndex int    `gorm:"column:current_slide_index;not null;default:0" json:"current_slide_index"`

	TimerDurationSeconds int        `gorm:"column:timer_duration_seconds;not null;default:0" json:"timer_duration_seconds"`
	TimerStartedAt       *time.Time `gorm:"column:timer_started_at" json:"timer_started_at,omitempty"`
	TimerEndsAt          *time.Time `gorm:"column:timer_ends_at" json:"timer_ends_at,omitempty"`

	StartedAt *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	EndedAt   *time.Time `gorm:"column:ended_at" json:"ended_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Session) TableName() string { return "live_session" }

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Participant struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID  `gorm:"type:uuid;not null;index:idx_live_participant,unique,priority:1" json:"session_id"`
	Session   *Session   `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"session,omitempty"`
	StudentID uuid.UUID  `gorm:"type:uuid;not null;index:idx_live_participant,unique,priority:2" json:"student_id"`
	Student   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`

	DisplayName string `gorm:"column:display_name" json:"display_name"`

	Points        int `gorm:"column:points;not null;default:0" json:"points"`
	Streak        int `gorm:"column:streak;not null;default:0" json:"streak"`
	BestStreak    int `gorm:"column:best_streak;not null;default:0" json:"best_streak"`
	CheckinsCount int `gorm:"column:checkins_count;not null;default:0" json:"checkins_count"`

	CurrentSlideIndex     int `gorm:"column:current_slide_index;not null;default:0" json:"current_slide_index"`
	LastCheckedSlideIndex int `gorm:"column:last_checked_slide_index;not null" json:"last_checked_slide_index"`
	LastCorrectSlideIndex int `gorm:"column:last_correct_slide_index;not null" json:"last_correct_slide_index"`

	JoinedAt   time.Time `gorm:"column:joined_at;not null" json:"joined_at"`
	LastSeenAt time.Time `gorm:"column:last_seen_at;not null" json:"last_seen_at"`
}

func (Participant) TableName() string { return "live_participant" }

func (p *Participant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ResolvedName is the name shown on the leaderboard.
func (p *Participant) ResolvedName() string {
	if p == nil {
		return ""
	}
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Student.DisplayName()
}

type SlideCheckin struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID     uuid.UUID    `gorm:"type:uuid;not null;index:idx_live_checkin_slide,priority:1" json:"session_id"`
	ParticipantID uuid.UUID    `gorm:"type:uuid;not null;index:idx_live_checkin_once,unique,priority:1" json:"participant_id"`
	Participant   *Participant `gorm:"constraint:OnDelete:CASCADE;foreignKey:ParticipantID;references:ID" json:"participant,omitempty"`
	SlideIndex    int          `gorm:"column:slide_index;not null;index:idx_live_checkin_once,unique,priority:2;index:idx_live_checkin_slide,priority:2" json:"slide_index"`

	ReactionMS    int  `gorm:"column:reaction_ms;not null;default:0" json:"reaction_ms"`
	IsCorrect     bool `gorm:"column:is_correct;not null" json:"is_correct"`
	Rank          int  `gorm:"column:rank;not null;default:0" json:"rank"`
	PointsAwarded int  `gorm:"column:points_awarded;not null;default:0" json:"points_awarded"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (SlideCheckin) TableName() string { return "live_slide_checkin" }

func (c *SlideCheckin) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
