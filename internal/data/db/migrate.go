package db

import (
	"gorm.io/gorm"

	types "github.com/yungbote/edupulse-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// =========================
		// Identity
		// =========================
		&types.User{},

		// =========================
		// Lessons + submissions
		// =========================
		&types.Lesson{},
		&types.Enrollment{},
		&types.Assignment{},
		&types.AssignmentSubmission{},
		&types.InteractiveTemplate{},
		&types.InteractiveSubmission{},
		&types.Reward{},

		// =========================
		// Personalization
		// =========================
		&types.AdaptiveRule{},
		&types.TrajectoryNode{},
		&types.StudentProfile{},

		// =========================
		// Experiments
		// =========================
		&types.Experiment{},
		&types.ExperimentParticipant{},

		// =========================
		// Live sessions
		// =========================
		&types.LiveSession{},
		&types.LiveParticipant{},
		&types.LiveSlideCheckin{},
	)
}
