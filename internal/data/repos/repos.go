package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/edupulse-backend/internal/data/repos/experiment"
	"github.com/yungbote/edupulse-backend/internal/data/repos/learning"
	"github.com/yungbote/edupulse-backend/internal/data/repos/live"
	"github.com/yungbote/edupulse-backend/internal/data/repos/user"
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
)

type UserRepo = user.UserRepo

type LessonRepo = learning.LessonRepo
type EnrollmentRepo = learning.EnrollmentRepo
type AssignmentRepo = learning.AssignmentRepo
type AssignmentSubmissionRepo = learning.AssignmentSubmissionRepo
type InteractiveTemplateRepo = learning.InteractiveTemplateRepo
type InteractiveSubmissionRepo = learning.InteractiveSubmissionRepo
type RewardRepo = learning.RewardRepo

type AdaptiveRuleRepo = learning.AdaptiveRuleRepo
type TrajectoryNodeRepo = learning.TrajectoryNodeRepo
type StudentProfileRepo = learning.StudentProfileRepo

type ExperimentRepo = experiment.ExperimentRepo
type ExperimentParticipantRepo = experiment.ParticipantRepo

const DefaultLeaderboardLimit = live.DefaultLeaderboardLimit

type LiveSessionRepo = live.SessionRepo
type LiveParticipantRepo = live.ParticipantRepo
type LiveCheckinRepo = live.CheckinRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return learning.NewLessonRepo(db, baseLog)
}
func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return learning.NewEnrollmentRepo(db, baseLog)
}
func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	return learning.NewAssignmentRepo(db, baseLog)
}
func NewAssignmentSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentSubmissionRepo {
	return learning.NewAssignmentSubmissionRepo(db, baseLog)
}
func NewInteractiveTemplateRepo(db *gorm.DB, baseLog *logger.Logger) InteractiveTemplateRepo {
	return learning.NewInteractiveTemplateRepo(db, baseLog)
}
func NewInteractiveSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) InteractiveSubmissionRepo {
	return learning.NewInteractiveSubmissionRepo(db, baseLog)
}
func NewRewardRepo(db *gorm.DB, baseLog *logger.Logger) RewardRepo {
	return learning.NewRewardRepo(db, baseLog)
}

func NewAdaptiveRuleRepo(db *gorm.DB, baseLog *logger.Logger) AdaptiveRuleRepo {
	return learning.NewAdaptiveRuleRepo(db, baseLog)
}
func NewTrajectoryNodeRepo(db *gorm.DB, baseLog *logger.Logger) TrajectoryNodeRepo {
	return learning.NewTrajectoryNodeRepo(db, baseLog)
}
func NewStudentProfileRepo(db *gorm.DB, baseLog *logger.Logger) StudentProfileRepo {
	return learning.NewStudentProfileRepo(db, baseLog)
}

func NewExperimentRepo(db *gorm.DB, baseLog *logger.Logger) ExperimentRepo {
	return experiment.NewExperimentRepo(db, baseLog)
}
func NewExperimentParticipantRepo(db *gorm.DB, baseLog *logger.Logger) ExperimentParticipantRepo {
	return experiment.NewParticipantRepo(db, baseLog)
}

func NewLiveSessionRepo(db *gorm.DB, baseLog *logger.Logger) LiveSessionRepo {
	return live.NewSessionRepo(db, baseLog)
}
func NewLiveParticipantRepo(db *gorm.DB, baseLog *logger.Logger) LiveParticipantRepo {
	return live.NewParticipantRepo(db, baseLog)
}
func NewLiveCheckinRepo(db *gorm.DB, baseLog *logger.Logger) LiveCheckinRepo {
	return live.NewCheckinRepo(db, baseLog)
}
