package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/edupulse-backend/internal/data/repos"
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
)

type Repos struct {
	User                  repos.UserRepo
	Lesson                repos.LessonRepo
	Enrollment            repos.EnrollmentRepo
	Assignment            repos.AssignmentRepo
	AssignmentSubmission  repos.AssignmentSubmissionRepo
	InteractiveTemplate   repos.InteractiveTemplateRepo
	InteractiveSubmission repos.InteractiveSubmissionRepo
	Reward                repos.RewardRepo

	AdaptiveRule   repos.AdaptiveRuleRepo
	TrajectoryNode repos.TrajectoryNodeRepo
	StudentProfile repos.StudentProfileRepo

	Experiment            repos.ExperimentRepo
	ExperimentParticipant repos.ExperimentParticipantRepo

	LiveSession     repos.LiveSessionRepo
	LiveParticipant repos.LiveParticipantRepo
	LiveCheckin     repos.LiveCheckinRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:                  repos.NewUserRepo(db, log),
		Lesson:                repos.NewLessonRepo(db, log),
		Enrollment:            repos.NewEnrollmentRepo(db, log),
		Assignment:            repos.NewAssignmentRepo(db, log),
		AssignmentSubmission:  repos.NewAssignmentSubmissionRepo(db, log),
		InteractiveTemplate:   repos.NewInteractiveTemplateRepo(db, log),
		InteractiveSubmission: repos.NewInteractiveSubmissionRepo(db, log),
		Reward:                repos.NewRewardRepo(db, log),

		AdaptiveRule:   repos.NewAdaptiveRuleRepo(db, log),
		TrajectoryNode: repos.NewTrajectoryNodeRepo(db, log),
		StudentProfile: repos.NewStudentProfileRepo(db, log),

		Experiment:            repos.NewExperimentRepo(db, log),
		ExperimentParticipant: repos.NewExperimentParticipantRepo(db, log),

		LiveSession:     repos.NewLiveSessionRepo(db, log),
		LiveParticipant: repos.NewLiveParticipantRepo(db, log),
		LiveCheckin:     repos.NewLiveCheckinRepo(db, log),
	}
}
