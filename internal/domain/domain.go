package domain

import (
	"github.com/yungbote/edupulse-backend/internal/domain/learning/core"
	"github.com/yungbote/edupulse-backend/internal/domain/learning/experiments"
	"github.com/yungbote/edupulse-backend/internal/domain/learning/personalization"
	"github.com/yungbote/edupulse-backend/internal/domain/live"
	"github.com/yungbote/edupulse-backend/internal/domain/user"
)

const (
	RoleTeacher = user.RoleTeacher
	RoleStudent = user.RoleStudent

	NodeLocked     = personalization.NodeLocked
	NodeUnlocked   = personalization.NodeUnlocked
	NodeInProgress = personalization.NodeInProgress
	NodeReview     = personalization.NodeReview
	NodeCompleted  = personalization.NodeCompleted

	DefaultRequiredScore = personalization.DefaultRequiredScore

	ActionIncreaseDifficulty = personalization.ActionIncreaseDifficulty
	ActionDecreaseDifficulty = personalization.ActionDecreaseDifficulty
	ActionReinforceTopic     = personalization.ActionReinforceTopic

	LevelBeginner     = personalization.LevelBeginner
	LevelIntermediate = personalization.LevelIntermediate
	LevelAdvanced     = personalization.LevelAdvanced

	GroupControl      = experiments.GroupControl
	GroupExperimental = experiments.GroupExperimental

	LiveModePresence = live.ModePresence
	LiveModeAnswer   = live.ModeAnswer
)

type User = user.User

type Lesson = core.Lesson
type Enrollment = core.Enrollment
type Assignment = core.Assignment
type AssignmentSubmission = core.AssignmentSubmission
type InteractiveTemplate = core.InteractiveTemplate
type InteractiveSubmission = core.InteractiveSubmission
type Reward = core.Reward

type AdaptiveRule = personalization.AdaptiveRule
type TrajectoryNode = personalization.TrajectoryNode
type StudentProfile = personalization.StudentProfile

type Experiment = experiments.Experiment
type ExperimentParticipant = experiments.Participant

type LiveSession = live.Session
type LiveParticipant = live.Participant
type LiveSlideCheckin = live.SlideCheckin
