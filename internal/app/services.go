package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/edupulse-backend/internal/modules/adaptive"
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
	"github.com/yungbote/edupulse-backend/internal/realtime/bus"
	"github.com/yungbote/edupulse-backend/internal/services"
)

type Services struct {
	Entries         services.EntryCollector
	Personalization services.PersonalizationService
	Experiments     services.ExperimentService
	Live            services.LiveService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, eventBus bus.Bus) (Services, error) {
	log.Info("Wiring services...")

	var fileRules []adaptive.Rule
	if cfg.RulesFile != "" {
		rules, err := adaptive.LoadRulesFile(cfg.RulesFile)
		if err != nil {
			return Services{}, fmt.Errorf("load adaptive rules: %w", err)
		}
		log.Info("loaded adaptive rules file", "path", cfg.RulesFile, "rules", len(rules))
		fileRules = rules
	}

	entries := services.NewEntryCollector(log,
		reposet.Assignment,
		reposet.AssignmentSubmission,
		reposet.InteractiveSubmission,
	)

	return Services{
		Entries: entries,
		Personalization: services.NewPersonalizationService(db, log, eventBus, entries,
			reposet.User,
			reposet.Lesson,
			reposet.Enrollment,
			reposet.Reward,
			reposet.AdaptiveRule,
			reposet.TrajectoryNode,
			reposet.StudentProfile,
			fileRules,
		),
		Experiments: services.NewExperimentService(db, log, entries,
			reposet.User,
			reposet.Lesson,
			reposet.Enrollment,
			reposet.Experiment,
			reposet.ExperimentParticipant,
		),
		Live: services.NewLiveService(db, log, eventBus,
			reposet.User,
			reposet.Lesson,
			reposet.LiveSession,
			reposet.LiveParticipant,
			reposet.LiveCheckin,
		),
	}, nil
}
