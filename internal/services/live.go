package services

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/edupulse-backend/internal/data/repos"
	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/modules/live"
	"github.com/yungbote/edupulse-backend/internal/observability"
	"github.com/yungbote/edupulse-backend/internal/pkg/ctxutil"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/edupulse-backend/internal/pkg/errors"
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
	"github.com/yungbote/edupulse-backend/internal/realtime"
	"github.com/yungbote/edupulse-backend/internal/realtime/bus"
)

const (
	CheckinAccepted  = "accepted"
	CheckinDuplicate = "duplicate"
)

type SessionInput struct {
	LessonID    uuid.UUID `validate:"required"`
	Mode        string    `validate:"omitempty,oneof=presence answer"`
	SourceType  string    `validate:"omitempty,oneof=slides canva url pptx"`
	ExternalURL string    `validate:"omitempty,url"`
}

type CheckinInput struct {
	SlideIndex int `validate:"gte=0"`
	// IsCorrect is required in answer mode and ignored in presence mode.
	IsCorrect  *bool
	ReactionMS int `validate:"gte=0"`
}

type CheckinResult struct {
	Duplicate     bool                   `json:"duplicate"`
	AwardedPoints int                    `json:"awarded_points"`
	Rank          *int                   `json:"rank"`
	TimeFactor    float64                `json:"time_factor"`
	Participant   *types.LiveParticipant `json:"participant"`
}

type LeaderboardRow struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	StudentID     uuid.UUID `json:"student_id"`
	Name          string    `json:"name"`
	Points        int       `json:"points"`
	Streak        int       `json:"streak"`
	BestStreak    int       `json:"best_streak"`
	CheckinsCount int       `json:"checkins_count"`
	Online        bool      `json:"online"`
}

// RosterRow is one participant as the presenting teacher sees it.
type RosterRow struct {
	ParticipantID     uuid.UUID `json:"id"`
	StudentID         uuid.UUID `json:"student"`
	Username          string    `json:"username"`
	FullName          string    `json:"full_name"`
	DisplayName       string    `json:"display_name"`
	Name              string    `json:"name"`
	Points            int       `json:"points"`
	Streak            int       `json:"streak"`
	BestStreak        int       `json:"best_streak"`
	CheckinsCount     int       `json:"checkins_count"`
	CurrentSlideIndex int       `json:"current_slide_index"`
	JoinedAt          time.Time `json:"joined_at"`
	LastSeenAt        time.Time `json:"last_seen_at"`
	Online            bool      `json:"is_online"`
}

type SessionView struct {
	ID                uuid.UUID  `json:"id"`
	LessonID          uuid.UUID  `json:"lesson_id"`
	LiveCode          string     `json:"live_code"`
	State             live.State `json:"state"`
	Mode              string     `json:"mode"`
	CurrentSlideIndex int        `json:"current_slide_index"`
	TimerDuration     int        `json:"timer_duration_seconds"`
	TimerRunning      bool       `json:"timer_running"`
	RemainingSeconds  int        `json:"remaining_seconds"`
}

type LiveService interface {
	CreateSession(dbc dbctx.Context, teacherID uuid.UUID, in SessionInput) (*types.LiveSession, error)
	// Start activates a session and closes any other active session of the same teacher and lesson.
	Start(dbc dbctx.Context, teacherID, sessionID uuid.UUID) (*SessionView, error)
	End(dbc dbctx.Context, teacherID, sessionID uuid.UUID) (*SessionView, error)
	SetSlide(dbc dbctx.Context, teacherID, sessionID uuid.UUID, slideIndex int) (*SessionView, error)
	StartTimer(dbc dbctx.Context, teacherID, sessionID uuid.UUID, seconds int) (*SessionView, error)
	StopTimer(dbc dbctx.Context, teacherID, sessionID uuid.UUID) (*SessionView, error)
	View(dbc dbctx.Context, sessionID uuid.UUID) (*SessionView, error)

	Join(dbc dbctx.Context, studentID uuid.UUID, code, displayName string) (*types.LiveParticipant, error)
	Heartbeat(dbc dbctx.Context, studentID, sessionID uuid.UUID, slideIndex int) (*types.LiveParticipant, error)
	// Checkin awards points once per participant and slide. Repeats succeed with zero points.
	Checkin(dbc dbctx.Context, studentID, sessionID uuid.UUID, in CheckinInput) (*CheckinResult, error)
	Leaderboard(dbc dbctx.Context, sessionID uuid.UUID, limit int) ([]LeaderboardRow, error)
	// Participants lists everyone in an active session for its teacher.
	Participants(dbc dbctx.Context, teacherID, sessionID uuid.UUID) ([]RosterRow, error)
}

type liveService struct {
	db              *gorm.DB
	log             *logger.Logger
	bus             bus.Bus
	validate        *validator.Validate
	userRepo        repos.UserRepo
	lessonRepo      repos.LessonRepo
	sessionRepo     repos.LiveSessionRepo
	participantRepo repos.LiveParticipantRepo
	checkinRepo     repos.LiveCheckinRepo

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewLiveService(
	db *gorm.DB,
	log *logger.Logger,
	eventBus bus.Bus,
	userRepo repos.UserRepo,
	lessonRepo repos.LessonRepo,
	sessionRepo repos.LiveSessionRepo,
	participantRepo repos.LiveParticipantRepo,
	checkinRepo repos.LiveCheckinRepo,
) LiveService {
	return &liveService{
		db:              db,
		log:             log.With("service", "LiveService"),
		bus:             eventBus,
		validate:        validator.New(),
		userRepo:        userRepo,
		lessonRepo:      lessonRepo,
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		checkinRepo:     checkinRepo,
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (ls *liveService) CreateSession(dbc dbctx.Context, teacherID uuid.UUID, in SessionInput) (*types.LiveSession, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	if err := ls.validate.Struct(in); err != nil {
		return nil, invalid(err)
	}
	if _, err := ls.requireRole(dbc, teacherID, types.RoleTeacher); err != nil {
		return nil, err
	}
	lesson, err := ls.lessonRepo.GetByID(dbc, in.LessonID)
	if err != nil {
		return nil, fmt.Errorf("load lesson: %w", err)
	}
	if lesson == nil || lesson.OwnerID != teacherID {
		return nil, fmt.Errorf("lesson %s: %w", in.LessonID, apperr.ErrNotFound)
	}
	if in.Mode == "" {
		in.Mode = types.LiveModePresence
	}
	if in.SourceType == "" {
		in.SourceType = "slides"
	}
	created, err := ls.sessionRepo.Create(dbc, []*types.LiveSession{{
		LessonID:    lesson.ID,
		TeacherID:   teacherID,
		Mode:        in.Mode,
		SourceType:  in.SourceType,
		ExternalURL: strings.TrimSpace(in.ExternalURL),
	}})
	if err != nil {
		return nil, fmt.Errorf("create live session: %w", err)
	}
	return created[0], nil
}

func (ls *liveService) Start(dbc dbctx.Context, teacherID, sessionID uuid.UUID) (out *SessionView, err error) {
	ctx, span := observability.StartSpan(ctxutil.Default(dbc.Ctx), "live.start",
		attribute.String("session_id", sessionID.String()))
	defer func() { observability.EndSpan(span, err) }()
	dbc.Ctx = ctx

	var (
		session *types.LiveSession
		closed  int
	)
	err = ls.inTx(dbc, func(dbc dbctx.Context) error {
		s, err := ls.ownedSession(dbc, teacherID, sessionID)
		if err != nil {
			return err
		}
		wasActive := live.StateOf(s) == live.StateActive
		now := ctxutil.Now(dbc.Ctx)
		if err := live.Start(s, now); err != nil {
			return err
		}
		if wasActive {
			session = s
			return nil
		}
		closed, err = ls.sessionRepo.CloseActive(dbc, s.TeacherID, s.LessonID, s.ID, now)
		if err != nil {
			return fmt.Errorf("close previous sessions: %w", err)
		}
		code, err := ls.liveCode(dbc)
		if err != nil {
			return err
		}
		s.LiveCode = code
		if err := ls.sessionRepo.Save(dbc, s); err != nil {
			return fmt.Errorf("save live session: %w", err)
		}
		session = s
		observability.Current().LiveSessionStarted()
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i := 0; i < closed; i++ {
		observability.Current().LiveSessionEnded()
	}

	view := ls.view(session, ctxutil.Now(dbc.Ctx))
	ls.log.Info("live session started", "session_id", session.ID, "code", session.LiveCode, "closed_previous", closed)
	ls.publish(dbc, session.ID, realtime.EventLiveSessionStarted, view)
	return &view, nil
}

func (ls *liveService) liveCode(dbc dbctx.Context) (string, error) {
	ls.rngMu.Lock()
	defer ls.rngMu.Unlock()
	code, err := live.GenerateLiveCode(ls.rng, func(code string) (bool, error) {
		return ls.sessionRepo.LiveCodeTaken(dbc, code)
	})
	if err != nil {
		return "", fmt.Errorf("generate live code: %w", err)
	}
	return code, nil
}

func (ls *liveService) End(dbc dbctx.Context, teacherID, sessionID uuid.UUID) (*SessionView, error) {
	view, err := ls.mutate(dbc, teacherID, sessionID, func(s *types.LiveSession, now time.Time) error {
		return live.End(s, now)
	})
	if err != nil {
		return nil, err
	}
	observability.Current().LiveSessionEnded()
	ls.publish(dbc, sessionID, realtime.EventLiveSessionEnded, view)
	return view, nil
}

// SetSlide moves the presenter to a slide and clears the slide timer.
func (ls *liveService) SetSlide(dbc dbctx.Context, teacherID, sessionID uuid.UUID, slideIndex int) (*SessionView, error) {
	if slideIndex < 0 {
		return nil, fmt.Errorf("slide index must not be negative: %w", apperr.ErrInvalidArgument)
	}
	view, err := ls.mutate(dbc, teacherID, sessionID, func(s *types.LiveSession, now time.Time) error {
		if err := live.RequireActive(s); err != nil {
			return err
		}
		s.CurrentSlideIndex = slideIndex
		live.StopTimer(s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	ls.publish(dbc, sessionID, realtime.EventLiveSlideChanged, view)
	return view, nil
}

func (ls *liveService) StartTimer(dbc dbctx.Context, teacherID, sessionID uuid.UUID, seconds int) (*SessionView, error) {
	if err := ls.validate.Var(seconds, fmt.Sprintf("gte=%d,lte=%d", live.MinTimerSeconds, live.MaxTimerSeconds)); err != nil {
		return nil, fmt.Errorf("timer must be between %d and %d seconds: %w",
			live.MinTimerSeconds, live.MaxTimerSeconds, apperr.ErrInvalidArgument)
	}
	view, err := ls.mutate(dbc, teacherID, sessionID, func(s *types.LiveSession, now time.Time) error {
		if err := live.RequireActive(s); err != nil {
			return err
		}
		live.StartTimer(s, seconds, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	ls.publish(dbc, sessionID, realtime.EventLiveTimerStarted, view)
	return view, nil
}

func (ls *liveService) StopTimer(dbc dbctx.Context, teacherID, sessionID uuid.UUID) (*SessionView, error) {
	view, err := ls.mutate(dbc, teacherID, sessionID, func(s *types.LiveSession, now time.Time) error {
		if err := live.RequireActive(s); err != nil {
			return err
		}
		live.StopTimer(s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	ls.publish(dbc, sessionID, realtime.EventLiveTimerStopped, view)
	return view, nil
}

func (ls *liveService) View(dbc dbctx.Context, sessionID uuid.UUID) (*SessionView, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	s, err := ls.sessionRepo.GetByID(dbc, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load live session: %w", err)
	}
	if s == nil {
		return nil, fmt.Errorf("live session %s: %w", sessionID, apperr.ErrNotFound)
	}
	view := ls.view(s, ctxutil.Now(dbc.Ctx))
	return &view, nil
}

// mutate loads an owned session, applies fn and saves it.
func (ls *liveService) mutate(dbc dbctx.Context, teacherID, sessionID uuid.UUID, fn func(s *types.LiveSession, now time.Time) error) (*SessionView, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	now := ctxutil.Now(dbc.Ctx)
	var session *types.LiveSession
	err := ls.inTx(dbc, func(dbc dbctx.Context) error {
		s, err := ls.ownedSession(dbc, teacherID, sessionID)
		if err != nil {
			return err
		}
		if err := fn(s, now); err != nil {
			return err
		}
		if err := ls.sessionRepo.Save(dbc, s); err != nil {
			return fmt.Errorf("save live session: %w", err)
		}
		session = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	view := ls.view(session, now)
	return &view, nil
}

func (ls *liveService) view(s *types.LiveSession, now time.Time) SessionView {
	return SessionView{
		ID:                s.ID,
		LessonID:          s.LessonID,
		LiveCode:          s.LiveCode,
		State:             live.StateOf(s),
		Mode:              s.Mode,
		CurrentSlideIndex: s.CurrentSlideIndex,
		TimerDuration:     s.TimerDurationSeconds,
		TimerRunning:      live.TimerRunning(s, now),
		RemainingSeconds:  live.RemainingSeconds(s, now),
	}
}

func (ls *liveService) Join(dbc dbctx.Context, studentID uuid.UUID, code, displayName string) (*types.LiveParticipant, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	code = live.NormalizeCode(code)
	if code == "" {
		return nil, fmt.Errorf("live code is required: %w", apperr.ErrInvalidArgument)
	}
	student, err := ls.requireRole(dbc, studentID, types.RoleStudent)
	if err != nil {
		return nil, err
	}
	s, err := ls.sessionRepo.GetActiveByCode(dbc, code)
	if err != nil {
		return nil, fmt.Errorf("load live session: %w", err)
	}
	if s == nil {
		return nil, fmt.Errorf("live session %q: %w", code, apperr.ErrNotFound)
	}

	p, created, err := ls.participant(dbc, s, student, ctxutil.Now(dbc.Ctx))
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(displayName); name != "" && name != p.DisplayName {
		p.DisplayName = name
		if err := ls.participantRepo.Save(dbc, p); err != nil {
			return nil, fmt.Errorf("save participant: %w", err)
		}
	}
	if created {
		ls.publish(dbc, s.ID, realtime.EventLiveParticipant, map[string]any{
			"participant_id": p.ID,
			"student_id":     p.StudentID,
			"name":           p.ResolvedName(),
		})
	}
	return p, nil
}

func (ls *liveService) Heartbeat(dbc dbctx.Context, studentID, sessionID uuid.UUID, slideIndex int) (*types.LiveParticipant, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	student, err := ls.requireRole(dbc, studentID, types.RoleStudent)
	if err != nil {
		return nil, err
	}
	s, err := ls.activeSession(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	now := ctxutil.Now(dbc.Ctx)
	p, created, err := ls.participant(dbc, s, student, now)
	if err != nil {
		return nil, err
	}
	if !created {
		p.LastSeenAt = now
	}
	if slideIndex > p.CurrentSlideIndex {
		p.CurrentSlideIndex = slideIndex
	}
	if err := ls.participantRepo.Save(dbc, p); err != nil {
		return nil, fmt.Errorf("save participant: %w", err)
	}
	return p, nil
}

// participant returns the student's row for the session, creating it when missing.
func (ls *liveService) participant(dbc dbctx.Context, s *types.LiveSession, student *types.User, now time.Time) (*types.LiveParticipant, bool, error) {
	p, err := ls.participantRepo.GetBySessionAndStudent(dbc, s.ID, student.ID)
	if err != nil {
		return nil, false, fmt.Errorf("load participant: %w", err)
	}
	if p != nil {
		return p, false, nil
	}
	p = &types.LiveParticipant{
		SessionID:             s.ID,
		StudentID:             student.ID,
		Student:               student,
		CurrentSlideIndex:     s.CurrentSlideIndex,
		LastCheckedSlideIndex: -1,
		LastCorrectSlideIndex: -1,
		JoinedAt:              now,
		LastSeenAt:            now,
	}
	if err := ls.participantRepo.Create(dbc, p); err != nil {
		return nil, false, fmt.Errorf("create participant: %w", err)
	}
	return p, true, nil
}

func (ls *liveService) Checkin(dbc dbctx.Context, studentID, sessionID uuid.UUID, in CheckinInput) (out *CheckinResult, err error) {
	ctx, span := observability.StartSpan(ctxutil.Default(dbc.Ctx), "live.checkin",
		attribute.String("session_id", sessionID.String()),
		attribute.Int("slide_index", in.SlideIndex))
	defer func() { observability.EndSpan(span, err) }()
	dbc.Ctx = ctx

	if err := ls.validate.Struct(in); err != nil {
		return nil, invalid(err)
	}
	student, err := ls.requireRole(dbc, studentID, types.RoleStudent)
	if err != nil {
		return nil, err
	}

	var mode string
	err = ls.inTx(dbc, func(dbc dbctx.Context) error {
		s, err := ls.activeSession(dbc, sessionID)
		if err != nil {
			return err
		}
		mode = s.Mode
		correct := true
		if s.Mode == types.LiveModeAnswer {
			if in.IsCorrect == nil {
				return fmt.Errorf("answer mode check-in needs a result: %w", apperr.ErrInvalidArgument)
			}
			correct = *in.IsCorrect
		}

		now := ctxutil.Now(dbc.Ctx)
		p, _, err := ls.participant(dbc, s, student, now)
		if err != nil {
			return err
		}
		out = &CheckinResult{Duplicate: true, Participant: p}

		exists, err := ls.checkinRepo.Exists(dbc, p.ID, in.SlideIndex)
		if err != nil {
			return fmt.Errorf("check existing check-in: %w", err)
		}
		if exists {
			return nil
		}

		prior, err := ls.checkinRepo.CountPrior(dbc, s.ID, in.SlideIndex, s.Mode == types.LiveModeAnswer)
		if err != nil {
			return fmt.Errorf("count check-ins: %w", err)
		}
		award := live.ComputeAward(s.Mode, prior+1, correct, live.TimeFactor(s, now))
		inserted, err := ls.checkinRepo.Create(dbc, &types.LiveSlideCheckin{
			SessionID:     s.ID,
			ParticipantID: p.ID,
			SlideIndex:    in.SlideIndex,
			ReactionMS:    in.ReactionMS,
			IsCorrect:     correct,
			Rank:          award.Rank,
			PointsAwarded: award.Points,
			CreatedAt:     now,
		})
		if err != nil {
			return fmt.Errorf("create check-in: %w", err)
		}
		if !inserted {
			return nil
		}

		live.ApplyCheckin(s.Mode, p, in.SlideIndex, correct, award)
		p.LastSeenAt = now
		if err := ls.participantRepo.Save(dbc, p); err != nil {
			return fmt.Errorf("save participant: %w", err)
		}
		rank := award.Rank
		out = &CheckinResult{
			AwardedPoints: award.Points,
			Rank:          &rank,
			TimeFactor:    award.TimeFactor,
			Participant:   p,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Duplicate {
		observability.Current().ObserveCheckin(mode, CheckinDuplicate, 0)
		return out, nil
	}
	observability.Current().ObserveCheckin(mode, CheckinAccepted, out.AwardedPoints)
	ls.publish(dbc, sessionID, realtime.EventLiveCheckin, map[string]any{
		"participant_id": out.Participant.ID,
		"slide_index":    in.SlideIndex,
		"rank":           out.Rank,
		"awarded_points": out.AwardedPoints,
	})
	if board, err := ls.Leaderboard(dbc, sessionID, repos.DefaultLeaderboardLimit); err != nil {
		ls.log.Warn("leaderboard refresh failed", "session_id", sessionID, "error", err)
	} else {
		ls.publish(dbc, sessionID, realtime.EventLiveLeaderboard, board)
	}
	return out, nil
}

func (ls *liveService) Leaderboard(dbc dbctx.Context, sessionID uuid.UUID, limit int) ([]LeaderboardRow, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	if limit <= 0 {
		limit = repos.DefaultLeaderboardLimit
	}
	rows, err := ls.participantRepo.Leaderboard(dbc, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	now := ctxutil.Now(dbc.Ctx)
	out := make([]LeaderboardRow, 0, len(rows))
	for _, p := range rows {
		out = append(out, LeaderboardRow{
			ParticipantID: p.ID,
			StudentID:     p.StudentID,
			Name:          p.ResolvedName(),
			Points:        p.Points,
			Streak:        p.Streak,
			BestStreak:    p.BestStreak,
			CheckinsCount: p.CheckinsCount,
			Online:        live.IsOnline(p, now),
		})
	}
	return out, nil
}

func (ls *liveService) Participants(dbc dbctx.Context, teacherID, sessionID uuid.UUID) ([]RosterRow, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	s, err := ls.ownedSession(dbc, teacherID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := live.RequireActive(s); err != nil {
		return nil, err
	}
	rows, err := ls.participantRepo.GetBySessionID(dbc, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	now := ctxutil.Now(dbc.Ctx)
	out := make([]RosterRow, 0, len(rows))
	for _, p := range rows {
		row := RosterRow{
			ParticipantID:     p.ID,
			StudentID:         p.StudentID,
			DisplayName:       p.DisplayName,
			Name:              p.ResolvedName(),
			Points:            p.Points,
			Streak:            p.Streak,
			BestStreak:        p.BestStreak,
			CheckinsCount:     p.CheckinsCount,
			CurrentSlideIndex: p.CurrentSlideIndex,
			JoinedAt:          p.JoinedAt,
			LastSeenAt:        p.LastSeenAt,
			Online:            live.IsOnline(p, now),
		}
		if p.Student != nil {
			row.Username = p.Student.Username
			row.FullName = p.Student.FullName
		}
		out = append(out, row)
	}
	return out, nil
}

func (ls *liveService) requireRole(dbc dbctx.Context, userID uuid.UUID, role string) (*types.User, error) {
	u, err := ls.userRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
	}
	if u.Role != role {
		return nil, fmt.Errorf("action requires role %s: %w", role, apperr.ErrPermissionDenied)
	}
	return u, nil
}

func (ls *liveService) ownedSession(dbc dbctx.Context, teacherID, sessionID uuid.UUID) (*types.LiveSession, error) {
	if _, err := ls.requireRole(dbc, teacherID, types.RoleTeacher); err != nil {
		return nil, err
	}
	s, err := ls.sessionRepo.GetByID(dbc, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load live session: %w", err)
	}
	if s == nil || s.TeacherID != teacherID {
		return nil, fmt.Errorf("live session %s: %w", sessionID, apperr.ErrNotFound)
	}
	return s, nil
}

func (ls *liveService) activeSession(dbc dbctx.Context, sessionID uuid.UUID) (*types.LiveSession, error) {
	s, err := ls.sessionRepo.GetByID(dbc, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load live session: %w", err)
	}
	if s == nil {
		return nil, fmt.Errorf("live session %s: %w", sessionID, apperr.ErrNotFound)
	}
	if err := live.RequireActive(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (ls *liveService) inTx(dbc dbctx.Context, fn func(dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return ls.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbc.WithTx(tx))
	})
}

func (ls *liveService) publish(dbc dbctx.Context, sessionID uuid.UUID, event realtime.Event, data any) {
	if ls.bus == nil {
		return
	}
	msg := realtime.Message{Channel: realtime.SessionChannel(sessionID), Event: event, Data: data}
	if err := ls.bus.Publish(ctxutil.Default(dbc.Ctx), msg); err != nil {
		ls.log.Warn("publish failed", "session_id", sessionID, "event", event, "error", err)
	}
}
