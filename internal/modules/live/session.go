package live

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	apperr "github.com/yungbote/edupulse-backend/internal/pkg/errors"
)

type State string

const (
	StateNotStarted State = "not_started"
	StateActive     State = "active"
	StateEnded      State = "ended"

	liveCodeAlphabet = "ABCDEFGHIJKLMNPQRSTUVWXYZ23456789"
	liveCodeLength   = 6
	liveCodeFallback = 8
	liveCodeAttempts = 20

	MinTimerSeconds = 5
	MaxTimerSeconds = 600

	onlineWindow = 20 * time.Second
)

var (
	ErrSessionEnded     = fmt.Errorf("%w: live session already ended", apperr.ErrConflict)
	ErrSessionNotActive = fmt.Errorf("%w: live session is not active", apperr.ErrConflict)
)

func StateOf(s *types.LiveSession) State {
	switch {
	case s.EndedAt != nil:
		return StateEnded
	case s.StartedAt == nil:
		return StateNotStarted
	case s.IsActive:
		return StateActive
	default:
		return StateEnded
	}
}

// Start moves a not-started session to active. Starting an active session is a no-op.
func Start(s *types.LiveSession, now time.Time) error {
	switch StateOf(s) {
	case StateEnded:
		return ErrSessionEnded
	case StateActive:
		return nil
	}
	t := now
	s.StartedAt = &t
	s.IsActive = true
	return nil
}

// End is terminal and clears the timer.
func End(s *types.LiveSession, now time.Time) error {
	if StateOf(s) == StateEnded {
		return ErrSessionEnded
	}
	t := now
	s.IsActive = false
	s.EndedAt = &t
	s.TimerStartedAt = nil
	s.TimerEndsAt = nil
	return nil
}

func RequireActive(s *types.LiveSession) error {
	if StateOf(s) != StateActive {
		return ErrSessionNotActive
	}
	return nil
}

// StartTimer arms the slide timer. A non-positive duration records the start without an end.
func StartTimer(s *types.LiveSession, durationSeconds int, now time.Time) {
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	t := now
	s.TimerDurationSeconds = durationSeconds
	s.TimerStartedAt = &t
	s.TimerEndsAt = nil
	if durationSeconds > 0 {
		ends := now.Add(time.Duration(durationSeconds) * time.Second)
		s.TimerEndsAt = &ends
	}
}

func StopTimer(s *types.LiveSession) {
	s.TimerStartedAt = nil
	s.TimerEndsAt = nil
}

// RemainingSeconds is the whole seconds left on the timer, never negative.
func RemainingSeconds(s *types.LiveSession, now time.Time) int {
	if s.TimerEndsAt == nil {
		return 0
	}
	r := int(s.TimerEndsAt.Sub(now) / time.Second)
	if r < 0 {
		return 0
	}
	return r
}

func TimerRunning(s *types.LiveSession, now time.Time) bool {
	return s.IsActive && s.TimerEndsAt != nil && s.TimerEndsAt.After(now)
}

// GenerateLiveCode draws join codes until taken reports a free one. After repeated collisions
// it returns a longer code.
func GenerateLiveCode(rng *rand.Rand, taken func(code string) (bool, error)) (string, error) {
	for i := 0; i < liveCodeAttempts; i++ {
		code := randomCode(rng, liveCodeLength)
		used, err := taken(code)
		if err != nil {
			return "", err
		}
		if !used {
			return code, nil
		}
	}
	return randomCode(rng, liveCodeFallback), nil
}

func randomCode(rng *rand.Rand, n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(liveCodeAlphabet[rng.Intn(len(liveCodeAlphabet))])
	}
	return b.String()
}

// NormalizeCode upper-cases and trims a user-entered join code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func IsOnline(p *types.LiveParticipant, now time.Time) bool {
	return !p.LastSeenAt.Before(now.Add(-onlineWindow))
}
