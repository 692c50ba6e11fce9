package live

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats/scalar"

	types "github.com/yungbote/edupulse-backend/internal/domain"
)

const minTimeFactor = 0.3

// BasePoints maps a 1-based finishing rank to its point value.
func BasePoints(rank int) int {
	switch rank {
	case 1:
		return 100
	case 2:
		return 70
	case 3:
		return 50
	default:
		return 30
	}
}

// TimeFactor scales points by how much of the timer is left. Without a configured timer the
// factor is 1; once the timer has run out it is 0.
func TimeFactor(s *types.LiveSession, now time.Time) float64 {
	if s.TimerDurationSeconds <= 0 || s.TimerStartedAt == nil || s.TimerEndsAt == nil {
		return 1.0
	}
	remaining := RemainingSeconds(s, now)
	if remaining <= 0 {
		return 0
	}
	return math.Max(minTimeFactor, float64(remaining)/float64(s.TimerDurationSeconds))
}

// Award is the outcome of one accepted check-in.
type Award struct {
	Rank       int     `json:"rank"`
	BasePoints int     `json:"base_points"`
	TimeFactor float64 `json:"time_factor"`
	Points     int     `json:"awarded_points"`
}

// ComputeAward prices a check-in. In answer mode an incorrect answer earns nothing.
func ComputeAward(mode string, rank int, correct bool, factor float64) Award {
	a := Award{Rank: rank, BasePoints: BasePoints(rank), TimeFactor: factor}
	if mode == types.LiveModeAnswer && !correct {
		return a
	}
	pts := int(scalar.RoundEven(float64(a.BasePoints)*factor, 0))
	if pts < 0 {
		pts = 0
	}
	a.Points = pts
	return a
}

// NextStreak returns the streak after a check-in on slide. Presence mode counts consecutive
// slides checked in; answer mode counts consecutive correct slides and resets to 0 on a miss.
func NextStreak(mode string, p *types.LiveParticipant, slide int, correct bool) int {
	if mode == types.LiveModeAnswer {
		if !correct {
			return 0
		}
		if p.LastCorrectSlideIndex >= 0 && p.LastCorrectSlideIndex+1 == slide {
			return p.Streak + 1
		}
		return 1
	}
	if p.LastCheckedSlideIndex >= 0 && p.LastCheckedSlideIndex+1 == slide {
		return p.Streak + 1
	}
	return 1
}

// ApplyCheckin folds an accepted check-in into the participant's counters.
func ApplyCheckin(mode string, p *types.LiveParticipant, slide int, correct bool, a Award) {
	p.Streak = NextStreak(mode, p, slide, correct)
	if p.Streak > p.BestStreak {
		p.BestStreak = p.Streak
	}
	p.Points += a.Points
	p.CheckinsCount++
	p.LastCheckedSlideIndex = slide
	if mode != types.LiveModeAnswer || correct {
		p.LastCorrectSlideIndex = slide
	}
	if slide > p.CurrentSlideIndex {
		p.CurrentSlideIndex = slide
	}
}
