package experiment

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats/scalar"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/modules/adaptive"
	"github.com/yungbote/edupulse-backend/internal/pkg/mathx"
)

const (
	SourceManual = "manual"
	SourceAuto   = "auto"
)

// Window is an inclusive calendar-day range; nil bounds are open.
type Window struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

func (w Window) Defined() bool { return w.Start != nil || w.End != nil }

// ResolveScore prefers a manual value; otherwise it averages the student's scored entries
// inside the window (restricted to lessonID when set) on a 0..100 scale.
func ResolveScore(manual *float64, entries []adaptive.SubmissionEntry, w Window, lessonID *uuid.UUID) (*float64, string) {
	if manual != nil && mathx.Finite(*manual) {
		v := *manual
		return &v, SourceManual
	}
	if !w.Defined() {
		return nil, ""
	}
	scoped := entries
	if lessonID != nil {
		scoped = make([]adaptive.SubmissionEntry, 0, len(entries))
		for _, e := range entries {
			if e.LessonID != nil && *e.LessonID == *lessonID {
				scoped = append(scoped, e)
			}
		}
	}
	avg := adaptive.AveragePercent(adaptive.InWindow(scoped, w.Start, w.End))
	if avg == nil {
		return nil, ""
	}
	return avg, SourceAuto
}

type ParticipantInput struct {
	Participant *types.ExperimentParticipant
	Username    string
	FullName    string
	// Entries are the student's normalized submissions; only used when scores are not manual.
	Entries []adaptive.SubmissionEntry
}

type ParticipantRow struct {
	ParticipantID   uuid.UUID `json:"participant_id"`
	StudentID       uuid.UUID `json:"student_id"`
	Username        string    `json:"username"`
	FullName        string    `json:"full_name"`
	Group           string    `json:"group"`
	PreScore        *float64  `json:"pre_score"`
	PostScore       *float64  `json:"post_score"`
	PreSource       string    `json:"pre_source"`
	PostSource      string    `json:"post_source"`
	Delta           *float64  `json:"delta"`
	PreMotivation   *float64  `json:"pre_motivation"`
	PostMotivation  *float64  `json:"post_motivation"`
	MotivationDelta *float64  `json:"motivation_delta"`
	Notes           string    `json:"notes"`
}

type GroupStats struct {
	Count              int      `json:"count"`
	AvgPre             *float64 `json:"avg_pre"`
	AvgPost            *float64 `json:"avg_post"`
	AvgDelta           *float64 `json:"avg_delta"`
	ImprovedRatio      *float64 `json:"improved_ratio"`
	AvgMotivationDelta *float64 `json:"avg_motivation_delta"`
}

type Summary struct {
	DifferenceInDifferences *float64 `json:"difference_in_differences"`
	TStatistic              *float64 `json:"t_statistic"`
	DegreesOfFreedom        *float64 `json:"degrees_of_freedom"`
	PValueApprox            *float64 `json:"p_value_approx"`
	Significant             *bool    `json:"significant"`
	EffectSizeCohensD       *float64 `json:"effect_size_cohens_d"`
	CI95Low                 *float64 `json:"ci95_low"`
	CI95High                *float64 `json:"ci95_high"`
	StatMethod              string   `json:"stat_method"`
	Conclusion              string   `json:"conclusion"`
}

type Report struct {
	ExperimentID uuid.UUID             `json:"experiment_id"`
	Title        string                `json:"title"`
	FocusTopic   string                `json:"focus_topic"`
	Hypothesis   string                `json:"hypothesis"`
	LessonID     *uuid.UUID            `json:"lesson_id"`
	PreWindow    Window                `json:"pre_window"`
	PostWindow   Window                `json:"post_window"`
	Groups       map[string]GroupStats `json:"groups"`
	Summary      Summary               `json:"summary"`
	Participants []ParticipantRow      `json:"participants"`
}

func PreWindow(e *types.Experiment) Window  { return Window{Start: e.PreStart, End: e.PreEnd} }
func PostWindow(e *types.Experiment) Window { return Window{Start: e.PostStart, End: e.PostEnd} }

// BuildRow resolves one participant's pre/post scores and deltas.
func BuildRow(e *types.Experiment, in ParticipantInput) ParticipantRow {
	p := in.Participant
	row := ParticipantRow{
		ParticipantID:  p.ID,
		StudentID:      p.StudentID,
		Username:       in.Username,
		FullName:       in.FullName,
		Group:          p.Group,
		PreMotivation:  p.PreMotivation,
		PostMotivation: p.PostMotivation,
		Notes:          p.Notes,
	}
	row.PreScore, row.PreSource = ResolveScore(p.PreScore, in.Entries, PreWindow(e), e.LessonID)
	row.PostScore, row.PostSource = ResolveScore(p.PostScore, in.Entries, PostWindow(e), e.LessonID)
	if row.PreScore != nil && row.PostScore != nil {
		d := *row.PostScore - *row.PreScore
		row.Delta = &d
	}
	if row.PreMotivation != nil && row.PostMotivation != nil {
		d := *row.PostMotivation - *row.PreMotivation
		row.MotivationDelta = &d
	}
	return row
}

// BuildReport computes group statistics and the between-group comparison.
func BuildReport(e *types.Experiment, inputs []ParticipantInput) Report {
	rows := make([]ParticipantRow, 0, len(inputs))
	for _, in := range inputs {
		if in.Participant == nil {
			continue
		}
		rows = append(rows, BuildRow(e, in))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Group != rows[j].Group {
			return rows[i].Group < rows[j].Group
		}
		return rows[i].Username < rows[j].Username
	})

	control := groupStats(rows, types.GroupControl)
	treated := groupStats(rows, types.GroupExperimental)

	r := Report{
		ExperimentID: e.ID,
		Title:        e.Title,
		FocusTopic:   e.FocusTopic,
		Hypothesis:   e.Hypothesis,
		LessonID:     e.LessonID,
		PreWindow:    PreWindow(e),
		PostWindow:   PostWindow(e),
		Groups: map[string]GroupStats{
			types.GroupControl:      control,
			types.GroupExperimental: treated,
		},
		Participants: rows,
	}
	r.Summary = summarize(rows)
	return r
}

func groupStats(rows []ParticipantRow, group string) GroupStats {
	var pre, post, delta, motivation []float64
	g := GroupStats{}
	for _, r := range rows {
		if r.Group != group {
			continue
		}
		g.Count++
		if r.PreScore != nil {
			pre = append(pre, *r.PreScore)
		}
		if r.PostScore != nil {
			post = append(post, *r.PostScore)
		}
		if r.Delta != nil {
			delta = append(delta, *r.Delta)
		}
		if r.MotivationDelta != nil {
			motivation = append(motivation, *r.MotivationDelta)
		}
	}
	g.AvgPre = mathx.RoundPtr(mean(pre), 2)
	g.AvgPost = mathx.RoundPtr(mean(post), 2)
	g.AvgDelta = mathx.RoundPtr(mean(delta), 2)
	g.AvgMotivationDelta = mathx.RoundPtr(mean(motivation), 2)
	if len(delta) > 0 {
		improved := 0
		for _, d := range delta {
			if d > 0 {
				improved++
			}
		}
		ratio := scalar.RoundEven(float64(improved)/float64(len(delta))*100, 2)
		g.ImprovedRatio = &ratio
	}
	return g
}

func deltas(rows []ParticipantRow, group string) []float64 {
	out := []float64{}
	for _, r := range rows {
		if r.Group == group && r.Delta != nil {
			out = append(out, *r.Delta)
		}
	}
	return out
}

func summarize(rows []ParticipantRow) Summary {
	s := Summary{StatMethod: StatMethod}
	cd, td := deltas(rows, types.GroupControl), deltas(rows, types.GroupExperimental)
	if c, t := mean(cd), mean(td); c != nil && t != nil {
		did := *t - *c
		s.DifferenceInDifferences = mathx.RoundPtr(&did, 2)
	}

	w := Welch(td, cd)
	s.TStatistic = mathx.RoundPtr(w.TStatistic, 3)
	s.DegreesOfFreedom = mathx.RoundPtr(w.DegreesOfFreedom, 2)
	s.PValueApprox = mathx.RoundPtr(w.PValue, 4)
	s.Significant = w.Significant
	s.CI95Low = mathx.RoundPtr(w.CI95Low, 2)
	s.CI95High = mathx.RoundPtr(w.CI95High, 2)
	s.EffectSizeCohensD = mathx.RoundPtr(CohensD(td, cd), 3)
	s.Conclusion = conclusion(s.DifferenceInDifferences, s.Significant)
	return s
}

func conclusion(did *float64, significant *bool) string {
	if did == nil {
		return "Not enough pre/post data to compare the groups."
	}
	sig := significant != nil && *significant
	switch {
	case *did > 0 && sig:
		return "The experimental group improved more than control, and the difference is statistically significant (p < 0.05)."
	case *did > 0:
		return "The experimental group improved more than control, but the difference is not statistically significant."
	case *did < 0 && sig:
		return "The control group improved more than the experimental group, and the difference is statistically significant (p < 0.05)."
	case *did < 0:
		return "The control group improved more than the experimental group, but the difference is not statistically significant."
	default:
		return "Both groups changed by the same amount."
	}
}
