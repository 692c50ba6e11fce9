package adaptive

import (
	"sort"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats/scalar"

	types "github.com/yungbote/edupulse-backend/internal/domain"
)

const (
	hardestTopicsLimit = 8
	progressDaysLimit  = 30
)

type StudentRef struct {
	ID       uuid.UUID
	Username string
}

type AnalyticsSummary struct {
	StudentsCount     int     `json:"students_count"`
	AttemptsCount     int     `json:"attempts_count"`
	ScoredAttempts    int     `json:"scored_attempts"`
	GroupAverageScore float64 `json:"group_average_score"`
	TotalTimeSeconds  int     `json:"total_time_seconds"`
}

type HardTopic struct {
	Topic        string  `json:"topic"`
	Attempts     int     `json:"attempts"`
	AverageScore float64 `json:"average_score"`
}

type DayProgress struct {
	Date         string  `json:"date"`
	Attempts     int     `json:"attempts"`
	AverageScore float64 `json:"average_score"`
}

type StudentRow struct {
	StudentID        uuid.UUID    `json:"student_id"`
	Username         string       `json:"username"`
	Attempts         int          `json:"attempts"`
	ScoredAttempts   int          `json:"scored_attempts"`
	AverageScore     float64      `json:"average_score"`
	TotalTimeSeconds int          `json:"total_time_seconds"`
	LearningLevel    *string      `json:"learning_level"`
	WeakTopics       []TopicScore `json:"weak_topics"`
	CompletionRate   float64      `json:"completion_rate"`
}

type IndividualReport struct {
	StudentID  uuid.UUID   `json:"student_id"`
	Profile    ProfileView `json:"profile"`
	Trajectory []NodeView  `json:"trajectory"`
}

type TeacherAnalytics struct {
	Summary       AnalyticsSummary  `json:"summary"`
	HardestTopics []HardTopic       `json:"hardest_topics"`
	ProgressByDay []DayProgress     `json:"progress_by_day"`
	Students      []StudentRow      `json:"students"`
	Individual    *IndividualReport `json:"individual,omitempty"`
}

type dayAcc struct {
	attempts int
	scored   int
	sum      float64
}

// BuildTeacherAnalytics rolls entries up per student, per topic and per day. Entries for
// students outside the scope are ignored.
func BuildTeacherAnalytics(entries []SubmissionEntry, students []StudentRef, profiles map[uuid.UUID]*types.StudentProfile) TeacherAnalytics {
	rows := make(map[uuid.UUID]*StudentRow, len(students))
	sums := make(map[uuid.UUID]float64, len(students))
	order := make([]uuid.UUID, 0, len(students))
	for _, s := range students {
		if _, ok := rows[s.ID]; ok {
			continue
		}
		rows[s.ID] = &StudentRow{StudentID: s.ID, Username: s.Username, WeakTopics: []TopicScore{}}
		order = append(order, s.ID)
	}

	inScope := make([]SubmissionEntry, 0, len(entries))
	days := map[string]*dayAcc{}
	out := TeacherAnalytics{}
	totalSum := 0.0
	for _, e := range entries {
		row, ok := rows[e.StudentID]
		if !ok {
			continue
		}
		inScope = append(inScope, e)
		row.Attempts++
		row.TotalTimeSeconds += SafeDuration(e.DurationSeconds)

		var day *dayAcc
		if !e.CreatedAt.IsZero() {
			key := e.CreatedAt.UTC().Format(historyDateLayout)
			day = days[key]
			if day == nil {
				day = &dayAcc{}
				days[key] = day
			}
			day.attempts++
		}
		if e.Score == nil {
			continue
		}
		row.ScoredAttempts++
		sums[e.StudentID] += *e.Score
		out.Summary.ScoredAttempts++
		totalSum += *e.Score
		if day != nil {
			day.scored++
			day.sum += *e.Score
		}
	}

	out.Students = make([]StudentRow, 0, len(order))
	for _, id := range order {
		row := rows[id]
		if row.ScoredAttempts > 0 {
			row.AverageScore = scalar.RoundEven(sums[id]/float64(row.ScoredAttempts)*100, 2)
		}
		if p := profiles[id]; p != nil {
			level := p.LearningLevel
			row.LearningLevel = &level
			row.WeakTopics = DecodeTopics(p.WeakTopics)
			row.CompletionRate = scalar.RoundEven(p.CompletionRate, 2)
		}
		out.Summary.TotalTimeSeconds += row.TotalTimeSeconds
		out.Students = append(out.Students, *row)
	}
	sort.SliceStable(out.Students, func(i, j int) bool {
		a, b := out.Students[i], out.Students[j]
		if a.AverageScore != b.AverageScore {
			return a.AverageScore > b.AverageScore
		}
		if a.Attempts != b.Attempts {
			return a.Attempts > b.Attempts
		}
		return a.Username < b.Username
	})

	out.HardestTopics = hardestTopics(AggregateTopics(inScope))
	out.ProgressByDay = progressByDay(days)

	out.Summary.StudentsCount = len(order)
	out.Summary.AttemptsCount = len(inScope)
	if out.Summary.ScoredAttempts > 0 {
		out.Summary.GroupAverageScore = scalar.RoundEven(totalSum/float64(out.Summary.ScoredAttempts)*100, 2)
	}
	return out
}

func hardestTopics(metrics TopicMetrics) []HardTopic {
	out := []HardTopic{}
	for _, m := range metrics.Sorted() {
		if m.ScoredAttempts == 0 {
			continue
		}
		out = append(out, HardTopic{Topic: m.Topic, Attempts: m.Attempts, AverageScore: scalar.RoundEven(m.AvgScore*100, 2)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AverageScore != out[j].AverageScore {
			return out[i].AverageScore < out[j].AverageScore
		}
		return out[i].Attempts > out[j].Attempts
	})
	if len(out) > hardestTopicsLimit {
		out = out[:hardestTopicsLimit]
	}
	return out
}

func progressByDay(days map[string]*dayAcc) []DayProgress {
	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > progressDaysLimit {
		keys = keys[len(keys)-progressDaysLimit:]
	}
	out := make([]DayProgress, 0, len(keys))
	for _, k := range keys {
		d := days[k]
		avg := 0.0
		if d.scored > 0 {
			avg = d.sum / float64(d.scored) * 100
		}
		out = append(out, DayProgress{Date: k, Attempts: d.attempts, AverageScore: scalar.RoundEven(avg, 2)})
	}
	return out
}
