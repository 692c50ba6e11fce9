package experiment

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/modules/adaptive"
	"github.com/yungbote/edupulse-backend/internal/pkg/pointers"
)

func participant(group string, pre, post, preM, postM *float64) *types.ExperimentParticipant {
	return &types.ExperimentParticipant{
		ID:             uuid.New(),
		StudentID:      uuid.New(),
		Group:          group,
		PreScore:       pre,
		PostScore:      post,
		PreMotivation:  preM,
		PostMotivation: postM,
	}
}

func fixtureInputs() []ParticipantInput {
	f := pointers.Float64
	return []ParticipantInput{
		{Username: "student_a", Participant: participant(types.GroupControl, f(50), f(55), f(5.0), f(5.5))},
		{Username: "student_b", Participant: participant(types.GroupControl, f(52), f(56), f(5.2), f(5.4))},
		{Username: "student_c", Participant: participant(types.GroupExperimental, f(50), f(70), f(5.1), f(7.1))},
		{Username: "student_d", Participant: participant(types.GroupExperimental, f(48), f(66), f(4.9), f(6.7))},
	}
}

func TestBuildReportFixture(t *testing.T) {
	exp := &types.Experiment{ID: uuid.New(), Title: "Gamified review"}
	r := BuildReport(exp, fixtureInputs())

	s := r.Summary
	if s.DifferenceInDifferences == nil || *s.DifferenceInDifferences != 14.5 {
		t.Fatalf("did: got %v", s.DifferenceInDifferences)
	}
	if s.PValueApprox == nil || s.EffectSizeCohensD == nil || s.CI95Low == nil || s.CI95High == nil {
		t.Fatalf("expected statistical block, got %+v", s)
	}
	if s.StatMethod != StatMethod {
		t.Fatalf("stat method: got %q", s.StatMethod)
	}
	if *s.CI95Low >= 14.5 || *s.CI95High <= 14.5 {
		t.Fatalf("ci should bracket the difference: [%v, %v]", *s.CI95Low, *s.CI95High)
	}
	if !strings.Contains(s.Conclusion, "statistically significant") {
		t.Fatalf("conclusion: %q", s.Conclusion)
	}

	c := r.Groups[types.GroupControl]
	if c.Count != 2 || *c.AvgDelta != 4.5 || *c.AvgPre != 51 || *c.ImprovedRatio != 100 {
		t.Fatalf("control stats: %+v", c)
	}
	e := r.Groups[types.GroupExperimental]
	if *e.AvgDelta != 19 || e.AvgMotivationDelta == nil || *e.AvgMotivationDelta != 1.9 {
		t.Fatalf("experimental stats: %+v", e)
	}
	if r.Participants[0].Username != "student_a" || r.Participants[0].PreSource != SourceManual {
		t.Fatalf("rows: %+v", r.Participants[0])
	}
}

func TestBuildReportSmallSample(t *testing.T) {
	f := pointers.Float64
	r := BuildReport(&types.Experiment{ID: uuid.New()}, []ParticipantInput{
		{Username: "a", Participant: participant(types.GroupControl, f(50), f(55), nil, nil)},
		{Username: "b", Participant: participant(types.GroupExperimental, f(50), f(70), nil, nil)},
	})
	s := r.Summary
	if s.DifferenceInDifferences == nil || *s.DifferenceInDifferences != 15 {
		t.Fatalf("did: got %v", s.DifferenceInDifferences)
	}
	if s.PValueApprox != nil || s.TStatistic != nil || s.EffectSizeCohensD != nil || s.Significant != nil {
		t.Fatalf("expected nil stats for n<2, got %+v", s)
	}
	if r.Groups[types.GroupControl].AvgMotivationDelta != nil {
		t.Fatalf("motivation delta should be nil without data")
	}
}

func TestResolveScoreAuto(t *testing.T) {
	lesson := uuid.New()
	other := uuid.New()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)
	entries := []adaptive.SubmissionEntry{
		{LessonID: &lesson, Score: pointers.Float64(0.8), CreatedAt: start.Add(time.Hour)},
		{LessonID: &lesson, Score: pointers.Float64(0.6), CreatedAt: end.Add(20 * time.Hour)},
		{LessonID: &other, Score: pointers.Float64(0.1), CreatedAt: start.Add(time.Hour)},
		{LessonID: &lesson, Score: pointers.Float64(0.0), CreatedAt: end.Add(48 * time.Hour)},
	}
	w := Window{Start: &start, End: &end}

	got, src := ResolveScore(nil, entries, w, &lesson)
	if got == nil || *got < 69.999 || *got > 70.001 || src != SourceAuto {
		t.Fatalf("lesson scoped: got %v %q", got, src)
	}
	got, _ = ResolveScore(nil, entries, w, nil)
	if got == nil || *got < 49.999 || *got > 50.001 {
		t.Fatalf("unscoped: got %v", got)
	}
	got, src = ResolveScore(pointers.Float64(42), entries, w, &lesson)
	if *got != 42 || src != SourceManual {
		t.Fatalf("manual: got %v %q", *got, src)
	}
	if got, _ := ResolveScore(nil, entries, Window{}, nil); got != nil {
		t.Fatalf("no window should give nil")
	}
}

func TestWriteCSV(t *testing.T) {
	r := BuildReport(&types.Experiment{ID: uuid.New()}, fixtureInputs())
	var buf bytes.Buffer
	if err := WriteCSV(&buf, r); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	body := buf.String()
	for _, want := range []string{"P-value (approx)", "Effect size (Cohen's d)", "Stat method", "student_c", "Difference-in-differences,14.50"} {
		if !strings.Contains(body, want) {
			t.Fatalf("csv missing %q:\n%s", want, body)
		}
	}
}
