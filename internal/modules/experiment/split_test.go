package experiment

import (
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/pointers"
)

func TestStratum(t *testing.T) {
	cases := []struct {
		in   *float64
		want string
	}{
		{nil, StratumUnknown},
		{pointers.Float64(70), StratumHigh},
		{pointers.Float64(69.99), StratumMid},
		{pointers.Float64(40), StratumMid},
		{pointers.Float64(0), StratumLow},
	}
	for _, tc := range cases {
		if got := Stratum(tc.in); got != tc.want {
			t.Fatalf("Stratum(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSplitBalancesEachStratum(t *testing.T) {
	cands := []Candidate{
		{StudentID: uuid.New(), Username: "student_c", Baseline: pointers.Float64(20)},
		{StudentID: uuid.New(), Username: "student_a", Baseline: pointers.Float64(90)},
		{StudentID: uuid.New(), Username: "student_d", Baseline: pointers.Float64(10)},
		{StudentID: uuid.New(), Username: "student_b", Baseline: pointers.Float64(82)},
	}
	res := Split(cands, 0, 0)

	if res.Strategy != SplitStrategy || res.Control != 2 || res.Experimental != 2 {
		t.Fatalf("unexpected totals: %+v", res)
	}
	if res.Strata[StratumHigh].Total != 2 || res.Strata[StratumLow].Total != 2 {
		t.Fatalf("unexpected strata: %+v", res.Strata)
	}
	for _, name := range []string{StratumHigh, StratumLow} {
		if res.Strata[name].Control != 1 || res.Strata[name].Experimental != 1 {
			t.Fatalf("stratum %s not balanced: %+v", name, res.Strata[name])
		}
	}
	if _, ok := res.Strata[StratumMid]; ok {
		t.Fatalf("empty strata should be omitted")
	}
	groups := map[string]string{}
	for _, a := range res.Assignments {
		groups[a.Username] = a.Group
	}
	if groups["student_a"] != types.GroupControl || groups["student_b"] != types.GroupExperimental {
		t.Fatalf("high stratum order: %v", groups)
	}
}

func TestSplitStartsWithSmallerGroup(t *testing.T) {
	cands := []Candidate{
		{StudentID: uuid.New(), Username: "x"},
		{StudentID: uuid.New(), Username: "y"},
		{StudentID: uuid.New(), Username: "z"},
	}
	res := Split(cands, 3, 1)
	if res.Assignments[0].Group != types.GroupExperimental || res.Assignments[0].Stratum != StratumUnknown {
		t.Fatalf("expected experimental first, got %+v", res.Assignments[0])
	}
	if res.Control != 4 || res.Experimental != 3 {
		t.Fatalf("unexpected totals: control=%d experimental=%d", res.Control, res.Experimental)
	}
}

func TestSplitOddStrataStayBalanced(t *testing.T) {
	cands := []Candidate{
		{StudentID: uuid.New(), Username: "h1", Baseline: pointers.Float64(95)},
		{StudentID: uuid.New(), Username: "m1", Baseline: pointers.Float64(50)},
		{StudentID: uuid.New(), Username: "l1", Baseline: pointers.Float64(5)},
	}
	res := Split(cands, 0, 0)
	got := []string{res.Assignments[0].Group, res.Assignments[1].Group, res.Assignments[2].Group}
	want := []string{types.GroupControl, types.GroupExperimental, types.GroupControl}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("assignment %d: got %q want %q", i, got[i], want[i])
		}
	}
}
