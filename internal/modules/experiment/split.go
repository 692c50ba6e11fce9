package experiment

import (
	"sort"

	"github.com/google/uuid"

	types "github.com/yungbote/edupulse-backend/internal/domain"
)

const (
	SplitStrategy = "stratified_50_50_by_pre_score"

	StratumHigh    = "high"
	StratumMid     = "mid"
	StratumLow     = "low"
	StratumUnknown = "unknown"

	highBaseline = 70.0
	midBaseline  = 40.0
)

var strataOrder = []string{StratumHigh, StratumMid, StratumLow, StratumUnknown}

// Stratum buckets a 0..100 baseline score.
func Stratum(baseline *float64) string {
	switch {
	case baseline == nil:
		return StratumUnknown
	case *baseline >= highBaseline:
		return StratumHigh
	case *baseline >= midBaseline:
		return StratumMid
	default:
		return StratumLow
	}
}

type Candidate struct {
	StudentID uuid.UUID
	Username  string
	Baseline  *float64
}

type SplitAssignment struct {
	StudentID uuid.UUID `json:"student_id"`
	Username  string    `json:"username"`
	Group     string    `json:"group"`
	Stratum   string    `json:"stratum"`
	Baseline  *float64  `json:"baseline"`
}

type StratumCount struct {
	Total        int `json:"total"`
	Control      int `json:"control"`
	Experimental int `json:"experimental"`
}

type SplitResult struct {
	Strategy     string                   `json:"strategy"`
	Control      int                      `json:"control"`
	Experimental int                      `json:"experimental"`
	Strata       map[string]*StratumCount `json:"strata"`
	Assignments  []SplitAssignment        `json:"assignments"`
}

// Split assigns candidates to groups stratum by stratum. Each stratum starts with whichever
// group is currently smaller (control on a tie) and alternates from there. existingControl and
// existingExperimental seed the running group sizes.
func Split(candidates []Candidate, existingControl, existingExperimental int) SplitResult {
	res := SplitResult{
		Strategy:     SplitStrategy,
		Control:      existingControl,
		Experimental: existingExperimental,
		Strata:       map[string]*StratumCount{},
	}
	buckets := map[string][]Candidate{}
	seen := map[uuid.UUID]bool{}
	for _, c := range candidates {
		if seen[c.StudentID] {
			continue
		}
		seen[c.StudentID] = true
		s := Stratum(c.Baseline)
		buckets[s] = append(buckets[s], c)
	}

	for _, name := range strataOrder {
		bucket := buckets[name]
		if len(bucket) == 0 {
			continue
		}
		sort.SliceStable(bucket, func(i, j int) bool {
			bi, bj := bucket[i].Baseline, bucket[j].Baseline
			if bi != nil && bj != nil && *bi != *bj {
				return *bi > *bj
			}
			return bucket[i].Username < bucket[j].Username
		})

		count := &StratumCount{Total: len(bucket)}
		res.Strata[name] = count
		next := types.GroupControl
		if res.Experimental < res.Control {
			next = types.GroupExperimental
		}
		for _, c := range bucket {
			res.Assignments = append(res.Assignments, SplitAssignment{
				StudentID: c.StudentID,
				Username:  c.Username,
				Group:     next,
				Stratum:   name,
				Baseline:  c.Baseline,
			})
			if next == types.GroupControl {
				res.Control++
				count.Control++
				next = types.GroupExperimental
			} else {
				res.Experimental++
				count.Experimental++
				next = types.GroupControl
			}
		}
	}
	return res
}
