package experiment

import (
	"encoding/csv"
	"io"
	"strconv"
)

var participantHeader = []string{
	"Student", "Username", "Group",
	"Pre score", "Post score", "Delta", "Pre source", "Post source",
	"Pre motivation", "Post motivation", "Motivation delta", "Notes",
}

// WriteCSV writes one row per participant followed by the group and summary block.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	records := [][]string{participantHeader}
	for _, p := range r.Participants {
		records = append(records, []string{
			p.FullName, p.Username, p.Group,
			formatFloat(p.PreScore, 2), formatFloat(p.PostScore, 2), formatFloat(p.Delta, 2),
			p.PreSource, p.PostSource,
			formatFloat(p.PreMotivation, 2), formatFloat(p.PostMotivation, 2), formatFloat(p.MotivationDelta, 2),
			p.Notes,
		})
	}
	records = append(records, []string{})
	records = append(records, []string{"Group", "Count", "Avg pre", "Avg post", "Avg delta", "Improved %", "Avg motivation delta"})
	for _, name := range []string{"control", "experimental"} {
		g := r.Groups[name]
		records = append(records, []string{
			name, strconv.Itoa(g.Count),
			formatFloat(g.AvgPre, 2), formatFloat(g.AvgPost, 2), formatFloat(g.AvgDelta, 2),
			formatFloat(g.ImprovedRatio, 2), formatFloat(g.AvgMotivationDelta, 2),
		})
	}

	s := r.Summary
	records = append(records,
		[]string{},
		[]string{"Metric", "Value"},
		[]string{"Difference-in-differences", formatFloat(s.DifferenceInDifferences, 2)},
		[]string{"t statistic", formatFloat(s.TStatistic, 3)},
		[]string{"Degrees of freedom", formatFloat(s.DegreesOfFreedom, 2)},
		[]string{"P-value (approx)", formatFloat(s.PValueApprox, 4)},
		[]string{"Significant (p<0.05)", formatBool(s.Significant)},
		[]string{"Effect size (Cohen's d)", formatFloat(s.EffectSizeCohensD, 3)},
		[]string{"95% CI low", formatFloat(s.CI95Low, 2)},
		[]string{"95% CI high", formatFloat(s.CI95High, 2)},
		[]string{"Stat method", s.StatMethod},
		[]string{"Conclusion", s.Conclusion},
	)
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

func formatFloat(v *float64, places int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', places, 64)
}

func formatBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
