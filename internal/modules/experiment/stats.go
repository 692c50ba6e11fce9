package experiment

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	StatMethod = "welch_t_normal_approx"

	z95          = 1.96
	alpha        = 0.05
	minGroupSize = 2
)

// WelchResult holds a two-sample comparison of experimental minus control deltas.
// Fields are nil when the samples cannot support the statistic.
type WelchResult struct {
	MeanDiff         *float64
	StdErr           *float64
	TStatistic       *float64
	DegreesOfFreedom *float64
	PValue           *float64
	Significant      *bool
	CI95Low          *float64
	CI95High         *float64
}

// Welch compares experimental against control with Welch's unequal-variance t statistic.
// The two-sided p-value comes from the standard normal distribution rather than Student's t.
func Welch(experimental, control []float64) WelchResult {
	res := WelchResult{}
	n1, n2 := float64(len(experimental)), float64(len(control))
	if len(experimental) < minGroupSize || len(control) < minGroupSize {
		return res
	}
	m1, v1 := stat.MeanVariance(experimental, nil)
	m2, v2 := stat.MeanVariance(control, nil)
	diff := m1 - m2
	res.MeanDiff = &diff

	a, b := v1/n1, v2/n2
	se := math.Sqrt(a + b)
	if se == 0 || math.IsNaN(se) {
		return res
	}
	res.StdErr = &se

	t := diff / se
	p := 2 * (1 - distuv.UnitNormal.CDF(math.Abs(t)))
	sig := p < alpha
	lo, hi := diff-z95*se, diff+z95*se
	res.TStatistic = &t
	res.PValue = &p
	res.Significant = &sig
	res.CI95Low = &lo
	res.CI95High = &hi

	if den := a*a/(n1-1) + b*b/(n2-1); den > 0 {
		df := (a + b) * (a + b) / den
		res.DegreesOfFreedom = &df
	}
	return res
}

// CohensD is the standardized mean difference using the pooled variance over n1+n2-2.
func CohensD(experimental, control []float64) *float64 {
	n1, n2 := len(experimental), len(control)
	if n1 < minGroupSize || n2 < minGroupSize {
		return nil
	}
	m1, v1 := stat.MeanVariance(experimental, nil)
	m2, v2 := stat.MeanVariance(control, nil)
	pooled := (float64(n1-1)*v1 + float64(n2-1)*v2) / float64(n1+n2-2)
	sd := math.Sqrt(pooled)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}
	d := (m1 - m2) / sd
	return &d
}

func mean(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	m := stat.Mean(xs, nil)
	return &m
}
