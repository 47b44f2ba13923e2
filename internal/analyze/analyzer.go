// Package analyze computes the advisory statistical findings for a case:
// data freshness, sample adequacy, cross-record outlier detection,
// multi-source conflicts and a confidence interval for the reported value.
// Every finding is advisory; none fails validation on its own.
package analyze

import (
	"fmt"
	"math"
	"time"

	"github.com/legalgapdb/gapcheck/internal/config"
	"github.com/legalgapdb/gapcheck/internal/corpus"
	"github.com/legalgapdb/gapcheck/internal/model"
)

// z975 is the two-sided 95% normal quantile used for interval bounds.
const z975 = 1.96

// Analyzer evaluates a validated record against the policy constants and a
// frozen corpus snapshot. Pure given the same record, snapshot and clock.
type Analyzer struct {
	policy config.PolicyConfig

	// Now supplies the run clock for the freshness check. Defaults to
	// time.Now.
	Now func() time.Time
}

// New creates an Analyzer with the given policy.
func New(policy config.PolicyConfig) *Analyzer {
	return &Analyzer{policy: policy, Now: time.Now}
}

// Analyze returns the statistical flags for a structurally valid record,
// plus the confidence interval for its value when a sample size is present.
// Running it twice against an unchanged snapshot yields identical results.
func (a *Analyzer) Analyze(rec *model.CaseRecord, snap *corpus.Snapshot) ([]model.StatisticalFlag, *model.Interval) {
	var flags []model.StatisticalFlag

	q := rec.InformalPractice.GapQuantification

	if f := a.freshness(q.DataYear); f != nil {
		flags = append(flags, *f)
	}
	if f := a.sampleAdequacy(q.SampleSize); f != nil {
		flags = append(flags, *f)
	}
	if f := a.outlier(rec, snap); f != nil {
		flags = append(flags, *f)
	}
	if f := a.sourceConflict(q); f != nil {
		flags = append(flags, *f)
	}

	return flags, a.confidenceInterval(q)
}

// freshness maps data age to a staleness flag: age <= fresh years none,
// fresh < age <= aging years AGING_DATA, older OUTDATED_DATA_REQUIRES_UPDATE.
func (a *Analyzer) freshness(dataYear int) *model.StatisticalFlag {
	age := a.now().Year() - dataYear
	switch {
	case age <= a.policy.FreshAgeYears:
		return nil
	case age <= a.policy.AgingAgeYears:
		return &model.StatisticalFlag{
			Kind:   model.FlagAgingData,
			Detail: fmt.Sprintf("data is %d years old", age),
		}
	default:
		return &model.StatisticalFlag{
			Kind:   model.FlagOutdatedData,
			Detail: fmt.Sprintf("data is %d years old", age),
		}
	}
}

func (a *Analyzer) sampleAdequacy(sampleSize *int) *model.StatisticalFlag {
	if sampleSize == nil || *sampleSize >= a.policy.MinSampleSize {
		return nil
	}
	return &model.StatisticalFlag{
		Kind:   model.FlagSampleTooSmall,
		Detail: fmt.Sprintf("sample size %d below %d", *sampleSize, a.policy.MinSampleSize),
	}
}

// outlier compares the record's value against the mean and population
// standard deviation of comparable records in the same domain. Detection is
// skipped when fewer than MinComparables exist or the group has zero
// spread: an insufficient baseline must not flag, however extreme the value.
func (a *Analyzer) outlier(rec *model.CaseRecord, snap *corpus.Snapshot) *model.StatisticalFlag {
	v := rec.InformalPractice.GapQuantification.Value
	if v == nil {
		return nil
	}

	values := snap.Comparables(rec.Domain, rec.ID, "")
	if len(values) < a.policy.MinComparables {
		return nil
	}

	mean, std := meanStd(values)
	if std == 0 {
		return nil
	}

	z := (*v - mean) / std
	if math.Abs(z) <= a.policy.ZScoreThreshold {
		return nil
	}

	zRounded := math.Round(z*100) / 100
	return &model.StatisticalFlag{
		Kind: model.FlagPotentialOutlier,
		Detail: fmt.Sprintf("value %.2f vs domain mean %.2f (std %.2f, n=%d)",
			*v, mean, std, len(values)),
		ZScore: &zRounded,
	}
}

// sourceConflict flags records whose independent data sources diverge by
// more than the relative tolerance for the same metric.
func (a *Analyzer) sourceConflict(q model.GapQuantification) *model.StatisticalFlag {
	var values []float64
	for _, src := range q.DataSources {
		if src.Value != nil {
			values = append(values, *src.Value)
		}
	}
	if len(values) < 2 {
		return nil
	}

	for i := 0; i < len(values); i++ {
		for j := i + 1; j < len(values); j++ {
			if relativeDivergence(values[i], values[j]) > a.policy.ConflictTolerance {
				return &model.StatisticalFlag{
					Kind: model.FlagConflictingSources,
					Detail: fmt.Sprintf("sources report %.2f and %.2f for metric %q",
						values[i], values[j], q.Metric),
				}
			}
		}
	}
	return nil
}

// confidenceInterval returns a two-sided 95% interval for the reported
// value using a standard-error approximation. Percent values use the
// binomial proportion error; counts and rates fall back to value/sqrt(n).
func (a *Analyzer) confidenceInterval(q model.GapQuantification) *model.Interval {
	if q.Value == nil || q.SampleSize == nil || *q.SampleSize <= 0 {
		return nil
	}

	v := *q.Value
	n := float64(*q.SampleSize)

	var se float64
	if q.Unit == model.UnitPercent {
		p := v / 100
		if p < 0 {
			p = 0
		}
		if p > 1 {
			p = 1
		}
		se = math.Sqrt(p*(1-p)/n) * 100
	} else {
		se = math.Abs(v) / math.Sqrt(n)
	}

	low := v - z975*se
	high := v + z975*se
	if q.Unit == model.UnitPercent && !q.AbsoluteCountConversion {
		low = math.Max(0, low)
		high = math.Min(100, high)
	}

	return &model.Interval{
		Low:  math.Round(low*100) / 100,
		High: math.Round(high*100) / 100,
	}
}

func (a *Analyzer) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// meanStd returns the mean and population standard deviation of values.
func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}

// relativeDivergence measures how far apart two readings are relative to
// the larger magnitude.
func relativeDivergence(a, b float64) float64 {
	maxAbs := math.Max(math.Abs(a), math.Abs(b))
	if maxAbs == 0 {
		return 0
	}
	return math.Abs(a-b) / maxAbs
}
