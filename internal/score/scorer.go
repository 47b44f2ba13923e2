// Package score aggregates validator, checker and analyzer outputs into a
// composite confidence score and categorical tier. The function is pure and
// deterministic: the same inputs always yield the same score, which is what
// makes the scoring rules themselves regression-testable.
package score

import (
	"math"

	"github.com/legalgapdb/gapcheck/internal/config"
	"github.com/legalgapdb/gapcheck/internal/model"
)

// Scorer applies the policy deductions and tier cutoffs.
type Scorer struct {
	policy config.PolicyConfig
}

// New creates a Scorer with the given policy.
func New(policy config.PolicyConfig) *Scorer {
	return &Scorer{policy: policy}
}

// Score computes the composite confidence score and tier for one case.
// Structural correctness is a hard gate: any structural error forces score
// 0.0 and tier Fail regardless of every other input. authorConfidence is
// the contributor-declared confidence from the record; a declared
// estimation caps the tier at Estimation since it signals acknowledged
// uncertainty at the source.
func (s *Scorer) Score(
	structuralErrors []model.StructuralError,
	citationResults []model.CitationResult,
	statisticalFlags []model.StatisticalFlag,
	authorConfidence model.Confidence,
) (float64, model.Tier) {
	if len(structuralErrors) > 0 {
		return 0.0, model.TierFail
	}

	score := 1.0
	score -= s.citationDeduction(citationResults)
	score -= s.flagDeduction(statisticalFlags)
	if score < 0 {
		score = 0
	}
	// Accumulated float subtraction leaves dust like 0.7999999...; the
	// policy weights carry two decimals, so round to a stable grid.
	score = math.Round(score*10000) / 10000

	return score, s.tier(score, authorConfidence)
}

// citationDeduction charges a fixed amount per degraded citation, capped so
// a long bibliography of dead government links cannot zero a record by
// itself.
func (s *Scorer) citationDeduction(results []model.CitationResult) float64 {
	var total float64
	for _, r := range results {
		if r.Status.Degrades() {
			total += s.policy.CitationDeduction
		}
	}
	return math.Min(total, s.policy.CitationDeductionCap)
}

func (s *Scorer) flagDeduction(flags []model.StatisticalFlag) float64 {
	var total float64
	for _, f := range flags {
		switch f.Kind {
		case model.FlagAgingData:
			total += s.policy.AgingDeduction
		case model.FlagOutdatedData:
			total += s.policy.OutdatedDeduction
		case model.FlagPotentialOutlier:
			total += s.policy.OutlierDeduction
		case model.FlagConflictingSources:
			total += s.policy.ConflictDeduction
		case model.FlagSampleTooSmall:
			total += s.policy.SmallSampleDeduction
		}
	}
	return total
}

func (s *Scorer) tier(score float64, authorConfidence model.Confidence) model.Tier {
	if authorConfidence == model.ConfidenceEstimation {
		return model.TierEstimation
	}
	switch {
	case score >= s.policy.TierHigh:
		return model.TierHigh
	case score >= s.policy.TierMedium:
		return model.TierMedium
	case score >= s.policy.TierLow:
		return model.TierLow
	default:
		return model.TierEstimation
	}
}
