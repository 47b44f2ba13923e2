package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/legalgapdb/gapcheck/internal/config"
	"github.com/legalgapdb/gapcheck/internal/model"
)

func testScorer() *Scorer {
	return New(config.Default().Policy)
}

func degraded(n int) []model.CitationResult {
	out := make([]model.CitationResult, n)
	for i := range out {
		out[i] = model.CitationResult{Status: model.CitationUnreachable}
	}
	return out
}

func flags(kinds ...model.FlagKind) []model.StatisticalFlag {
	out := make([]model.StatisticalFlag, len(kinds))
	for i, k := range kinds {
		out[i] = model.StatisticalFlag{Kind: k}
	}
	return out
}

func TestCleanCaseScoresFullMarks(t *testing.T) {
	s, tier := testScorer().Score(nil, []model.CitationResult{
		{Status: model.CitationAccessible, Reachable: true},
		{Status: model.CitationRedirected, Reachable: true},
	}, nil, model.ConfidenceHigh)

	assert.Equal(t, 1.0, s)
	assert.Equal(t, model.TierHigh, tier)
}

func TestStructuralErrorIsHardGate(t *testing.T) {
	structural := []model.StructuralError{{Field: "title", Message: "required field is missing"}}

	// Perfect citations and no flags cannot rescue a structural failure.
	s, tier := testScorer().Score(structural, []model.CitationResult{
		{Status: model.CitationAccessible, Reachable: true},
	}, nil, model.ConfidenceHigh)

	assert.Equal(t, 0.0, s)
	assert.Equal(t, model.TierFail, tier)
}

func TestDeadCitationDeduction(t *testing.T) {
	s, tier := testScorer().Score(nil, degraded(1), nil, model.ConfidenceHigh)
	assert.Equal(t, 0.95, s)
	assert.Equal(t, model.TierHigh, tier)
}

func TestCitationDeductionCap(t *testing.T) {
	// Ten dead links would charge 0.50 uncapped; the cap keeps it at 0.30.
	s, tier := testScorer().Score(nil, degraded(10), nil, model.ConfidenceHigh)
	assert.Equal(t, 0.70, s)
	assert.Equal(t, model.TierMedium, tier)
}

func TestRedirectDoesNotDegrade(t *testing.T) {
	s, _ := testScorer().Score(nil, []model.CitationResult{
		{Status: model.CitationRedirected, Reachable: true},
	}, nil, model.ConfidenceHigh)
	assert.Equal(t, 1.0, s)
}

func TestFlagDeductions(t *testing.T) {
	tests := []struct {
		name     string
		flags    []model.StatisticalFlag
		want     float64
		wantTier model.Tier
	}{
		{"aging data", flags(model.FlagAgingData), 0.95, model.TierHigh},
		{"outdated data", flags(model.FlagOutdatedData), 0.80, model.TierMedium},
		{"outlier", flags(model.FlagPotentialOutlier), 0.90, model.TierHigh},
		{"conflicting sources", flags(model.FlagConflictingSources), 0.85, model.TierHigh},
		{"small sample", flags(model.FlagSampleTooSmall), 0.95, model.TierHigh},
		{"accumulated", flags(model.FlagAgingData, model.FlagPotentialOutlier, model.FlagConflictingSources), 0.70, model.TierMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, tier := testScorer().Score(nil, nil, tt.flags, model.ConfidenceHigh)
			assert.Equal(t, tt.want, s)
			assert.Equal(t, tt.wantTier, tier)
		})
	}
}

func TestScoreFloorsAtZero(t *testing.T) {
	many := flags(
		model.FlagOutdatedData, model.FlagOutdatedData, model.FlagOutdatedData,
		model.FlagConflictingSources, model.FlagConflictingSources, model.FlagConflictingSources,
	)
	s, tier := testScorer().Score(nil, degraded(10), many, model.ConfidenceLow)
	assert.Equal(t, 0.0, s)
	assert.Equal(t, model.TierEstimation, tier)
}

func TestEstimationConfidenceCapsTier(t *testing.T) {
	// A perfect score still lands in the Estimation tier when the
	// contributor declared the value an estimation.
	s, tier := testScorer().Score(nil, nil, nil, model.ConfidenceEstimation)
	assert.Equal(t, 1.0, s)
	assert.Equal(t, model.TierEstimation, tier)
}

func TestTierBoundaries(t *testing.T) {
	// conflict (0.15) lands exactly on the High cutoff; the boundary is
	// inclusive.
	s, tier := testScorer().Score(nil, nil, flags(model.FlagConflictingSources), model.ConfidenceHigh)
	assert.Equal(t, 0.85, s)
	assert.Equal(t, model.TierHigh, tier)

	// outdated + aging = 0.75, below High, above Medium.
	s, tier = testScorer().Score(nil, nil, flags(model.FlagOutdatedData, model.FlagAgingData), model.ConfidenceHigh)
	assert.Equal(t, 0.75, s)
	assert.Equal(t, model.TierMedium, tier)
}

func TestScoreIsDeterministic(t *testing.T) {
	f := flags(model.FlagAgingData, model.FlagSampleTooSmall)
	c := degraded(3)

	s1, t1 := testScorer().Score(nil, c, f, model.ConfidenceMedium)
	s2, t2 := testScorer().Score(nil, c, f, model.ConfidenceMedium)
	assert.Equal(t, s1, s2)
	assert.Equal(t, t1, t2)
}
