// Package report assembles validation reports and the corpus-wide
// aggregate, plus their human-readable renderings.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/legalgapdb/gapcheck/internal/model"
)

// Emit assembles the immutable per-case ValidationReport. pass reflects
// structural correctness only: advisory flags and dead citations degrade
// the score without flipping it.
func Emit(
	caseID string,
	runTimestamp time.Time,
	structuralErrors []model.StructuralError,
	citationResults []model.CitationResult,
	statisticalFlags []model.StatisticalFlag,
	interval *model.Interval,
	score float64,
	tier model.Tier,
) *model.ValidationReport {
	return &model.ValidationReport{
		CaseID:             caseID,
		RunTimestamp:       runTimestamp.UTC(),
		StructuralErrors:   structuralErrors,
		CitationResults:    citationResults,
		StatisticalFlags:   statisticalFlags,
		ConfidenceInterval: interval,
		ConfidenceScore:    score,
		ConfidenceTier:     tier,
		Pass:               len(structuralErrors) == 0,
	}
}

// Aggregate merges per-case reports into the corpus-wide summary: per-tier
// counts, mean score, and the urgent-review list (failed cases plus any
// flagged OUTDATED_DATA_REQUIRES_UPDATE). Reports are ordered by case ID.
func Aggregate(runTimestamp time.Time, reports []model.ValidationReport) *model.AggregateReport {
	sorted := make([]model.ValidationReport, len(reports))
	copy(sorted, reports)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CaseID < sorted[j].CaseID })

	agg := &model.AggregateReport{
		RunID:        uuid.New().String(),
		RunTimestamp: runTimestamp.UTC(),
		TotalCases:   len(sorted),
		TierCounts:   make(map[model.Tier]int),
		Reports:      sorted,
	}

	var sum float64
	for _, r := range sorted {
		agg.TierCounts[r.ConfidenceTier]++
		sum += r.ConfidenceScore
		if r.Pass {
			agg.Passed++
		} else {
			agg.Failed++
		}
		if !r.Pass || r.HasFlag(model.FlagOutdatedData) {
			agg.UrgentReview = append(agg.UrgentReview, r.CaseID)
		}
	}
	if len(sorted) > 0 {
		agg.MeanScore = math.Round(sum/float64(len(sorted))*10000) / 10000
	}

	return agg
}
